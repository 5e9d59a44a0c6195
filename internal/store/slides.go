package store

import (
	"context"
	"database/sql"
	"errors"

	"signage-panel/internal/domain/groups"
	"signage-panel/internal/domain/slides"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func inScope(tx *gorm.DB, sc slides.Scope) *gorm.DB {
	tx = tx.Where("group_id = ?", sc.GroupID)
	if sc.CampaignID == nil {
		return tx.Where("campaign_id IS NULL")
	}
	return tx.Where("campaign_id = ?", *sc.CampaignID)
}

// ListSlides returns one scope's slides in play order.
func (s *Store) ListSlides(ctx context.Context, sc slides.Scope) ([]slides.Slide, error) {
	list, err := listSlides(s.db.WithContext(ctx), sc)
	if err != nil {
		return nil, s.logError("store_list_slides_failed", err, "group_id", sc.GroupID)
	}
	return list, nil
}

// lockGroupRow selects the group row FOR UPDATE. Every position mutation
// takes it first, so writers of one group's scopes run one after another.
// sqlite has no row locks; its single connection serializes writers instead.
func lockGroupRow(tx *gorm.DB, groupID uint) *gorm.DB {
	var g groups.Group
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").Where("id = ?", groupID).First(&g)
}

func lockScope(tx *gorm.DB, sc slides.Scope) error {
	err := lockGroupRow(tx, sc.GroupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return groups.ErrNotFound
	}
	return err
}

func listSlides(tx *gorm.DB, sc slides.Scope) ([]slides.Slide, error) {
	var list []slides.Slide
	err := inScope(tx.Model(&slides.Slide{}), sc).Order("position ASC, id ASC").Find(&list).Error
	return list, err
}

func applyPositions(tx *gorm.DB, updates []slides.PositionUpdate) error {
	for _, u := range updates {
		if err := tx.Model(&slides.Slide{}).Where("id = ?", u.ID).Update("position", u.Position).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetSlide(ctx context.Context, id uint) (slides.Slide, error) {
	var sl slides.Slide
	err := s.db.WithContext(ctx).First(&sl, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return slides.Slide{}, slides.ErrNotFound
	}
	if err != nil {
		return slides.Slide{}, s.logError("store_get_slide_failed", err, "slide_id", id)
	}
	return sl, nil
}

// AppendSlide inserts sl at the end of its scope.
func (s *Store) AppendSlide(ctx context.Context, sl *slides.Slide) error {
	sc := slides.Scope{GroupID: sl.GroupID, CampaignID: sl.CampaignID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockScope(tx, sc); err != nil {
			return err
		}
		var last sql.NullInt64
		if err := inScope(tx.Model(&slides.Slide{}), sc).Select("MAX(position)").Row().Scan(&last); err != nil {
			return err
		}
		sl.Position = 0
		if last.Valid {
			sl.Position = int(last.Int64) + 1
		}
		return tx.Create(sl).Error
	})
	if errors.Is(err, groups.ErrNotFound) {
		return err
	}
	if err != nil {
		return s.logError("store_append_slide_failed", err, "group_id", sl.GroupID)
	}
	return nil
}

// MoveSlide swaps the slide at index with its neighbour dir steps away and
// re-packs the scope. It reports false when the move falls outside the list.
// Locked slides only move when allowLocked is set.
func (s *Store) MoveSlide(ctx context.Context, sc slides.Scope, index, dir int, allowLocked bool) (bool, error) {
	moved := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockScope(tx, sc); err != nil {
			return err
		}
		list, err := listSlides(tx, sc)
		if err != nil {
			return err
		}
		next, ok := slides.Move(list, index, dir)
		if !ok {
			return nil
		}
		if !allowLocked && (list[index].Locked || list[index+dir].Locked) {
			return slides.ErrLocked
		}
		moved = true
		return applyPositions(tx, slides.Repack(next))
	})
	if err != nil {
		if errors.Is(err, slides.ErrLocked) || errors.Is(err, groups.ErrNotFound) {
			return false, err
		}
		return false, s.logError("store_move_slide_failed", err, "group_id", sc.GroupID)
	}
	return moved, nil
}

// DeleteSlideAt removes the slide at index and re-packs the scope.
func (s *Store) DeleteSlideAt(ctx context.Context, sc slides.Scope, index int, allowLocked bool) (slides.Slide, error) {
	var removed slides.Slide
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockScope(tx, sc); err != nil {
			return err
		}
		list, err := listSlides(tx, sc)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(list) {
			return slides.ErrNotFound
		}
		removed = list[index]
		if removed.Locked && !allowLocked {
			return slides.ErrLocked
		}
		if err := tx.Delete(&slides.Slide{}, removed.ID).Error; err != nil {
			return err
		}
		rest := append(list[:index:index], list[index+1:]...)
		return applyPositions(tx, slides.Repack(rest))
	})
	if err != nil {
		if errors.Is(err, slides.ErrNotFound) || errors.Is(err, slides.ErrLocked) || errors.Is(err, groups.ErrNotFound) {
			return slides.Slide{}, err
		}
		return slides.Slide{}, s.logError("store_delete_slide_failed", err, "group_id", sc.GroupID)
	}
	return removed, nil
}

// SlidePatch holds the editable fields of a slide; nil means unchanged.
type SlidePatch struct {
	Name     *string
	Duration *int
	Locked   *bool
}

func (s *Store) UpdateSlide(ctx context.Context, id uint, patch SlidePatch) (slides.Slide, error) {
	updates := map[string]any{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Duration != nil {
		updates["duration"] = *patch.Duration
	}
	if patch.Locked != nil {
		updates["locked"] = *patch.Locked
	}
	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&slides.Slide{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return slides.Slide{}, s.logError("store_update_slide_failed", res.Error, "slide_id", id)
		}
	}
	return s.GetSlide(ctx, id)
}

// CountSourceReferences counts the slides, of any group or campaign, and the
// group default images that still point at src.
func (s *Store) CountSourceReferences(ctx context.Context, src string) (int64, error) {
	var bySlides, byGroups int64
	if err := s.db.WithContext(ctx).Model(&slides.Slide{}).Where("src = ?", src).Count(&bySlides).Error; err != nil {
		return 0, s.logError("store_count_references_failed", err, "src", src)
	}
	if err := s.db.WithContext(ctx).Model(&groups.Group{}).Where("default_image = ?", src).Count(&byGroups).Error; err != nil {
		return 0, s.logError("store_count_references_failed", err, "src", src)
	}
	return bySlides + byGroups, nil
}
