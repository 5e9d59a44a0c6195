package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"signage-panel/internal/domain/groups"

	"gorm.io/gorm"
)

// ListGroups returns every group in display order.
func (s *Store) ListGroups(ctx context.Context) ([]groups.Group, error) {
	var list []groups.Group
	if err := s.db.WithContext(ctx).Order("display_order ASC, id ASC").Find(&list).Error; err != nil {
		return nil, s.logError("store_list_groups_failed", err)
	}
	return list, nil
}

func (s *Store) GetGroup(ctx context.Context, id uint) (groups.Group, error) {
	var g groups.Group
	err := s.db.WithContext(ctx).First(&g, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return groups.Group{}, groups.ErrNotFound
	}
	if err != nil {
		return groups.Group{}, s.logError("store_get_group_failed", err, "group_id", id)
	}
	return g, nil
}

// FindGroupByName matches case-insensitively.
func (s *Store) FindGroupByName(ctx context.Context, name string) (groups.Group, error) {
	var g groups.Group
	err := s.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return groups.Group{}, groups.ErrNotFound
	}
	if err != nil {
		return groups.Group{}, s.logError("store_find_group_failed", err, "name", name)
	}
	return g, nil
}

// FirstGroup is the group shown to anonymous readers that name none.
func (s *Store) FirstGroup(ctx context.Context) (groups.Group, error) {
	var g groups.Group
	err := s.db.WithContext(ctx).Order("display_order ASC, id ASC").First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return groups.Group{}, groups.ErrNotFound
	}
	if err != nil {
		return groups.Group{}, s.logError("store_first_group_failed", err)
	}
	return g, nil
}

// CreateGroup appends a group at the end of the display order.
func (s *Store) CreateGroup(ctx context.Context, name, background string) (groups.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return groups.Group{}, groups.ErrNameEmpty
	}
	if background == "" {
		background = groups.DefaultBackground
	}

	var created groups.Group
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&groups.Group{}).Where("LOWER(name) = ?", strings.ToLower(name)).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return groups.ErrNameTaken
		}

		var maxOrder int
		if err := tx.Model(&groups.Group{}).Select("COALESCE(MAX(display_order), 0)").Scan(&maxOrder).Error; err != nil {
			return err
		}

		created = groups.Group{Name: name, DisplayOrder: maxOrder + 1, Background: background}
		return tx.Create(&created).Error
	})
	switch {
	case err == nil:
		return created, nil
	case errors.Is(err, groups.ErrNameTaken), errors.Is(err, gorm.ErrDuplicatedKey):
		return groups.Group{}, groups.ErrNameTaken
	default:
		return groups.Group{}, s.logError("store_create_group_failed", err, "name", name)
	}
}

// ReorderGroups assigns display orders 1..n following ids. Every id must
// exist; groups left out keep their relative order after the listed ones.
func (s *Store) ReorderGroups(ctx context.Context, ids []uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var all []groups.Group
		if err := tx.Order("display_order ASC, id ASC").Find(&all).Error; err != nil {
			return err
		}
		known := make(map[uint]bool, len(all))
		for _, g := range all {
			known[g.ID] = true
		}

		order := make([]uint, 0, len(all))
		listed := make(map[uint]bool, len(ids))
		for _, id := range ids {
			if !known[id] {
				return fmt.Errorf("%w: %d", groups.ErrNotFound, id)
			}
			if listed[id] {
				continue
			}
			listed[id] = true
			order = append(order, id)
		}
		for _, g := range all {
			if !listed[g.ID] {
				order = append(order, g.ID)
			}
		}

		for i, id := range order {
			if err := tx.Model(&groups.Group{}).Where("id = ?", id).Update("display_order", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, groups.ErrNotFound) {
		return s.logError("store_reorder_groups_failed", err)
	}
	return err
}

// UpdateSettings changes a group's background and, when defaultImage is not
// nil, its default image. An empty defaultImage clears it.
func (s *Store) UpdateSettings(ctx context.Context, id uint, background string, defaultImage *string) (groups.Group, error) {
	updates := map[string]any{}
	if background != "" {
		updates["background"] = background
	}
	if defaultImage != nil {
		if *defaultImage == "" {
			updates["default_image"] = nil
		} else {
			updates["default_image"] = *defaultImage
		}
	}

	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&groups.Group{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return groups.Group{}, s.logError("store_update_settings_failed", res.Error, "group_id", id)
		}
	}
	return s.GetGroup(ctx, id)
}
