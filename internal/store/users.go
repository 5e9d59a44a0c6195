package store

import (
	"context"
	"errors"
	"strings"

	"signage-panel/internal/domain/groups"
	"signage-panel/internal/domain/users"

	"gorm.io/gorm"
)

func (s *Store) GetUser(ctx context.Context, id uint) (users.User, error) {
	var u users.User
	err := s.db.WithContext(ctx).Preload("Group").First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return users.User{}, users.ErrNotFound
	}
	if err != nil {
		return users.User{}, s.logError("store_get_user_failed", err, "user_id", id)
	}
	return u, nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (users.User, error) {
	var u users.User
	err := s.db.WithContext(ctx).Preload("Group").
		Where("username = ?", strings.TrimSpace(username)).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return users.User{}, users.ErrNotFound
	}
	if err != nil {
		return users.User{}, s.logError("store_find_user_failed", err, "username", username)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]users.User, error) {
	var list []users.User
	if err := s.db.WithContext(ctx).Preload("Group").Order("id ASC").Find(&list).Error; err != nil {
		return nil, s.logError("store_list_users_failed", err)
	}
	return list, nil
}

// CreateUser inserts u. The referenced group, if any, must exist.
func (s *Store) CreateUser(ctx context.Context, u *users.User) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if u.GroupID != nil {
			var n int64
			if err := tx.Model(&groups.Group{}).Where("id = ?", *u.GroupID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return groups.ErrNotFound
			}
		}
		var taken int64
		if err := tx.Model(&users.User{}).Where("username = ?", u.Username).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return users.ErrUsernameTaken
		}
		return tx.Omit("Group").Create(u).Error
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, groups.ErrNotFound), errors.Is(err, users.ErrUsernameTaken):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return users.ErrUsernameTaken
	default:
		return s.logError("store_create_user_failed", err, "username", u.Username)
	}
}
