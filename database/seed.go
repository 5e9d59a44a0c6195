package database

import (
	"errors"
	"fmt"
	"strings"

	"signage-panel/internal/domain/groups"
	"signage-panel/internal/domain/users"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SeedOptions struct {
	Groups        []string
	MasterUser    string
	MasterPass    string
	GroupUserPass string
}

// Seed makes sure the default groups, the master account and one account per
// seeded group exist. Existing rows are never modified, except that groups
// without a display order are numbered in id order.
func Seed(db *gorm.DB, opts SeedOptions) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for i, name := range opts.Groups {
			g := groups.Group{Name: name, DisplayOrder: i + 1, Background: groups.DefaultBackground}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoNothing: true,
			}).Create(&g).Error; err != nil {
				return fmt.Errorf("seed group %q: %w", name, err)
			}
		}

		if err := numberUnorderedGroups(tx); err != nil {
			return err
		}

		if opts.MasterUser != "" {
			if err := ensureUser(tx, opts.MasterUser, opts.MasterPass, users.RoleMaster, nil); err != nil {
				return err
			}
		}

		if opts.GroupUserPass == "" {
			return nil
		}
		for _, name := range opts.Groups {
			var g groups.Group
			if err := tx.Where("name = ?", name).First(&g).Error; err != nil {
				return fmt.Errorf("load seeded group %q: %w", name, err)
			}
			gid := g.ID
			if err := ensureUser(tx, strings.ToLower(g.Name), opts.GroupUserPass, users.RoleGroupUser, &gid); err != nil {
				return err
			}
		}
		return nil
	})
}

func numberUnorderedGroups(tx *gorm.DB) error {
	var zero int64
	if err := tx.Model(&groups.Group{}).Where("display_order = 0").Count(&zero).Error; err != nil {
		return err
	}
	if zero == 0 {
		return nil
	}

	var all []groups.Group
	if err := tx.Order("id").Find(&all).Error; err != nil {
		return err
	}
	for i, g := range all {
		if err := tx.Model(&groups.Group{}).Where("id = ?", g.ID).Update("display_order", i+1).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureUser(tx *gorm.DB, username, password, role string, groupID *uint) error {
	var existing users.User
	err := tx.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup user %q: %w", username, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u := users.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		GroupID:      groupID,
		Active:       true,
	}
	if err := tx.Create(&u).Error; err != nil {
		return fmt.Errorf("seed user %q: %w", username, err)
	}
	return nil
}
