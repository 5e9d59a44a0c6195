package users

import (
	"errors"

	"signage-panel/internal/domain/groups"
)

const (
	RoleMaster    = "master"
	RoleGroupUser = "group_user"
)

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"type:text;not null;uniqueIndex:idx_users_username"`
	PasswordHash string `gorm:"type:text;not null"`
	Role         string `gorm:"type:varchar(20);not null"`
	Active       bool   `gorm:"not null"`

	GroupID *uint
	Group   *groups.Group `gorm:"constraint:OnDelete:SET NULL;"`
}

func (u User) IsMaster() bool {
	return u.Role == RoleMaster
}

// CanAccessGroup reports whether the user may read or write groupID.
func (u User) CanAccessGroup(groupID uint) bool {
	if u.IsMaster() {
		return true
	}
	return u.GroupID != nil && *u.GroupID == groupID
}

var (
	ErrNotFound         = errors.New("user not found")
	ErrUsernameTaken    = errors.New("username already exists")
	ErrPasswordTooShort = errors.New("password must be at least 4 characters")
)

// MinPasswordLength applies to accounts created through the API.
const MinPasswordLength = 4
