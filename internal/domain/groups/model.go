package groups

import "errors"

const DefaultBackground = "#ffffff"

type Group struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Name         string  `gorm:"type:text;not null;uniqueIndex:idx_groups_name" json:"name"`
	DisplayOrder int     `gorm:"not null;default:0;index" json:"displayOrder"`
	Background   string  `gorm:"type:text;not null;default:'#ffffff'" json:"background"`
	DefaultImage *string `gorm:"type:text" json:"defaultImage"`
}

// EffectiveBackground never returns an empty color.
func (g Group) EffectiveBackground() string {
	if g.Background == "" {
		return DefaultBackground
	}
	return g.Background
}

var (
	ErrNotFound  = errors.New("group not found")
	ErrNameTaken = errors.New("group name already exists")
	ErrNameEmpty = errors.New("group name is required")
)
