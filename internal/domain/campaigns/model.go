package campaigns

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("campaign not found")
	ErrNameRequired    = errors.New("campaign name is required")
	ErrInvalidWindow   = errors.New("campaign must end after it starts")
	ErrInvalidTime     = errors.New("invalid campaign timestamp")
	ErrInvalidPriority = errors.New("campaign priority must be a positive integer")
)

type Campaign struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	GroupID uint   `gorm:"not null;index:idx_campaigns_group_selection,priority:1" json:"groupId"`
	Name    string `gorm:"type:text;not null" json:"name"`

	StartsAt time.Time `gorm:"not null;index:idx_campaigns_group_selection,priority:3" json:"startsAt"`
	EndsAt   time.Time `gorm:"not null;index" json:"endsAt"`

	Enabled  bool `gorm:"not null" json:"enabled"`
	Priority int  `gorm:"not null;default:1;index:idx_campaigns_group_selection,priority:2" json:"priority"`

	CreatedBy *uint `json:"createdBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Status evaluates the campaign at now.
func (c Campaign) Status(now time.Time) Status {
	return ResolveStatus(now, c.StartsAt, c.EndsAt, c.Enabled)
}

// Validate enforces the invariants checked on every create and update.
func (c Campaign) Validate() error {
	if c.Name == "" {
		return ErrNameRequired
	}
	if c.StartsAt.IsZero() || c.EndsAt.IsZero() {
		return ErrInvalidTime
	}
	if !c.EndsAt.After(c.StartsAt) {
		return ErrInvalidWindow
	}
	if c.Priority < 1 {
		return ErrInvalidPriority
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp accepts RFC3339 and the zone-less forms sent by
// datetime-local inputs (interpreted in loc). The result is UTC.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidTime
}
