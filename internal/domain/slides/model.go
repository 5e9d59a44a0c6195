package slides

import (
	"errors"
	"strings"
	"time"
)

const (
	TypeImage = "image"
	TypeVideo = "video"
	TypePDF   = "pdf"
)

// MinDuration is the shortest time a slide may stay on screen, in ms.
const MinDuration = 1000

var (
	ErrNotFound = errors.New("slide not found")
	ErrLocked   = errors.New("slide is locked")
)

type Slide struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	GroupID    uint   `gorm:"not null;index:idx_slides_scope,priority:1" json:"groupId"`
	CampaignID *uint  `gorm:"index:idx_slides_scope,priority:2" json:"campaignId,omitempty"`
	Type       string `gorm:"type:varchar(10);not null" json:"type"`
	Name       string `gorm:"type:text;not null" json:"name"`
	Src        string `gorm:"type:text;not null;index" json:"src"`
	Duration   int    `gorm:"not null" json:"duration"`
	Position   int    `gorm:"not null;index:idx_slides_scope,priority:3" json:"position"`
	Locked     bool   `gorm:"not null;default:false" json:"isLocked"`

	CreatedAt time.Time `json:"-"`
}

// IsCover reports whether the slide belongs to the group rather than a campaign.
func (s Slide) IsCover() bool {
	return s.CampaignID == nil
}

// TypeFromMIME maps an upload content type onto a slide type.
func TypeFromMIME(mime string) string {
	switch {
	case strings.HasPrefix(mime, "image"):
		return TypeImage
	case strings.HasPrefix(mime, "video"):
		return TypeVideo
	default:
		return TypePDF
	}
}

// Folder is the uploads sub-directory that holds files of the given type.
func Folder(slideType string) string {
	switch slideType {
	case TypeImage:
		return "images"
	case TypeVideo:
		return "videos"
	default:
		return "pdfs"
	}
}

// NormalizeDuration converts seconds from the admin form into milliseconds.
func NormalizeDuration(seconds float64) int {
	ms := int(seconds * 1000)
	if ms < MinDuration {
		return MinDuration
	}
	return ms
}
