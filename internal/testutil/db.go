// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"signage-panel/config"
	"signage-panel/database"
	"signage-panel/internal/domain/campaigns"
	"signage-panel/internal/domain/groups"
	"signage-panel/internal/domain/slides"
	"signage-panel/internal/realtime"

	"gorm.io/gorm"
)

// NewDB opens a migrated in-memory sqlite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func CreateGroup(t *testing.T, db *gorm.DB, name string, order int) groups.Group {
	t.Helper()
	g := groups.Group{Name: name, DisplayOrder: order, Background: groups.DefaultBackground}
	if err := db.Create(&g).Error; err != nil {
		t.Fatalf("create group %q: %v", name, err)
	}
	return g
}

// CampaignFixture describes a campaign row to insert.
type CampaignFixture struct {
	GroupID  uint
	Name     string
	StartsAt time.Time
	EndsAt   time.Time
	Disabled bool
	Priority int
}

func CreateCampaign(t *testing.T, db *gorm.DB, f CampaignFixture) campaigns.Campaign {
	t.Helper()
	if f.Priority == 0 {
		f.Priority = 1
	}
	if f.Name == "" {
		f.Name = "campaign"
	}
	c := campaigns.Campaign{
		GroupID:  f.GroupID,
		Name:     f.Name,
		StartsAt: f.StartsAt.UTC(),
		EndsAt:   f.EndsAt.UTC(),
		Enabled:  !f.Disabled,
		Priority: f.Priority,
	}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("create campaign %q: %v", f.Name, err)
	}
	return c
}

// CreateSlides inserts one image slide per source into the scope, with
// positions 0..n-1.
func CreateSlides(t *testing.T, db *gorm.DB, sc slides.Scope, sources ...string) []slides.Slide {
	t.Helper()
	out := make([]slides.Slide, 0, len(sources))
	for i, src := range sources {
		s := slides.Slide{
			GroupID:    sc.GroupID,
			CampaignID: sc.CampaignID,
			Type:       slides.TypeImage,
			Name:       src,
			Src:        src,
			Duration:   5000,
			Position:   i,
		}
		if err := db.Create(&s).Error; err != nil {
			t.Fatalf("create slide %q: %v", src, err)
		}
		out = append(out, s)
	}
	return out
}

// Recorder is a realtime.Publisher that keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (r *Recorder) Publish(_ context.Context, ev realtime.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *Recorder) Events() []realtime.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]realtime.Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
