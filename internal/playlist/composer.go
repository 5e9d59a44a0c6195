// Package playlist builds what a group's players should show right now.
package playlist

import (
	"context"
	"fmt"

	"signage-panel/internal/clock"
	"signage-panel/internal/domain/campaigns"
	"signage-panel/internal/domain/slides"
)

type Source interface {
	ListCampaigns(ctx context.Context, groupID uint) ([]campaigns.Campaign, error)
	ListSlides(ctx context.Context, sc slides.Scope) ([]slides.Slide, error)
}

type CampaignRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type Item struct {
	ID       uint   `json:"id"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Src      string `json:"src"`
	Duration int    `json:"duration"`
	IsLocked bool   `json:"isLocked"`
}

// Playlist is the player's view of a group. Slides is empty when no campaign
// is running; players then loop the cover slides alone.
type Playlist struct {
	Campaign    *CampaignRef `json:"campaign"`
	CoverSlides []Item       `json:"coverSlides"`
	Slides      []Item       `json:"slides"`
}

type Composer struct {
	source Source
	clock  clock.Clock
}

func NewComposer(source Source, clk clock.Clock) *Composer {
	if clk == nil {
		clk = clock.System{}
	}
	return &Composer{source: source, clock: clk}
}

// Compose evaluates the group's campaigns at the current time. It always
// recomputes from the store and never consults the monitor's cache.
func (c *Composer) Compose(ctx context.Context, groupID uint) (Playlist, error) {
	now := c.clock.Now()

	list, err := c.source.ListCampaigns(ctx, groupID)
	if err != nil {
		return Playlist{}, fmt.Errorf("list campaigns: %w", err)
	}
	cover, err := c.source.ListSlides(ctx, slides.Scope{GroupID: groupID})
	if err != nil {
		return Playlist{}, fmt.Errorf("list cover slides: %w", err)
	}

	out := Playlist{CoverSlides: toItems(cover), Slides: []Item{}}

	active := campaigns.SelectActive(now, list)
	if active == nil {
		return out, nil
	}
	id := active.ID
	own, err := c.source.ListSlides(ctx, slides.Scope{GroupID: groupID, CampaignID: &id})
	if err != nil {
		return Playlist{}, fmt.Errorf("list campaign slides: %w", err)
	}
	out.Campaign = &CampaignRef{ID: active.ID, Name: active.Name}
	out.Slides = toItems(own)
	return out, nil
}

func toItems(list []slides.Slide) []Item {
	items := make([]Item, 0, len(list))
	for _, s := range list {
		items = append(items, Item{
			ID:       s.ID,
			Type:     s.Type,
			Name:     s.Name,
			Src:      s.Src,
			Duration: s.Duration,
			IsLocked: s.Locked,
		})
	}
	return items
}
