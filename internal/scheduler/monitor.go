package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"signage-panel/internal/clock"
	"signage-panel/internal/domain/campaigns"
	"signage-panel/internal/domain/groups"
	"signage-panel/internal/logger"
	"signage-panel/internal/metrics"
	"signage-panel/internal/realtime"
)

type MonitorStore interface {
	ListGroups(ctx context.Context) ([]groups.Group, error)
	ListCampaigns(ctx context.Context, groupID uint) ([]campaigns.Campaign, error)
}

// Monitor notices when the active campaign of a group changes because time
// passed, and tells that group's players to reload.
type Monitor struct {
	Store  MonitorStore
	Cache  *ActiveCache
	Events realtime.Publisher
	Clock  clock.Clock
	Logger *slog.Logger
}

type observation struct {
	groupID uint
	active  *uint
}

// RunOnce evaluates every group at one instant. All groups are read before
// the cache is touched, so a failed read leaves the cache as it was.
func (m Monitor) RunOnce(ctx context.Context) error {
	log := logger.Or(m.Logger)
	now := time.Now().UTC()
	if m.Clock != nil {
		now = m.Clock.Now().UTC()
	}

	list, err := m.Store.ListGroups(ctx)
	if err != nil {
		return m.fail(log, fmt.Errorf("list groups: %w", err))
	}

	seen := make([]observation, 0, len(list))
	for _, g := range list {
		cs, err := m.Store.ListCampaigns(ctx, g.ID)
		if err != nil {
			return m.fail(log, fmt.Errorf("list campaigns of group %d: %w", g.ID, err))
		}
		seen = append(seen, observation{groupID: g.ID, active: campaigns.ActiveID(now, cs)})
	}

	for _, o := range seen {
		// A group never observed counts as having had no active campaign.
		prev, _ := m.Cache.Get(o.groupID)
		m.Cache.Set(o.groupID, o.active)
		if sameID(prev, o.active) {
			continue
		}

		metrics.CampaignTransitionsTotal.Inc()
		log.Info("active campaign changed",
			"event", "campaign_transition",
			"module", "scheduler",
			"layer", "worker",
			"group_id", o.groupID,
			"from_campaign_id", idAttr(prev),
			"to_campaign_id", idAttr(o.active),
		)
		m.Events.Publish(ctx, realtime.PlaylistUpdate(o.groupID, realtime.ReasonCampaignTransition))
	}
	return nil
}

func (m Monitor) fail(log *slog.Logger, err error) error {
	log.Error("campaign transition check failed",
		"event", "campaign_transition_check_failed",
		"module", "scheduler",
		"layer", "worker",
		"error", err.Error(),
	)
	return err
}

func idAttr(id *uint) any {
	if id == nil {
		return nil
	}
	return *id
}
