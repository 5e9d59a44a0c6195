package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"signage-panel/internal/clock"
	"signage-panel/internal/domain/campaigns"
	"signage-panel/internal/domain/media"
	"signage-panel/internal/logger"
	"signage-panel/internal/metrics"
	"signage-panel/internal/realtime"
)

type ReaperStore interface {
	ListAllCampaigns(ctx context.Context) ([]campaigns.Campaign, error)
	DeleteCampaignCascade(ctx context.Context, id uint) ([]string, error)
}

// Reaper deletes campaigns that ended more than Grace ago, together with
// their slides and any media file left without references.
type Reaper struct {
	Store     ReaperStore
	Reclaimer media.Reclaimer
	Cache     *ActiveCache
	Events    realtime.Publisher
	Clock     clock.Clock
	Grace     time.Duration
	Logger    *slog.Logger
}

type ReapResult struct {
	Deleted  []uint
	Failed   []uint
	Affected []uint
}

// Expired reports whether c ended more than grace before now. A campaign
// without a usable end time is never reaped.
func Expired(c campaigns.Campaign, now time.Time, grace time.Duration) bool {
	if c.EndsAt.IsZero() {
		return false
	}
	return now.Sub(c.EndsAt) > grace
}

// RunOnce handles every expired campaign in isolation: one failing deletion
// does not stop the others. Only a failure to list campaigns is returned.
func (r Reaper) RunOnce(ctx context.Context) (ReapResult, error) {
	log := logger.Or(r.Logger)
	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	all, err := r.Store.ListAllCampaigns(ctx)
	if err != nil {
		log.Error("expired campaign scan failed",
			"event", "expired_campaign_scan_failed",
			"module", "scheduler",
			"layer", "worker",
			"error", err.Error(),
		)
		return ReapResult{}, fmt.Errorf("list campaigns: %w", err)
	}

	var res ReapResult
	affected := make(map[uint]struct{})
	for _, c := range all {
		if !Expired(c, now, r.Grace) {
			continue
		}

		sources, err := r.Store.DeleteCampaignCascade(ctx, c.ID)
		if err != nil {
			metrics.CampaignsReapedTotal.WithLabelValues("failed").Inc()
			log.Error("expired campaign cleanup failed",
				"event", "expired_campaign_cleanup_failed",
				"module", "scheduler",
				"layer", "worker",
				"group_id", c.GroupID,
				"campaign_id", c.ID,
				"error", err.Error(),
			)
			res.Failed = append(res.Failed, c.ID)
			continue
		}
		metrics.CampaignsReapedTotal.WithLabelValues("deleted").Inc()
		res.Deleted = append(res.Deleted, c.ID)

		out := r.Reclaimer.Reclaim(ctx, sources)
		log.Info("expired campaign removed",
			"event", "expired_campaign_removed",
			"module", "scheduler",
			"layer", "worker",
			"group_id", c.GroupID,
			"campaign_id", c.ID,
			"ended_at", c.EndsAt,
			"files_removed", len(out.Removed),
			"files_kept", len(out.Kept),
			"files_failed", len(out.Failed),
		)

		affected[c.GroupID] = struct{}{}
		r.Cache.Reset(c.GroupID)
	}

	for g := range affected {
		res.Affected = append(res.Affected, g)
	}
	sort.Slice(res.Affected, func(i, j int) bool { return res.Affected[i] < res.Affected[j] })
	for _, g := range res.Affected {
		r.Events.Publish(ctx, realtime.PlaylistUpdate(g, realtime.ReasonExpiredCleanup))
	}
	return res, nil
}
