// Package metrics provides Prometheus metrics for the panel.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SchedulerTicksTotal counts scheduler job executions by outcome.
	SchedulerTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "panel",
			Name:      "scheduler_ticks_total",
			Help:      "Total number of scheduler job runs",
		},
		[]string{"job", "status"},
	)

	// SchedulerTickDuration measures how long a job run took.
	SchedulerTickDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "panel",
			Name:      "scheduler_tick_duration_seconds",
			Help:      "Duration of scheduler job runs in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"job"},
	)

	// CampaignTransitionsTotal counts active-campaign changes observed by the monitor.
	CampaignTransitionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "panel",
			Name:      "campaign_transitions_total",
			Help:      "Total number of active campaign transitions",
		},
	)

	// CampaignsReapedTotal counts expired campaign deletions by outcome.
	CampaignsReapedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "panel",
			Name:      "campaigns_reaped_total",
			Help:      "Total number of expired campaigns processed by the reaper",
		},
		[]string{"status"},
	)

	// MediaFilesTotal counts media reclamation decisions.
	MediaFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "panel",
			Name:      "media_files_reclaimed_total",
			Help:      "Media files considered for reclamation, by outcome",
		},
		[]string{"status"},
	)

	// PlayersConnected tracks open player websockets.
	PlayersConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "panel",
			Name:      "players_connected",
			Help:      "Number of connected player websockets",
		},
	)

	// EventsTotal counts fanout deliveries by event and outcome.
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "panel",
			Name:      "events_total",
			Help:      "Realtime events by type and delivery outcome",
		},
		[]string{"event", "status"},
	)
)

// RecordTick records one scheduler job run.
func RecordTick(job, status string, seconds float64) {
	SchedulerTicksTotal.WithLabelValues(job, status).Inc()
	SchedulerTickDuration.WithLabelValues(job).Observe(seconds)
}

// RecordEvent records the outcome of one event delivery.
func RecordEvent(event, status string) {
	EventsTotal.WithLabelValues(event, status).Inc()
}
