package scheduler

import (
	"context"
	"log/slog"
	"time"

	"signage-panel/internal/logger"
	"signage-panel/internal/metrics"
)

type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner executes jobs one at a time on a single goroutine: every job once
// at start, then each on its own interval. A failing run is logged and the
// job simply waits for its next tick. Jobs without an interval run once.
type Runner struct {
	jobs   []Job
	logger *slog.Logger
}

func NewRunner(l *slog.Logger, jobs ...Job) *Runner {
	return &Runner{jobs: jobs, logger: logger.Or(l)}
}

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	for _, j := range r.jobs {
		r.logger.Info("scheduling job", "event", "job_scheduled", "module", "scheduler", "job", j.Name, "interval", j.Interval.String())
	}
	for _, j := range r.jobs {
		if ctx.Err() != nil {
			return nil
		}
		r.runJob(ctx, j)
	}

	due := make(chan int)
	for i, j := range r.jobs {
		if j.Interval <= 0 {
			continue
		}
		go func(i int, every time.Duration) {
			t := time.NewTicker(every)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					select {
					case due <- i:
					case <-ctx.Done():
						return
					}
				}
			}
		}(i, j.Interval)
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("scheduler stopped", "event", "scheduler_stopped", "module", "scheduler")
			return nil
		case i := <-due:
			r.runJob(ctx, r.jobs[i])
		}
	}
}

func (r *Runner) runJob(ctx context.Context, j Job) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			metrics.RecordTick(j.Name, "panic", time.Since(start).Seconds())
			r.logger.Error("job panicked", "event", "job_panicked", "module", "scheduler", "job", j.Name, "panic", p)
		}
	}()

	if err := j.Run(ctx); err != nil {
		metrics.RecordTick(j.Name, "error", time.Since(start).Seconds())
		r.logger.Warn("job run failed", "event", "job_failed", "module", "scheduler", "job", j.Name, "error", err.Error())
		return
	}
	metrics.RecordTick(j.Name, "ok", time.Since(start).Seconds())
}
