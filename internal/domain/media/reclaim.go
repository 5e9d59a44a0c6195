package media

import (
	"context"
	"log/slog"
	"sort"

	"signage-panel/internal/logger"
	"signage-panel/internal/metrics"
)

// ReferenceCounter reports how many rows still point at a source.
type ReferenceCounter interface {
	CountSourceReferences(ctx context.Context, src string) (int64, error)
}

type FileStore interface {
	// Owns reports whether src is a file managed by this store. Foreign
	// sources (external URLs) are never removed.
	Owns(src string) bool
	Remove(src string) error
}

// Outcome of one reclamation pass, by source.
type Outcome struct {
	Removed []string
	Kept    []string
	Skipped []string
	Failed  []string
}

// Reclaimer removes media files that nothing references anymore. Files are
// shared by source, so a file is only removed once its last reference is gone.
type Reclaimer struct {
	Refs   ReferenceCounter
	Files  FileStore
	Logger *slog.Logger
}

// Reclaim checks every distinct source and removes the unreferenced ones.
// Failures are logged and reported, never returned: the rows they belonged
// to are already gone.
func (r Reclaimer) Reclaim(ctx context.Context, sources []string) Outcome {
	log := logger.Or(r.Logger)
	var out Outcome

	for _, src := range Distinct(sources) {
		if !r.Files.Owns(src) {
			out.Skipped = append(out.Skipped, src)
			continue
		}
		n, err := r.Refs.CountSourceReferences(ctx, src)
		if err != nil {
			log.Error("count media references failed",
				"event", "media_reclaim_failed", "module", "media", "src", src, "error", err)
			metrics.MediaFilesTotal.WithLabelValues("failed").Inc()
			out.Failed = append(out.Failed, src)
			continue
		}
		if n > 0 {
			metrics.MediaFilesTotal.WithLabelValues("kept").Inc()
			out.Kept = append(out.Kept, src)
			continue
		}

		if err := r.Files.Remove(src); err != nil {
			log.Warn("remove media file failed",
				"event", "media_reclaim_failed", "module", "media", "src", src, "error", err)
			metrics.MediaFilesTotal.WithLabelValues("failed").Inc()
			out.Failed = append(out.Failed, src)
			continue
		}
		metrics.MediaFilesTotal.WithLabelValues("removed").Inc()
		out.Removed = append(out.Removed, src)
	}
	return out
}

// Distinct returns the non-empty sources once each, sorted.
func Distinct(sources []string) []string {
	seen := make(map[string]struct{}, len(sources))
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
