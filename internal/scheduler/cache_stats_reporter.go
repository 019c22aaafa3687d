package scheduler

import (
	"context"
	"time"

	"bundle_scan_backend/platform/cache"
	"bundle_scan_backend/platform/logger"
)

const defaultCacheStatsInterval = 5 * time.Minute

// CacheStatsSource exposes cache counters.
type CacheStatsSource interface {
	Stats() cache.Stats
}

// CacheStatsReporter periodically logs template cache counters.
type CacheStatsReporter struct {
	source   CacheStatsSource
	log      *logger.Logger
	interval time.Duration
	last     cache.Stats
}

func NewCacheStatsReporter(source CacheStatsSource, log *logger.Logger, interval time.Duration) *CacheStatsReporter {
	if interval <= 0 {
		interval = defaultCacheStatsInterval
	}
	return &CacheStatsReporter{source: source, log: log, interval: interval}
}

func (r *CacheStatsReporter) Run(ctx context.Context) {
	if r == nil || r.source == nil {
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.report()
		}
	}
}

func (r *CacheStatsReporter) report() {
	stats := r.source.Stats()
	hits := stats.Hits - r.last.Hits
	misses := stats.Misses - r.last.Misses
	r.last = stats

	if hits == 0 && misses == 0 {
		return
	}
	r.log.Info("process template cache stats",
		"hits", hits,
		"misses", misses,
		"expired", stats.Expires,
		"evicted", stats.Evicted,
		"size", stats.Size,
	)
}
