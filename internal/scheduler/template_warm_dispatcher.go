package scheduler

import (
	"context"
	"time"

	"bundle_scan_backend/platform/logger"
)

const defaultWarmInterval = 4 * time.Minute

// TemplateWarmDispatcher enqueues a warm-up sweep at start and on every tick.
type TemplateWarmDispatcher struct {
	enqueuer WarmEnqueuer
	interval time.Duration
	limit    int
	log      *logger.Logger
}

func NewTemplateWarmDispatcher(enqueuer WarmEnqueuer, interval time.Duration, limit int, log *logger.Logger) *TemplateWarmDispatcher {
	if interval <= 0 {
		interval = defaultWarmInterval
	}
	return &TemplateWarmDispatcher{enqueuer: enqueuer, interval: interval, limit: limit, log: log}
}

func (d *TemplateWarmDispatcher) Run(ctx context.Context) {
	if d == nil || d.enqueuer == nil {
		return
	}

	d.dispatch(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.dispatch(ctx)
		}
	}
}

func (d *TemplateWarmDispatcher) dispatch(ctx context.Context) {
	// Slightly shorter than the interval so the next tick is never rejected.
	uniqueFor := d.interval - d.interval/10
	if err := d.enqueuer.EnqueueTemplateWarm(ctx, TemplateWarmPayload{Limit: d.limit}, uniqueFor); err != nil {
		d.log.Warn("template warm enqueue failed", "error", err)
	}
}
