package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"bundle_scan_backend/internal/scanning/domain"
	"bundle_scan_backend/platform/logger"
)

const (
	defaultWarmLimit       = 500
	defaultWarmParallelism = 8
)

// ActiveOrderLister lists orders still in production.
type ActiveOrderLister interface {
	ListActiveOrderIDs(ctx context.Context, limit int) ([]string, error)
}

// SharedTemplateWarmer refreshes one order's template in the shared cache.
type SharedTemplateWarmer interface {
	WarmShared(ctx context.Context, orderID string) error
}

// WarmResult summarises one sweep.
type WarmResult struct {
	Orders  int
	Warmed  int64
	Missing int64
	Failed  int64
}

// TemplateWarmer refreshes the shared template cache for every active order
// so API instances rarely fetch templates on the scan path.
type TemplateWarmer struct {
	orders      ActiveOrderLister
	templates   SharedTemplateWarmer
	parallelism int
	log         *logger.Logger
}

func NewTemplateWarmer(orders ActiveOrderLister, templates SharedTemplateWarmer, parallelism int, log *logger.Logger) *TemplateWarmer {
	if parallelism < 1 {
		parallelism = defaultWarmParallelism
	}
	return &TemplateWarmer{orders: orders, templates: templates, parallelism: parallelism, log: log}
}

// Warm runs one sweep. Per-order failures are counted, not returned; only a
// failure to list orders fails the sweep.
func (w *TemplateWarmer) Warm(ctx context.Context, limit int) (WarmResult, error) {
	if limit < 1 {
		limit = defaultWarmLimit
	}

	ids, err := w.orders.ListActiveOrderIDs(ctx, limit)
	if err != nil {
		return WarmResult{}, fmt.Errorf("list active orders: %w", err)
	}

	var warmed, missing, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.parallelism)

	for _, id := range ids {
		g.Go(func() error {
			err := w.templates.WarmShared(gctx, id)
			switch {
			case err == nil:
				warmed.Add(1)
			case errors.Is(err, domain.ErrConfigurationMissing):
				missing.Add(1)
			default:
				failed.Add(1)
				w.log.Warn("template warm failed", "order_id", id, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	result := WarmResult{
		Orders:  len(ids),
		Warmed:  warmed.Load(),
		Missing: missing.Load(),
		Failed:  failed.Load(),
	}
	w.log.Info("template warm sweep finished",
		"orders", result.Orders,
		"warmed", result.Warmed,
		"missing", result.Missing,
		"failed", result.Failed,
	)
	return result, nil
}
