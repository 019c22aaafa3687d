package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bundle_scan_backend/internal/scanning/domain"
	"bundle_scan_backend/platform/apperr"
	"bundle_scan_backend/platform/cache"
	"bundle_scan_backend/platform/logger"
)

// DefaultProcessConfigTTL is how long a fetched template is served before it
// is fetched again.
const DefaultProcessConfigTTL = 5 * time.Minute

// TemplateSource fetches an order's process template rows.
type TemplateSource interface {
	FetchOrderProcessConfig(ctx context.Context, orderID string) ([]domain.ProcessConfigEntry, error)
}

// SharedTemplateStore is an optional second cache level shared between
// instances. expiresAt is the end of the window the entries were fetched in.
type SharedTemplateStore interface {
	Get(ctx context.Context, orderID string) (entries []domain.ProcessConfigEntry, expiresAt time.Time, ok bool, err error)
	Put(ctx context.Context, orderID string, entries []domain.ProcessConfigEntry, ttl time.Duration) error
}

// LoaderOptions configures a ConfigLoader.
type LoaderOptions struct {
	TTL     time.Duration
	MaxSize int
	Clock   cache.Clock
	// Shared is nil when no Redis is configured.
	Shared SharedTemplateStore
}

// ConfigLoader loads classified process templates per order, read-through
// a cache with absolute expiry.
type ConfigLoader struct {
	source TemplateSource
	shared SharedTemplateStore
	cache  *cache.TTL[string, []domain.ProcessDefinition]
	ttl    time.Duration
	now    cache.Clock
	log    *logger.Logger
}

// NewConfigLoader creates a loader. One loader is shared by every request.
func NewConfigLoader(source TemplateSource, log *logger.Logger, opts LoaderOptions) *ConfigLoader {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultProcessConfigTTL
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &ConfigLoader{
		source: source,
		shared: opts.Shared,
		cache: cache.New[string, []domain.ProcessDefinition](cache.Config{
			Name:    "process_templates",
			TTL:     ttl,
			MaxSize: opts.MaxSize,
			Clock:   now,
		}),
		ttl: ttl,
		now: now,
		log: log,
	}
}

// Load returns the order's process definitions ordered by sortOrder. An order
// without a template fails with ErrConfigurationMissing.
func (l *ConfigLoader) Load(ctx context.Context, orderID string) ([]domain.ProcessDefinition, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, apperr.Validation("orderId is required")
	}

	if defs, ok := l.cache.Get(orderID); ok {
		l.log.CacheEvent(l.cache.Name(), orderID, true)
		return cloneDefinitions(defs), nil
	}
	l.log.CacheEvent(l.cache.Name(), orderID, false)

	if defs, ok := l.loadShared(ctx, orderID); ok {
		return cloneDefinitions(defs), nil
	}

	entries, err := l.fetch(ctx, orderID)
	if err != nil {
		return nil, err
	}
	defs := domain.BuildProcessDefinitions(entries)
	if len(defs) == 0 {
		return nil, configurationMissing(orderID)
	}

	l.cache.Set(orderID, defs)
	l.storeShared(ctx, orderID, entries)
	return cloneDefinitions(defs), nil
}

// ListProcesses returns the full classified template, including the
// non-countable procurement, cutting and warehouse steps.
func (l *ConfigLoader) ListProcesses(ctx context.Context, orderID string) ([]domain.ProcessDefinition, error) {
	return l.Load(ctx, orderID)
}

// GetProcessPrice returns the unit price of processName. A name that is not
// in the template prices at zero.
func (l *ConfigLoader) GetProcessPrice(ctx context.Context, orderID, processName string) (decimal.Decimal, error) {
	defs, err := l.Load(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	def, ok := domain.FindProcess(defs, processName)
	if !ok {
		return decimal.Zero, nil
	}
	return def.UnitPrice, nil
}

// Invalidate drops the in-process entry for orderID.
func (l *ConfigLoader) Invalidate(orderID string) {
	l.cache.Delete(strings.TrimSpace(orderID))
}

// WarmShared fetches the template from the source and refreshes the shared
// store with a full TTL. It is a no-op without a shared store.
func (l *ConfigLoader) WarmShared(ctx context.Context, orderID string) error {
	if l.shared == nil {
		return nil
	}
	entries, err := l.fetch(ctx, orderID)
	if err != nil {
		return err
	}
	if len(domain.BuildProcessDefinitions(entries)) == 0 {
		return configurationMissing(orderID)
	}
	if err := l.shared.Put(ctx, orderID, entries, l.ttl); err != nil {
		return fmt.Errorf("warm template %s: %w", orderID, err)
	}
	return nil
}

// Stats exposes cache counters.
func (l *ConfigLoader) Stats() cache.Stats {
	return l.cache.Stats()
}

func (l *ConfigLoader) fetch(ctx context.Context, orderID string) ([]domain.ProcessConfigEntry, error) {
	entries, err := l.source.FetchOrderProcessConfig(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || apperr.Is(err, apperr.KindNotFound) {
			return nil, configurationMissing(orderID)
		}
		l.log.DatabaseError("fetch_order_process_config", err)
		return nil, apperr.Wrap(apperr.KindUnavailable, "process configuration could not be loaded", err).
			WithOp("ConfigLoader.Load")
	}
	return entries, nil
}

func (l *ConfigLoader) loadShared(ctx context.Context, orderID string) ([]domain.ProcessDefinition, bool) {
	if l.shared == nil {
		return nil, false
	}
	entries, expiresAt, ok, err := l.shared.Get(ctx, orderID)
	if err != nil {
		l.log.WithContext(ctx).Warn("shared template cache read failed", "order_id", orderID, "error", err)
		return nil, false
	}
	l.log.CacheEvent("shared_process_templates", orderID, ok)
	if !ok {
		return nil, false
	}
	defs := domain.BuildProcessDefinitions(entries)
	if len(defs) == 0 || !expiresAt.After(l.now()) {
		return nil, false
	}
	l.cache.SetUntil(orderID, defs, expiresAt)
	return defs, true
}

func (l *ConfigLoader) storeShared(ctx context.Context, orderID string, entries []domain.ProcessConfigEntry) {
	if l.shared == nil {
		return
	}
	if err := l.shared.Put(ctx, orderID, entries, l.ttl); err != nil {
		l.log.WithContext(ctx).Warn("shared template cache write failed", "order_id", orderID, "error", err)
	}
}

func configurationMissing(orderID string) error {
	return apperr.Wrap(apperr.KindUnprocessable,
		fmt.Sprintf("order %s has no process configuration; configure its process template before scanning", orderID),
		domain.ErrConfigurationMissing).
		WithOp("ConfigLoader.Load").
		WithDetails(map[string]string{"orderId": orderID, "reason": "configuration_missing"})
}

func cloneDefinitions(defs []domain.ProcessDefinition) []domain.ProcessDefinition {
	out := make([]domain.ProcessDefinition, len(defs))
	copy(out, defs)
	return out
}
