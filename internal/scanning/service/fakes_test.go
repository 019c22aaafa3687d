package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"bundle_scan_backend/internal/scanning/domain"
)

var baseTime = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

// fakeStore is an in-memory stand-in for the production database.
type fakeStore struct {
	mu          sync.Mutex
	templates   map[string][]domain.ProcessConfigEntry
	templateErr error
	fetchCalls  atomic.Int64

	bundles   map[string]domain.Bundle
	bundleErr error

	scans    []domain.ScanRecord
	scansErr error
	pageHits atomic.Int64

	warehoused   map[string]bool
	warehouseErr error

	orders map[string]domain.OrderSummary
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		templates:  make(map[string][]domain.ProcessConfigEntry),
		bundles:    make(map[string]domain.Bundle),
		warehoused: make(map[string]bool),
		orders:     make(map[string]domain.OrderSummary),
	}
}

func (f *fakeStore) FetchOrderProcessConfig(_ context.Context, orderID string) ([]domain.ProcessConfigEntry, error) {
	f.fetchCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.templateErr != nil {
		return nil, f.templateErr
	}
	entries := f.templates[orderID]
	out := make([]domain.ProcessConfigEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func (f *fakeStore) FetchBundle(_ context.Context, orderID, bundleID string) (domain.Bundle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bundleErr != nil {
		return domain.Bundle{}, f.bundleErr
	}
	b, ok := f.bundles[orderID+"/"+bundleID]
	if !ok {
		return domain.Bundle{}, domain.ErrNotFound
	}
	return b, nil
}

func (f *fakeStore) ListScanRecords(_ context.Context, orderID, bundleID string, page, pageSize int) ([]domain.ScanRecord, error) {
	f.pageHits.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scansErr != nil {
		return nil, f.scansErr
	}
	var matching []domain.ScanRecord
	for _, rec := range f.scans {
		if rec.OrderID == orderID && rec.BundleID == bundleID {
			matching = append(matching, rec)
		}
	}
	start := (page - 1) * pageSize
	if start >= len(matching) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(matching) {
		end = len(matching)
	}
	return matching[start:end], nil
}

func (f *fakeStore) IsBundleWarehoused(_ context.Context, orderID, bundleID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.warehouseErr != nil {
		return false, f.warehouseErr
	}
	return f.warehoused[orderID+"/"+bundleID], nil
}

func (f *fakeStore) FetchOrderSummary(_ context.Context, orderID string) (domain.OrderSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.orders[orderID]
	if !ok {
		return domain.OrderSummary{}, domain.ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) addBundle(orderID, bundleID string, quantity int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bundles[orderID+"/"+bundleID] = domain.Bundle{ID: bundleID, OrderID: orderID, Quantity: quantity}
}

func (f *fakeStore) addScan(rec domain.ScanRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec.ScanResult == "" {
		rec.ScanResult = domain.ScanResultSuccess
	}
	if rec.ScannedAt.IsZero() {
		rec.ScannedAt = baseTime.Add(time.Duration(len(f.scans)) * time.Minute)
	}
	f.scans = append(f.scans, rec)
}

// standardTemplate is Cutting, Sewing at 2.5, Quality and Warehouse.
func standardTemplate() []domain.ProcessConfigEntry {
	return []domain.ProcessConfigEntry{
		{ProcessName: "Cutting", SortOrder: 1, UnitPrice: decimal.RequireFromString("0.8")},
		{ProcessName: "Sewing", SortOrder: 2, UnitPrice: decimal.RequireFromString("2.5")},
		{ProcessName: "Quality", SortOrder: 3, UnitPrice: decimal.RequireFromString("0.3")},
		{ProcessName: "Warehouse", SortOrder: 4},
	}
}

// manualClock is advanced by tests.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memoryShared is an in-memory SharedTemplateStore.
type memoryShared struct {
	mu      sync.Mutex
	clock   func() time.Time
	entries map[string][]domain.ProcessConfigEntry
	expires map[string]time.Time
	getErr  error
	puts    int
}

func newMemoryShared(clock func() time.Time) *memoryShared {
	return &memoryShared{
		clock:   clock,
		entries: make(map[string][]domain.ProcessConfigEntry),
		expires: make(map[string]time.Time),
	}
}

func (m *memoryShared) Get(_ context.Context, orderID string) ([]domain.ProcessConfigEntry, time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, time.Time{}, false, m.getErr
	}
	entries, ok := m.entries[orderID]
	if !ok || !m.expires[orderID].After(m.clock()) {
		return nil, time.Time{}, false, nil
	}
	return entries, m.expires[orderID], true, nil
}

func (m *memoryShared) Put(_ context.Context, orderID string, entries []domain.ProcessConfigEntry, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	m.entries[orderID] = entries
	m.expires[orderID] = m.clock().Add(ttl)
	return nil
}
