package repository

import (
	"context"

	"bundle_scan_backend/internal/scanning/domain"
)

// Repository is the read side of the production database used by the
// scanning context. Scan records are written by the recording service.
type Repository interface {
	FetchOrderProcessConfig(ctx context.Context, orderID string) ([]domain.ProcessConfigEntry, error)
	FetchBundle(ctx context.Context, orderID, bundleID string) (domain.Bundle, error)
	ListScanRecords(ctx context.Context, orderID, bundleID string, page, pageSize int) ([]domain.ScanRecord, error)
	IsBundleWarehoused(ctx context.Context, orderID, bundleID string) (bool, error)
	FetchOrderSummary(ctx context.Context, orderID string) (domain.OrderSummary, error)
	ListActiveOrderIDs(ctx context.Context, limit int) ([]string, error)
}
