package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"bundle_scan_backend/internal/scanning/domain"
	"bundle_scan_backend/platform/apperr"
)

const (
	bundleNotFoundMessage = "bundle not found"
	orderNotFoundMessage  = "order not found"
)

// Repo implements Repository on PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new scanning repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// FetchOrderProcessConfig returns the order's process template rows. An order
// without rows yields an empty slice; callers decide what that means.
func (r *Repo) FetchOrderProcessConfig(ctx context.Context, orderID string) ([]domain.ProcessConfigEntry, error) {
	query := `
		SELECT process_name, unit_price::text, sort_order, COALESCE(progress_stage, '')
		FROM order_process_templates
		WHERE order_id = $1
		ORDER BY sort_order, id`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("fetch order process config: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.ProcessConfigEntry, 0)
	for rows.Next() {
		var entry domain.ProcessConfigEntry
		var price string
		if err := rows.Scan(&entry.ProcessName, &price, &entry.SortOrder, &entry.ProgressStage); err != nil {
			return nil, fmt.Errorf("scan order process config: %w", err)
		}
		entry.UnitPrice, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("parse unit price %q for %s: %w", price, entry.ProcessName, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order process config: %w", err)
	}
	return entries, nil
}

// FetchBundle retrieves a bundle by order and bundle ID.
func (r *Repo) FetchBundle(ctx context.Context, orderID, bundleID string) (domain.Bundle, error) {
	query := `
		SELECT id, order_id, quantity, COALESCE(location, '')
		FROM cutting_bundles
		WHERE id = $1 AND order_id = $2`

	var bundle domain.Bundle
	if err := r.pool.QueryRow(ctx, query, bundleID, orderID).Scan(
		&bundle.ID, &bundle.OrderID, &bundle.Quantity, &bundle.Location,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Bundle{}, apperr.Wrap(apperr.KindNotFound, bundleNotFoundMessage, domain.ErrNotFound)
		}
		return domain.Bundle{}, fmt.Errorf("fetch bundle: %w", err)
	}
	return bundle, nil
}

// ListScanRecords returns one page of scans for a bundle from every operator,
// oldest first. page is 1-based.
func (r *Repo) ListScanRecords(ctx context.Context, orderID, bundleID string, page, pageSize int) ([]domain.ScanRecord, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 200
	}

	query := `
		SELECT id::text, order_id, bundle_id, process_name, COALESCE(process_code, ''),
			scan_type, scan_result, quantity, COALESCE(remark, ''), confirm_time,
			COALESCE(request_id, ''), COALESCE(operator_id, ''), scanned_at
		FROM scan_records
		WHERE order_id = $1 AND bundle_id = $2
		ORDER BY scanned_at, id
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, orderID, bundleID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("list scan records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.ScanRecord, 0, pageSize)
	for rows.Next() {
		var rec domain.ScanRecord
		var scanType, scanResult string
		var confirmTime *time.Time
		if err := rows.Scan(
			&rec.ID, &rec.OrderID, &rec.BundleID, &rec.ProcessName, &rec.ProcessCode,
			&scanType, &scanResult, &rec.Quantity, &rec.Remark, &confirmTime,
			&rec.RequestID, &rec.OperatorID, &rec.ScannedAt,
		); err != nil {
			return nil, fmt.Errorf("scan scan record: %w", err)
		}
		rec.ScanType = domain.ScanType(scanType)
		rec.ScanResult = domain.ScanResult(scanResult)
		rec.ConfirmTime = confirmTime
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan records: %w", err)
	}
	return records, nil
}

// IsBundleWarehoused reports whether an active warehousing record exists.
func (r *Repo) IsBundleWarehoused(ctx context.Context, orderID, bundleID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM product_warehousing
			WHERE order_id = $1 AND bundle_id = $2 AND deleted_at IS NULL
		)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, orderID, bundleID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check bundle warehoused: %w", err)
	}
	return exists, nil
}

// FetchOrderSummary retrieves the order-level status used for the short-circuit.
func (r *Repo) FetchOrderSummary(ctx context.Context, orderID string) (domain.OrderSummary, error) {
	query := `
		SELECT id, status, progress_percent::float8, COALESCE(current_process_name, '')
		FROM production_orders
		WHERE id = $1`

	var summary domain.OrderSummary
	if err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&summary.OrderID, &summary.Status, &summary.ProgressPercent, &summary.CurrentProcessName,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.OrderSummary{}, apperr.Wrap(apperr.KindNotFound, orderNotFoundMessage, domain.ErrNotFound)
		}
		return domain.OrderSummary{}, fmt.Errorf("fetch order summary: %w", err)
	}
	return summary, nil
}

// ListActiveOrderIDs returns the most recently touched orders still in production.
func (r *Repo) ListActiveOrderIDs(ctx context.Context, limit int) ([]string, error) {
	if limit < 1 {
		limit = 500
	}

	query := `
		SELECT id
		FROM production_orders
		WHERE status NOT IN ('completed', 'cancelled') AND progress_percent < 100
		ORDER BY updated_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list active orders: %w", err)
	}
	defer rows.Close()

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect active orders: %w", err)
	}
	return ids, nil
}
