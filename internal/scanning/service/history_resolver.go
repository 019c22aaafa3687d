package service

import (
	"context"
	"sort"
	"strings"

	"bundle_scan_backend/internal/scanning/domain"
	"bundle_scan_backend/platform/apperr"
	"bundle_scan_backend/platform/logger"
)

const (
	defaultHistoryPageSize = 200
	defaultHistoryMaxPages = 50
)

// ScanRecordLister pages through a bundle's scan records.
type ScanRecordLister interface {
	ListScanRecords(ctx context.Context, orderID, bundleID string, page, pageSize int) ([]domain.ScanRecord, error)
}

// HistoryResolver returns the scans that represent completed work on a
// bundle, from every operator.
type HistoryResolver struct {
	source   ScanRecordLister
	pageSize int
	maxPages int
	log      *logger.Logger
}

// NewHistoryResolver creates a resolver. Non-positive limits use defaults.
func NewHistoryResolver(source ScanRecordLister, log *logger.Logger, pageSize, maxPages int) *HistoryResolver {
	if pageSize < 1 {
		pageSize = defaultHistoryPageSize
	}
	if maxPages < 1 {
		maxPages = defaultHistoryMaxPages
	}
	return &HistoryResolver{source: source, pageSize: pageSize, maxPages: maxPages, log: log}
}

// Resolve fetches every page of the bundle's history and keeps successful,
// operator-made production and quality scans, oldest first.
func (r *HistoryResolver) Resolve(ctx context.Context, orderID, bundleID string) ([]domain.ScanRecord, error) {
	var kept []domain.ScanRecord

	for page := 1; page <= r.maxPages; page++ {
		records, err := r.source.ListScanRecords(ctx, orderID, bundleID, page, r.pageSize)
		if err != nil {
			r.log.DatabaseError("list_scan_records", err)
			return nil, apperr.Wrap(apperr.KindUnavailable, "scan history could not be loaded", err).
				WithOp("HistoryResolver.Resolve")
		}
		for _, rec := range records {
			if countsAsWork(rec) {
				kept = append(kept, rec)
			}
		}
		if len(records) < r.pageSize {
			break
		}
		if page == r.maxPages {
			r.log.WithContext(ctx).Warn("scan history truncated",
				"order_id", orderID,
				"bundle_id", bundleID,
				"max_pages", r.maxPages,
				"page_size", r.pageSize,
			)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].ScannedAt.Before(kept[j].ScannedAt)
	})
	return kept, nil
}

func countsAsWork(rec domain.ScanRecord) bool {
	if domain.IsSystemGenerated(rec.RequestID) {
		return false
	}
	switch domain.ScanType(strings.ToLower(strings.TrimSpace(string(rec.ScanType)))) {
	case domain.ScanTypeProduction, domain.ScanTypeQuality:
	default:
		return false
	}
	return rec.IsSuccess()
}
