package service

import (
	"strings"
	"time"

	"bundle_scan_backend/internal/scanning/domain"
)

// QualityInferencer derives the quality sub-step from filtered history.
// Quality is one process scanned twice: receive, then confirm.
type QualityInferencer struct{}

// NewQualityInferencer creates an inferencer.
func NewQualityInferencer() QualityInferencer {
	return QualityInferencer{}
}

// InferStage returns receive when no receive scan exists for processName,
// done once a receive carries a confirm time or a confirm scan follows a
// receive, and confirm otherwise. Legacy inspect scans are ignored.
func (QualityInferencer) InferStage(history []domain.ScanRecord, processName string) domain.QualityStage {
	var firstReceive *time.Time
	confirmed := false
	var confirmScans []time.Time

	for i := range history {
		rec := history[i]
		if !isQualityRecordFor(rec, processName) {
			continue
		}
		switch domain.QualitySubStep(rec.ProcessCode) {
		case domain.QualityStageReceive:
			if firstReceive == nil || rec.ScannedAt.Before(*firstReceive) {
				at := rec.ScannedAt
				firstReceive = &at
			}
			if rec.IsConfirmed() {
				confirmed = true
			}
		case domain.QualityStageConfirm:
			confirmScans = append(confirmScans, rec.ScannedAt)
		}
	}

	if firstReceive == nil {
		return domain.QualityStageReceive
	}
	if confirmed {
		return domain.QualityStageDone
	}
	for _, at := range confirmScans {
		if !at.Before(*firstReceive) {
			return domain.QualityStageDone
		}
	}
	return domain.QualityStageConfirm
}

// LatestConfirmation returns the most recent confirming quality record. An
// empty processName matches any quality process.
func (QualityInferencer) LatestConfirmation(history []domain.ScanRecord, processName string) (domain.ScanRecord, bool) {
	var latest domain.ScanRecord
	var latestAt time.Time
	found := false

	for _, rec := range history {
		if !isQualityRecordFor(rec, processName) {
			continue
		}
		var at time.Time
		switch domain.QualitySubStep(rec.ProcessCode) {
		case domain.QualityStageReceive:
			if !rec.IsConfirmed() {
				continue
			}
			at = *rec.ConfirmTime
		case domain.QualityStageConfirm:
			at = rec.ScannedAt
			if rec.IsConfirmed() {
				at = *rec.ConfirmTime
			}
		default:
			continue
		}
		if !found || !at.Before(latestAt) {
			latest, latestAt, found = rec, at, true
		}
	}
	return latest, found
}

func isQualityRecordFor(rec domain.ScanRecord, processName string) bool {
	if domain.ScanType(strings.ToLower(strings.TrimSpace(string(rec.ScanType)))) != domain.ScanTypeQuality {
		return false
	}
	name := strings.TrimSpace(processName)
	return name == "" || strings.TrimSpace(rec.ProcessName) == name
}
