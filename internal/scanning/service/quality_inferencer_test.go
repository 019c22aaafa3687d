package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bundle_scan_backend/internal/scanning/domain"
)

func qualityScan(code string, at time.Time, confirmedAt *time.Time, remark string) domain.ScanRecord {
	return domain.ScanRecord{
		OrderID:     "PO-1",
		BundleID:    "B-1",
		ProcessName: "Quality",
		ProcessCode: code,
		ScanType:    domain.ScanTypeQuality,
		ScanResult:  domain.ScanResultSuccess,
		Remark:      remark,
		ConfirmTime: confirmedAt,
		ScannedAt:   at,
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestQualityInferencerInferStage(t *testing.T) {
	t0 := baseTime
	tests := []struct {
		name    string
		history []domain.ScanRecord
		want    domain.QualityStage
	}{
		{name: "no scans", want: domain.QualityStageReceive},
		{
			name:    "receive only",
			history: []domain.ScanRecord{qualityScan(domain.ProcessCodeQualityReceive, t0, nil, "")},
			want:    domain.QualityStageConfirm,
		},
		{
			name:    "legacy receive without code",
			history: []domain.ScanRecord{qualityScan("", t0, nil, "")},
			want:    domain.QualityStageConfirm,
		},
		{
			name:    "receive with confirm time",
			history: []domain.ScanRecord{qualityScan(domain.ProcessCodeQualityReceive, t0, timePtr(t0.Add(time.Hour)), "")},
			want:    domain.QualityStageDone,
		},
		{
			name: "receive then confirm scan",
			history: []domain.ScanRecord{
				qualityScan(domain.ProcessCodeQualityReceive, t0, nil, ""),
				qualityScan(domain.ProcessCodeQualityConfirm, t0.Add(time.Minute), nil, ""),
			},
			want: domain.QualityStageDone,
		},
		{
			name:    "confirm without receive",
			history: []domain.ScanRecord{qualityScan(domain.ProcessCodeQualityConfirm, t0, nil, "")},
			want:    domain.QualityStageReceive,
		},
		{
			name: "legacy inspect ignored",
			history: []domain.ScanRecord{
				qualityScan(domain.ProcessCodeQualityReceive, t0, nil, ""),
				qualityScan(domain.ProcessCodeQualityInspect, t0.Add(time.Minute), nil, ""),
			},
			want: domain.QualityStageConfirm,
		},
		{
			name:    "inspect alone is not a receive",
			history: []domain.ScanRecord{qualityScan(domain.ProcessCodeQualityInspect, t0, nil, "")},
			want:    domain.QualityStageReceive,
		},
		{
			name: "repeat receive after done stays done",
			history: []domain.ScanRecord{
				qualityScan(domain.ProcessCodeQualityReceive, t0, nil, ""),
				qualityScan(domain.ProcessCodeQualityConfirm, t0.Add(time.Minute), nil, ""),
				qualityScan(domain.ProcessCodeQualityReceive, t0.Add(2*time.Minute), nil, ""),
			},
			want: domain.QualityStageDone,
		},
	}

	inferencer := NewQualityInferencer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inferencer.InferStage(tt.history, "Quality"))
		})
	}
}

func TestQualityInferencerMatchesProcessName(t *testing.T) {
	history := []domain.ScanRecord{qualityScan(domain.ProcessCodeQualityReceive, baseTime, nil, "")}
	inferencer := NewQualityInferencer()

	assert.Equal(t, domain.QualityStageReceive, inferencer.InferStage(history, "Final QC"))
	assert.Equal(t, domain.QualityStageConfirm, inferencer.InferStage(history, ""))
}

func TestQualityInferencerLatestConfirmation(t *testing.T) {
	t0 := baseTime
	history := []domain.ScanRecord{
		qualityScan(domain.ProcessCodeQualityReceive, t0, timePtr(t0.Add(time.Minute)), "result=qualified"),
		qualityScan(domain.ProcessCodeQualityReceive, t0.Add(2*time.Minute), nil, "receive only"),
		qualityScan(domain.ProcessCodeQualityConfirm, t0.Add(3*time.Minute), nil, "result=unqualified;defectQty=5"),
		qualityScan(domain.ProcessCodeQualityInspect, t0.Add(4*time.Minute), nil, "legacy"),
	}

	rec, ok := NewQualityInferencer().LatestConfirmation(history, "")
	assert.True(t, ok)
	assert.Equal(t, "result=unqualified;defectQty=5", rec.Remark)

	_, ok = NewQualityInferencer().LatestConfirmation(history[1:2], "")
	assert.False(t, ok)
}
