package domain

import (
	"strings"
	"time"
)

// ScanResult is the outcome recorded for a scan.
type ScanResult string

const (
	ScanResultSuccess ScanResult = "success"
	ScanResultFail    ScanResult = "fail"
)

// Process codes distinguish the physical scans that share one quality process.
const (
	ProcessCodeQualityReceive = "quality_receive"
	ProcessCodeQualityConfirm = "quality_confirm"
	// ProcessCodeQualityInspect appears in historical data only.
	ProcessCodeQualityInspect = "quality_inspect"
)

// ScanRecord is a persisted scan as produced by the recording service.
type ScanRecord struct {
	ID          string
	OrderID     string
	BundleID    string
	ProcessName string
	ProcessCode string
	ScanType    ScanType
	ScanResult  ScanResult
	Quantity    int
	Remark      string
	ConfirmTime *time.Time
	RequestID   string
	OperatorID  string
	ScannedAt   time.Time
}

// IsSuccess reports whether the scan advanced work.
func (r ScanRecord) IsSuccess() bool {
	return ScanResult(strings.ToLower(strings.TrimSpace(string(r.ScanResult)))) == ScanResultSuccess
}

// IsConfirmed reports whether a quality confirmation time is recorded.
func (r ScanRecord) IsConfirmed() bool {
	return r.ConfirmTime != nil && !r.ConfirmTime.IsZero()
}

// systemRequestPrefixes mark scans written by order creation, bundling,
// procurement and warehousing flows rather than by an operator. Request IDs
// are normalised to lower case with '-' replaced by '_' before matching.
var systemRequestPrefixes = []string{
	"order_created",
	"ordercreated",
	"bundling",
	"procurement",
	"warehousing",
	"system",
	"sys_",
	"auto_",
}

// IsSystemGenerated reports whether requestID carries a system marker.
func IsSystemGenerated(requestID string) bool {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(requestID)), "-", "_")
	if normalized == "" {
		return false
	}
	for _, prefix := range systemRequestPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			return true
		}
	}
	return false
}

// QualitySubStep classifies a quality scan by its process code. Records
// without a code are treated as the receive scan, which is what older scanning
// clients wrote.
func QualitySubStep(processCode string) QualityStage {
	switch strings.ToLower(strings.TrimSpace(processCode)) {
	case "", ProcessCodeQualityReceive, "receive":
		return QualityStageReceive
	case ProcessCodeQualityConfirm, "confirm":
		return QualityStageConfirm
	default:
		return ""
	}
}
