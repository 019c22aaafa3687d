package domain

import "github.com/shopspring/decimal"

// QualityStage is the sub-state of the two-scan quality process.
type QualityStage string

const (
	QualityStageReceive QualityStage = "receive"
	QualityStageConfirm QualityStage = "confirm"
	QualityStageDone    QualityStage = "done"
)

// Decision is what a scan should be credited as.
type Decision struct {
	ProcessName         string
	ProgressStage       string
	ScanType            ScanType
	Hint                string
	Quantity            int
	UnitPrice           decimal.Decimal
	IsDuplicate         bool
	IsCompleted         bool
	QualityStage        QualityStage
	IsDefectiveReentry  bool
	DefectQty           int
	DefectRemark        string
	ScannedProcessNames []string
	AllBundleProcesses  []string
}
