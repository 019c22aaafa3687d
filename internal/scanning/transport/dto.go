package transport

import (
	"github.com/shopspring/decimal"

	"bundle_scan_backend/internal/scanning/domain"
	"bundle_scan_backend/platform/sanitize"
)

const maxRemarkRunes = 200

// Requests

type DetectRequest struct {
	OrderID  string `json:"orderId" validate:"required,scanid,max=64"`
	BundleID string `json:"bundleId" validate:"required,scanid,max=64"`
	Quantity int    `json:"quantity" validate:"min=0,max=100000"`
}

type BundleQuery struct {
	Quantity int `form:"quantity" validate:"min=0,max=100000"`
}

type ProcessPriceQuery struct {
	ProcessName string `form:"processName" validate:"required,max=100"`
}

// Responses

// DecisionResponse is the stable wire shape of a stage decision. Prices are
// encoded as decimal strings.
type DecisionResponse struct {
	ProcessName         string          `json:"processName"`
	ProgressStage       string          `json:"progressStage"`
	ScanType            string          `json:"scanType"`
	Hint                string          `json:"hint"`
	Quantity            int             `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unitPrice"`
	IsDuplicate         bool            `json:"isDuplicate"`
	IsCompleted         bool            `json:"isCompleted"`
	QualityStage        string          `json:"qualityStage,omitempty"`
	IsDefectiveReentry  bool            `json:"isDefectiveReentry"`
	DefectQty           int             `json:"defectQty"`
	DefectRemark        string          `json:"defectRemark,omitempty"`
	ScannedProcessNames []string        `json:"scannedProcessNames"`
	AllBundleProcesses  []string        `json:"allBundleProcesses"`
}

type ProcessResponse struct {
	ProcessName   string          `json:"processName"`
	ProgressStage string          `json:"progressStage"`
	SortOrder     int             `json:"sortOrder"`
	ScanType      string          `json:"scanType"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Countable     bool            `json:"countable"`
}

type ProcessListResponse struct {
	OrderID   string            `json:"orderId"`
	Processes []ProcessResponse `json:"processes"`
}

type ProcessPriceResponse struct {
	OrderID     string          `json:"orderId"`
	ProcessName string          `json:"processName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// ToDecisionResponse maps a domain decision to its wire shape.
func ToDecisionResponse(d domain.Decision) DecisionResponse {
	return DecisionResponse{
		ProcessName:         d.ProcessName,
		ProgressStage:       d.ProgressStage,
		ScanType:            string(d.ScanType),
		Hint:                d.Hint,
		Quantity:            d.Quantity,
		UnitPrice:           d.UnitPrice,
		IsDuplicate:         d.IsDuplicate,
		IsCompleted:         d.IsCompleted,
		QualityStage:        string(d.QualityStage),
		IsDefectiveReentry:  d.IsDefectiveReentry,
		DefectQty:           d.DefectQty,
		DefectRemark:        sanitize.Remark(d.DefectRemark, maxRemarkRunes),
		ScannedProcessNames: nonNil(d.ScannedProcessNames),
		AllBundleProcesses:  nonNil(d.AllBundleProcesses),
	}
}

// ToProcessListResponse maps an order's classified template.
func ToProcessListResponse(orderID string, defs []domain.ProcessDefinition) ProcessListResponse {
	items := make([]ProcessResponse, 0, len(defs))
	for _, def := range defs {
		items = append(items, ProcessResponse{
			ProcessName:   def.ProcessName,
			ProgressStage: def.ProgressStage,
			SortOrder:     def.SortOrder,
			ScanType:      string(def.ScanType),
			UnitPrice:     def.UnitPrice,
			Countable:     def.ScanType.IsCountable(),
		})
	}
	return ProcessListResponse{OrderID: orderID, Processes: items}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
