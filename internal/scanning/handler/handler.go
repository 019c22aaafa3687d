package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"bundle_scan_backend/internal/scanning/domain"
	"bundle_scan_backend/internal/scanning/transport"
	"bundle_scan_backend/platform/httpkit"
	"bundle_scan_backend/platform/validator"
)

// StageDetector is the decision side of the scanning service.
type StageDetector interface {
	DetectByBundle(ctx context.Context, orderID, bundleID string, scannedQuantity int) (domain.Decision, error)
	DetectNextStageForOrder(ctx context.Context, orderID string) (*domain.Decision, error)
	GetProcessPrice(ctx context.Context, orderID, processName string) (decimal.Decimal, error)
}

// ProcessLister lists an order's configured processes.
type ProcessLister interface {
	ListProcesses(ctx context.Context, orderID string) ([]domain.ProcessDefinition, error)
}

// Handler handles HTTP requests for scanning.
type Handler struct {
	detector StageDetector
	lister   ProcessLister
	val      *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid order or bundle id"
)

// New creates a new scanning handler.
func New(detector StageDetector, lister ProcessLister, val *validator.Validator) *Handler {
	return &Handler{detector: detector, lister: lister, val: val}
}

// DetectNextStage suggests the next stage from the order summary.
// GET /api/v1/orders/:orderId/next-stage
func (h *Handler) DetectNextStage(c *gin.Context) {
	orderID, ok := h.pathID(c, "orderId")
	if !ok {
		return
	}

	decision, err := h.detector.DetectNextStageForOrder(c.Request.Context(), orderID)
	if httpkit.HandleError(c, err) {
		return
	}
	if decision == nil {
		c.Status(http.StatusNoContent)
		return
	}
	httpkit.OK(c, transport.ToDecisionResponse(*decision))
}

// DetectByBundle decides what a bundle scan should be credited as.
// GET /api/v1/orders/:orderId/bundles/:bundleId/next-stage
func (h *Handler) DetectByBundle(c *gin.Context) {
	orderID, ok := h.pathID(c, "orderId")
	if !ok {
		return
	}
	bundleID, ok := h.pathID(c, "bundleId")
	if !ok {
		return
	}
	var query transport.BundleQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	decision, err := h.detector.DetectByBundle(c.Request.Context(), orderID, bundleID, query.Quantity)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToDecisionResponse(decision))
}

// Detect is the body-based form of DetectByBundle used by scan guns.
// POST /api/v1/scans/detect
func (h *Handler) Detect(c *gin.Context) {
	var req transport.DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	req.OrderID = strings.TrimSpace(req.OrderID)
	req.BundleID = strings.TrimSpace(req.BundleID)
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	decision, err := h.detector.DetectByBundle(c.Request.Context(), req.OrderID, req.BundleID, req.Quantity)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToDecisionResponse(decision))
}

// ListProcesses returns the order's classified process template.
// GET /api/v1/orders/:orderId/processes
func (h *Handler) ListProcesses(c *gin.Context) {
	orderID, ok := h.pathID(c, "orderId")
	if !ok {
		return
	}

	defs, err := h.lister.ListProcesses(c.Request.Context(), orderID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToProcessListResponse(orderID, defs))
}

// GetProcessPrice returns the unit price of one process.
// GET /api/v1/orders/:orderId/process-price
func (h *Handler) GetProcessPrice(c *gin.Context) {
	orderID, ok := h.pathID(c, "orderId")
	if !ok {
		return
	}
	var query transport.ProcessPriceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	query.ProcessName = strings.TrimSpace(query.ProcessName)
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	price, err := h.detector.GetProcessPrice(c.Request.Context(), orderID, query.ProcessName)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ProcessPriceResponse{
		OrderID:     orderID,
		ProcessName: query.ProcessName,
		UnitPrice:   price,
	})
}

func (h *Handler) pathID(c *gin.Context, name string) (string, bool) {
	id := strings.TrimSpace(c.Param(name))
	if err := h.val.Var(id, "required,scanid,max=64"); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return "", false
	}
	return id, true
}
