package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bundle_scan_backend/internal/scanning/domain"
	"bundle_scan_backend/platform/apperr"
	"bundle_scan_backend/platform/validator"
)

type fakeDetector struct {
	decision    domain.Decision
	summary     *domain.Decision
	err         error
	gotOrderID  string
	gotBundleID string
	gotQuantity int
	processes   []domain.ProcessDefinition
}

func (f *fakeDetector) DetectByBundle(_ context.Context, orderID, bundleID string, quantity int) (domain.Decision, error) {
	f.gotOrderID, f.gotBundleID, f.gotQuantity = orderID, bundleID, quantity
	return f.decision, f.err
}

func (f *fakeDetector) DetectNextStageForOrder(_ context.Context, orderID string) (*domain.Decision, error) {
	f.gotOrderID = orderID
	return f.summary, f.err
}

func (f *fakeDetector) GetProcessPrice(_ context.Context, _ string, processName string) (decimal.Decimal, error) {
	if f.err != nil {
		return decimal.Zero, f.err
	}
	if processName == "Sewing" {
		return decimal.RequireFromString("2.5"), nil
	}
	return decimal.Zero, nil
}

func (f *fakeDetector) ListProcesses(_ context.Context, _ string) ([]domain.ProcessDefinition, error) {
	return f.processes, f.err
}

func newTestRouter(det *fakeDetector) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(det, det, validator.New())
	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.GET("/orders/:orderId/next-stage", h.DetectNextStage)
	v1.GET("/orders/:orderId/bundles/:bundleId/next-stage", h.DetectByBundle)
	v1.GET("/orders/:orderId/processes", h.ListProcesses)
	v1.GET("/orders/:orderId/process-price", h.GetProcessPrice)
	v1.POST("/scans/detect", h.Detect)
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDetectByBundleReturnsDecision(t *testing.T) {
	det := &fakeDetector{decision: domain.Decision{
		ProcessName:        "Sewing",
		ProgressStage:      "车缝",
		ScanType:           domain.ScanTypeProduction,
		Quantity:           10,
		UnitPrice:          decimal.RequireFromString("2.5"),
		AllBundleProcesses: []string{"Sewing", "Quality"},
	}}
	r := newTestRouter(det)

	w := serve(r, http.MethodGet, "/api/v1/orders/PO-1/bundles/B-7/next-stage?quantity=12", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PO-1", det.gotOrderID)
	assert.Equal(t, "B-7", det.gotBundleID)
	assert.Equal(t, 12, det.gotQuantity)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Sewing", body["processName"])
	assert.Equal(t, "2.5", body["unitPrice"])
	assert.Equal(t, float64(10), body["quantity"])
	assert.Equal(t, false, body["isCompleted"])
	assert.Equal(t, []any{}, body["scannedProcessNames"])
}

func TestDetectByBundleRejectsBadQuantity(t *testing.T) {
	r := newTestRouter(&fakeDetector{})

	w := serve(r, http.MethodGet, "/api/v1/orders/PO-1/bundles/B-7/next-stage?quantity=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodGet, "/api/v1/orders/PO-1/bundles/B-7/next-stage?quantity=ten", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDetectMissingConfigurationIs422(t *testing.T) {
	det := &fakeDetector{err: apperr.Wrap(apperr.KindUnprocessable, "order PO-1 has no process configuration", domain.ErrConfigurationMissing)}
	r := newTestRouter(det)

	w := serve(r, http.MethodPost, "/api/v1/scans/detect", `{"orderId":"PO-1","bundleId":"B-7","quantity":10}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "no process configuration")
}

func TestDetectValidatesBody(t *testing.T) {
	r := newTestRouter(&fakeDetector{})

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed", body: `{"orderId":`},
		{name: "missing bundle", body: `{"orderId":"PO-1"}`},
		{name: "whitespace in id", body: `{"orderId":"PO 1","bundleId":"B-7"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodPost, "/api/v1/scans/detect", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestDetectNextStageNoContent(t *testing.T) {
	r := newTestRouter(&fakeDetector{})

	w := serve(r, http.MethodGet, "/api/v1/orders/PO-1/next-stage", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestDetectNextStageCompleted(t *testing.T) {
	r := newTestRouter(&fakeDetector{summary: &domain.Decision{IsCompleted: true, Hint: "Order completed"}})

	w := serve(r, http.MethodGet, "/api/v1/orders/PO-1/next-stage", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isCompleted":true`)
}

func TestDetectNextStageUnknownOrder(t *testing.T) {
	r := newTestRouter(&fakeDetector{err: apperr.NotFound("order not found")})

	w := serve(r, http.MethodGet, "/api/v1/orders/PO-404/next-stage", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListProcesses(t *testing.T) {
	det := &fakeDetector{processes: []domain.ProcessDefinition{
		{ProcessName: "Cutting", SortOrder: 1, ScanType: domain.ScanTypeCutting},
		{ProcessName: "Sewing", SortOrder: 2, ScanType: domain.ScanTypeProduction, UnitPrice: decimal.RequireFromString("2.5")},
	}}
	r := newTestRouter(det)

	w := serve(r, http.MethodGet, "/api/v1/orders/PO-1/processes", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		OrderID   string `json:"orderId"`
		Processes []struct {
			ProcessName string `json:"processName"`
			Countable   bool   `json:"countable"`
		} `json:"processes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "PO-1", body.OrderID)
	require.Len(t, body.Processes, 2)
	assert.False(t, body.Processes[0].Countable)
	assert.True(t, body.Processes[1].Countable)
}

func TestGetProcessPrice(t *testing.T) {
	r := newTestRouter(&fakeDetector{})

	w := serve(r, http.MethodGet, "/api/v1/orders/PO-1/process-price?processName=Sewing", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unitPrice":"2.5"`)

	w = serve(r, http.MethodGet, "/api/v1/orders/PO-1/process-price", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnexpectedErrorIsHidden(t *testing.T) {
	r := newTestRouter(&fakeDetector{err: context.DeadlineExceeded})

	w := serve(r, http.MethodGet, "/api/v1/orders/PO-1/bundles/B-7/next-stage", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "deadline")
}
