package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"bundle_scan_backend/internal/scanning/domain"
	"bundle_scan_backend/platform/logger"
)

// DefaultBundleQuantity is credited when neither the bundle record nor the
// client supplies a quantity.
const DefaultBundleQuantity = 10

// ProcessLoader provides an order's classified process template.
type ProcessLoader interface {
	Load(ctx context.Context, orderID string) ([]domain.ProcessDefinition, error)
	GetProcessPrice(ctx context.Context, orderID, processName string) (decimal.Decimal, error)
}

// HistorySource provides a bundle's filtered scan history.
type HistorySource interface {
	Resolve(ctx context.Context, orderID, bundleID string) ([]domain.ScanRecord, error)
}

// QualityStageSource infers the quality sub-step from history.
type QualityStageSource interface {
	InferStage(history []domain.ScanRecord, processName string) domain.QualityStage
	LatestConfirmation(history []domain.ScanRecord, processName string) (domain.ScanRecord, bool)
}

// BundleReader fetches a bundle's authoritative quantity.
type BundleReader interface {
	FetchBundle(ctx context.Context, orderID, bundleID string) (domain.Bundle, error)
}

// WarehouseChecker reports whether a bundle is already warehoused.
type WarehouseChecker interface {
	IsBundleWarehoused(ctx context.Context, orderID, bundleID string) (bool, error)
}

// OrderSummaryReader fetches an order's status and progress.
type OrderSummaryReader interface {
	FetchOrderSummary(ctx context.Context, orderID string) (domain.OrderSummary, error)
}

// EngineDeps are the collaborators of an Engine.
type EngineDeps struct {
	Loader          ProcessLoader
	History         HistorySource
	Quality         QualityStageSource
	Bundles         BundleReader
	Warehouse       WarehouseChecker
	Orders          OrderSummaryReader
	DefaultQuantity int
	Log             *logger.Logger
}

// Engine decides which process a scan should be credited as. It only reads;
// persisting the scan is the caller's job.
type Engine struct {
	loader          ProcessLoader
	history         HistorySource
	quality         QualityStageSource
	bundles         BundleReader
	warehouse       WarehouseChecker
	orders          OrderSummaryReader
	defaultQuantity int
	log             *logger.Logger
}

// NewEngine creates a stage decision engine.
func NewEngine(deps EngineDeps) *Engine {
	quality := deps.Quality
	if quality == nil {
		quality = NewQualityInferencer()
	}
	defaultQuantity := deps.DefaultQuantity
	if defaultQuantity < 1 {
		defaultQuantity = DefaultBundleQuantity
	}
	return &Engine{
		loader:          deps.Loader,
		history:         deps.History,
		quality:         quality,
		bundles:         deps.Bundles,
		warehouse:       deps.Warehouse,
		orders:          deps.Orders,
		defaultQuantity: defaultQuantity,
		log:             deps.Log,
	}
}

// bundleState is everything one DetectByBundle call has read.
type bundleState struct {
	orderID   string
	bundleID  string
	quantity  int
	countable []domain.ProcessDefinition
	warehouse *domain.ProcessDefinition
	history   []domain.ScanRecord
	completed map[string]bool
}

// DetectByBundle returns the next process for a bundle. Only a missing
// process template is fatal; bundle and warehouse lookups degrade.
func (e *Engine) DetectByBundle(ctx context.Context, orderID, bundleID string, scannedQuantity int) (domain.Decision, error) {
	log := e.log.WithContext(ctx)
	orderID = strings.TrimSpace(orderID)
	bundleID = strings.TrimSpace(bundleID)

	quantity := e.resolveQuantity(ctx, log, orderID, bundleID, scannedQuantity)

	defs, err := e.loader.Load(ctx, orderID)
	if err != nil {
		return domain.Decision{}, err
	}
	countable, warehouse := domain.PartitionProcesses(defs)

	history, err := e.history.Resolve(ctx, orderID, bundleID)
	if err != nil {
		return domain.Decision{}, err
	}

	state := &bundleState{
		orderID:   orderID,
		bundleID:  bundleID,
		quantity:  quantity,
		countable: countable,
		warehouse: warehouse,
		history:   history,
		completed: e.completedProcesses(countable, history),
	}
	e.logUnknownProcesses(log, state, defs)

	// A head that reads as quality-done here contradicts the completed set.
	// It is corrected at most once.
	for attempt := 0; attempt < 2; attempt++ {
		next, ok := firstRemaining(state)
		if !ok {
			break
		}
		if next.ScanType != domain.ScanTypeQuality {
			return e.processDecision(state, next, ""), nil
		}
		stage := e.quality.InferStage(history, next.ProcessName)
		if stage != domain.QualityStageDone {
			return e.processDecision(state, next, stage), nil
		}
		log.Warn("stale quality stage",
			"order_id", orderID,
			"bundle_id", bundleID,
			"process_name", next.ProcessName,
			"attempt", attempt+1,
		)
		if attempt > 0 {
			return e.processDecision(state, next, domain.QualityStageConfirm), nil
		}
		state.completed[next.ProcessName] = true
	}

	return e.finalDecision(ctx, log, state), nil
}

// DetectNextStage answers from the order summary alone. It returns nil when
// the order has no current process to suggest.
func (e *Engine) DetectNextStage(ctx context.Context, summary domain.OrderSummary) (*domain.Decision, error) {
	if summary.IsCompleted() {
		return &domain.Decision{
			ProcessName:   summary.CurrentProcessName,
			ProgressStage: summary.CurrentProcessName,
			Hint:          "Order completed",
			UnitPrice:     decimal.Zero,
			IsCompleted:   true,
			IsDuplicate:   true,
		}, nil
	}

	current := strings.TrimSpace(summary.CurrentProcessName)
	if current == "" {
		return nil, nil
	}

	defs, err := e.loader.Load(ctx, summary.OrderID)
	if err != nil {
		return nil, err
	}
	countable, _ := domain.PartitionProcesses(defs)

	def, ok := domain.FindProcess(defs, current)
	if !ok {
		e.log.WithContext(ctx).Warn("process not in current template",
			"order_id", summary.OrderID,
			"process_name", current,
		)
		return &domain.Decision{
			ProcessName:        current,
			ProgressStage:      current,
			ScanType:           domain.ScanTypeProduction,
			Hint:               fmt.Sprintf("Current progress: %s (no longer in the process template)", current),
			UnitPrice:          decimal.Zero,
			AllBundleProcesses: domain.ProcessNames(countable),
		}, nil
	}

	decision := domain.Decision{
		ProcessName:        def.ProcessName,
		ProgressStage:      progressLabel(def),
		ScanType:           def.ScanType,
		Hint:               processHint(def, ""),
		UnitPrice:          def.UnitPrice,
		AllBundleProcesses: domain.ProcessNames(countable),
	}
	return &decision, nil
}

// DetectNextStageForOrder loads the order summary and calls DetectNextStage.
func (e *Engine) DetectNextStageForOrder(ctx context.Context, orderID string) (*domain.Decision, error) {
	summary, err := e.orders.FetchOrderSummary(ctx, strings.TrimSpace(orderID))
	if err != nil {
		return nil, err
	}
	return e.DetectNextStage(ctx, summary)
}

// GetProcessPrice returns the configured unit price of a process.
func (e *Engine) GetProcessPrice(ctx context.Context, orderID, processName string) (decimal.Decimal, error) {
	return e.loader.GetProcessPrice(ctx, strings.TrimSpace(orderID), processName)
}

func (e *Engine) resolveQuantity(ctx context.Context, log *logger.Logger, orderID, bundleID string, scanned int) int {
	bundle, err := e.bundles.FetchBundle(ctx, orderID, bundleID)
	if err == nil && bundle.Quantity > 0 {
		return bundle.Quantity
	}
	fallback := scanned
	if fallback <= 0 {
		fallback = e.defaultQuantity
	}
	log.LookupDegraded("fetch_bundle", orderID, bundleID, err, fallback)
	return fallback
}

func (e *Engine) completedProcesses(countable []domain.ProcessDefinition, history []domain.ScanRecord) map[string]bool {
	scanned := make(map[string]bool, len(history))
	for _, rec := range history {
		scanned[strings.TrimSpace(rec.ProcessName)] = true
	}

	completed := make(map[string]bool, len(countable))
	for _, def := range countable {
		if def.ScanType == domain.ScanTypeQuality {
			if e.quality.InferStage(history, def.ProcessName) == domain.QualityStageDone {
				completed[def.ProcessName] = true
			}
			continue
		}
		if scanned[def.ProcessName] {
			completed[def.ProcessName] = true
		}
	}
	return completed
}

func (e *Engine) logUnknownProcesses(log *logger.Logger, state *bundleState, defs []domain.ProcessDefinition) {
	var unknown []string
	seen := make(map[string]bool)
	for _, rec := range state.history {
		name := strings.TrimSpace(rec.ProcessName)
		if seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := domain.FindProcess(defs, name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		log.Warn("scan history references unknown processes",
			"order_id", state.orderID,
			"bundle_id", state.bundleID,
			"process_names", unknown,
		)
	}
}

func firstRemaining(state *bundleState) (domain.ProcessDefinition, bool) {
	for _, def := range state.countable {
		if !state.completed[def.ProcessName] {
			return def, true
		}
	}
	return domain.ProcessDefinition{}, false
}

func (e *Engine) processDecision(state *bundleState, def domain.ProcessDefinition, stage domain.QualityStage) domain.Decision {
	return domain.Decision{
		ProcessName:         def.ProcessName,
		ProgressStage:       progressLabel(def),
		ScanType:            def.ScanType,
		Hint:                processHint(def, stage),
		Quantity:            state.quantity,
		UnitPrice:           def.UnitPrice,
		QualityStage:        stage,
		ScannedProcessNames: scannedNames(state),
		AllBundleProcesses:  domain.ProcessNames(state.countable),
	}
}

func (e *Engine) finalDecision(ctx context.Context, log *logger.Logger, state *bundleState) domain.Decision {
	if state.warehouse != nil && !e.isWarehoused(ctx, log, state) {
		def := *state.warehouse
		decision := e.processDecision(state, def, "")
		decision.Hint = fmt.Sprintf("All processes done, ready for warehousing: %s", def.ProcessName)

		if rec, ok := e.quality.LatestConfirmation(state.history, ""); ok {
			defect := domain.ParseDefectRemark(rec.Remark)
			if defect.HasReentryQuantity() {
				qty := defect.Quantity
				if qty > state.quantity {
					qty = state.quantity
				}
				decision.Quantity = qty
				decision.IsDefectiveReentry = true
				decision.DefectQty = qty
				decision.DefectRemark = defect.Remark
				decision.Hint = fmt.Sprintf("Defective re-entry: %d unqualified units to %s", qty, def.ProcessName)
			}
		}
		return decision
	}

	last := terminalContext(state)
	return domain.Decision{
		ProcessName:         last.ProcessName,
		ProgressStage:       progressLabel(last),
		ScanType:            last.ScanType,
		Hint:                "All processes completed",
		Quantity:            state.quantity,
		UnitPrice:           decimal.Zero,
		IsDuplicate:         true,
		IsCompleted:         true,
		ScannedProcessNames: scannedNames(state),
		AllBundleProcesses:  domain.ProcessNames(state.countable),
	}
}

func (e *Engine) isWarehoused(ctx context.Context, log *logger.Logger, state *bundleState) bool {
	warehoused, err := e.warehouse.IsBundleWarehoused(ctx, state.orderID, state.bundleID)
	if err != nil {
		log.LookupDegraded("is_bundle_warehoused", state.orderID, state.bundleID, err, false)
		return false
	}
	return warehoused
}

func terminalContext(state *bundleState) domain.ProcessDefinition {
	if n := len(state.countable); n > 0 {
		return state.countable[n-1]
	}
	if state.warehouse != nil {
		return *state.warehouse
	}
	return domain.ProcessDefinition{}
}

func scannedNames(state *bundleState) []string {
	names := make([]string, 0, len(state.completed))
	for _, def := range state.countable {
		if state.completed[def.ProcessName] {
			names = append(names, def.ProcessName)
		}
	}
	return names
}

func progressLabel(def domain.ProcessDefinition) string {
	if def.ProgressStage != "" {
		return def.ProgressStage
	}
	return def.ProcessName
}

func processHint(def domain.ProcessDefinition, stage domain.QualityStage) string {
	switch stage {
	case domain.QualityStageReceive:
		return fmt.Sprintf("Quality check: receive the bundle for %s", def.ProcessName)
	case domain.QualityStageConfirm:
		return fmt.Sprintf("Quality check: confirm the result of %s", def.ProcessName)
	}
	switch def.ScanType {
	case domain.ScanTypeWarehouse:
		return fmt.Sprintf("Ready for warehousing: %s", def.ProcessName)
	case domain.ScanTypeQuality:
		return fmt.Sprintf("Quality check: %s", def.ProcessName)
	default:
		return fmt.Sprintf("Next process: %s", def.ProcessName)
	}
}
