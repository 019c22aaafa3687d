// Package scanning provides the scanning bounded context module: stage
// decisions for bundle scans, driven by each order's process template.
package scanning

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	apphttp "bundle_scan_backend/internal/http"
	"bundle_scan_backend/internal/scanning/handler"
	"bundle_scan_backend/internal/scanning/repository"
	"bundle_scan_backend/internal/scanning/service"
	"bundle_scan_backend/platform/config"
	"bundle_scan_backend/platform/logger"
	"bundle_scan_backend/platform/validator"
)

// ModuleConfig combines the config interfaces the scanning module needs.
type ModuleConfig interface {
	config.CacheConfig
	config.ScanConfig
}

// Module is the scanning bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	engine  *service.Engine
	loader  *service.ConfigLoader
	repo    repository.Repository
}

// NewModule creates and initializes the scanning module. redisClient may be
// nil, in which case each instance keeps only its in-process cache.
func NewModule(pool *pgxpool.Pool, redisClient redis.Cmdable, val *validator.Validator, cfg ModuleConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	return newModule(repo, redisClient, val, cfg, log)
}

func newModule(repo repository.Repository, redisClient redis.Cmdable, val *validator.Validator, cfg ModuleConfig, log *logger.Logger) *Module {
	opts := service.LoaderOptions{
		TTL:     cfg.GetProcessConfigTTL(),
		MaxSize: cfg.GetProcessConfigCacheSize(),
	}
	if redisClient != nil {
		opts.Shared = repository.NewRedisTemplateStore(redisClient)
	}

	loader := service.NewConfigLoader(repo, log, opts)
	engine := service.NewEngine(service.EngineDeps{
		Loader:          loader,
		History:         service.NewHistoryResolver(repo, log, cfg.GetScanHistoryPageSize(), cfg.GetScanHistoryMaxPages()),
		Quality:         service.NewQualityInferencer(),
		Bundles:         repo,
		Warehouse:       repo,
		Orders:          repo,
		DefaultQuantity: cfg.GetDefaultBundleQuantity(),
		Log:             log,
	})

	return &Module{
		handler: handler.New(engine, loader, val),
		engine:  engine,
		loader:  loader,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "scanning"
}

// Engine returns the stage decision engine for external use.
func (m *Module) Engine() *service.Engine {
	return m.engine
}

// Loader returns the shared process template loader.
func (m *Module) Loader() *service.ConfigLoader {
	return m.loader
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts scanning routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Read-only order endpoints
	ctx.V1.GET("/orders/:orderId/next-stage", m.handler.DetectNextStage)
	ctx.V1.GET("/orders/:orderId/processes", m.handler.ListProcesses)
	ctx.V1.GET("/orders/:orderId/process-price", m.handler.GetProcessPrice)

	// Scan client endpoints
	ctx.Scans.GET("/orders/:orderId/bundles/:bundleId/next-stage", m.handler.DetectByBundle)
	ctx.Scans.POST("/scans/detect", m.handler.Detect)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
