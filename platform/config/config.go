// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
}

// CacheConfig provides settings for the process template cache.
type CacheConfig interface {
	GetProcessConfigTTL() time.Duration
	GetProcessConfigCacheSize() int
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// ScanConfig provides settings for scan history resolution and stage decisions.
type ScanConfig interface {
	GetScanHistoryPageSize() int
	GetScanHistoryMaxPages() int
	GetDefaultBundleQuantity() int
}

// SchedulerConfig provides settings for the background worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetTemplateWarmInterval() time.Duration
	GetTemplateWarmParallelism() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                     string
	HTTPAddr                string
	DatabaseURL             string
	MigrationsDir           string
	RedisURL                string
	RedisTLSInsecure        bool
	CORSAllowAll            bool
	CORSOrigins             []string
	CORSAllowCreds          bool
	RateLimitRPS            float64
	RateLimitBurst          int
	ProcessConfigTTL        time.Duration
	ProcessConfigCacheSize  int
	ScanHistoryPageSize     int
	ScanHistoryMaxPages     int
	DefaultBundleQuantity   int
	AsynqQueueName          string
	AsynqConcurrency        int
	TemplateWarmInterval    time.Duration
	TemplateWarmParallelism int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string       { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool     { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string  { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool   { return c.CORSAllowCreds }
func (c *Config) GetRateLimitRPS() float64  { return c.RateLimitRPS }
func (c *Config) GetRateLimitBurst() int    { return c.RateLimitBurst }

// CacheConfig implementation
func (c *Config) GetProcessConfigTTL() time.Duration { return c.ProcessConfigTTL }
func (c *Config) GetProcessConfigCacheSize() int     { return c.ProcessConfigCacheSize }
func (c *Config) GetRedisURL() string                { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool          { return c.RedisTLSInsecure }

// ScanConfig implementation
func (c *Config) GetScanHistoryPageSize() int   { return c.ScanHistoryPageSize }
func (c *Config) GetScanHistoryMaxPages() int   { return c.ScanHistoryMaxPages }
func (c *Config) GetDefaultBundleQuantity() int { return c.DefaultBundleQuantity }

// SchedulerConfig implementation
func (c *Config) GetAsynqQueueName() string              { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int               { return c.AsynqConcurrency }
func (c *Config) GetTemplateWarmInterval() time.Duration { return c.TemplateWarmInterval }
func (c *Config) GetTemplateWarmParallelism() int        { return c.TemplateWarmParallelism }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                     getEnv("APP_ENV", "development"),
		HTTPAddr:                getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		MigrationsDir:           getEnv("MIGRATIONS_DIR", "migrations"),
		RedisURL:                getEnv("REDIS_URL", ""),
		RedisTLSInsecure:        strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		CORSAllowAll:            corsAllowAll,
		CORSOrigins:             corsOrigins,
		CORSAllowCreds:          strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		RateLimitRPS:            mustFloat(getEnv("RATE_LIMIT_RPS", "20")),
		RateLimitBurst:          mustInt(getEnv("RATE_LIMIT_BURST", "40")),
		ProcessConfigTTL:        mustDuration(getEnv("PROCESS_CONFIG_TTL", "5m")),
		ProcessConfigCacheSize:  mustInt(getEnv("PROCESS_CONFIG_CACHE_SIZE", "2000")),
		ScanHistoryPageSize:     mustInt(getEnv("SCAN_HISTORY_PAGE_SIZE", "200")),
		ScanHistoryMaxPages:     mustInt(getEnv("SCAN_HISTORY_MAX_PAGES", "50")),
		DefaultBundleQuantity:   mustInt(getEnv("DEFAULT_BUNDLE_QUANTITY", "10")),
		AsynqQueueName:          getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:        mustInt(getEnv("ASYNQ_CONCURRENCY", "4")),
		TemplateWarmInterval:    mustDuration(getEnv("TEMPLATE_WARM_INTERVAL", "4m")),
		TemplateWarmParallelism: mustInt(getEnv("TEMPLATE_WARM_PARALLELISM", "8")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.ProcessConfigTTL <= 0 {
		return nil, fmt.Errorf("PROCESS_CONFIG_TTL must be a positive duration")
	}
	if cfg.ScanHistoryPageSize < 1 || cfg.ScanHistoryMaxPages < 1 {
		return nil, fmt.Errorf("SCAN_HISTORY_PAGE_SIZE and SCAN_HISTORY_MAX_PAGES must be positive")
	}
	if cfg.DefaultBundleQuantity < 1 {
		return nil, fmt.Errorf("DEFAULT_BUNDLE_QUANTITY must be positive")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
