package gateway

import (
	"fmt"
	"os"
	"time"
)

// Config holds all configuration for the dashboard gateway.
type Config struct {
	// Backend configuration
	BackendURL string

	// Server configuration
	HTTPAddr    string
	MetricsAddr string

	// Error reporting
	SentryDSN         string
	SentryEnvironment string

	// Overview cache refresh cadence
	StatusRefreshInterval time.Duration

	// Per-IP rate limiting for proxied endpoints
	RateLimitPerMinute int
	RateLimitBurst     int

	// Feature flags
	Verbose     bool
	EnablePprof bool
}

// LoadFromEnv loads configuration from environment variables and flags.
func LoadFromEnv(httpAddrFlag, metricsAddrFlag string, verbose, enablePprof bool) (*Config, error) {
	cfg := &Config{
		HTTPAddr:              httpAddrFlag,
		MetricsAddr:           metricsAddrFlag,
		StatusRefreshInterval: 30 * time.Second,
		RateLimitPerMinute:    120,
		RateLimitBurst:        20,
		Verbose:               verbose,
		EnablePprof:           enablePprof,
	}

	cfg.BackendURL = os.Getenv("SALES_AGENT_API_URL")
	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("SALES_AGENT_API_URL is required")
	}

	cfg.SentryDSN = os.Getenv("SENTRY_DSN")
	cfg.SentryEnvironment = os.Getenv("SENTRY_ENVIRONMENT")
	if cfg.SentryEnvironment == "" {
		cfg.SentryEnvironment = "development"
	}

	if v := os.Getenv("STATUS_REFRESH_INTERVAL"); v != "" {
		interval, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid STATUS_REFRESH_INTERVAL: %w", err)
		}
		if interval < time.Second {
			return nil, fmt.Errorf("STATUS_REFRESH_INTERVAL must be at least 1s, got %s", interval)
		}
		cfg.StatusRefreshInterval = interval
	}

	return cfg, nil
}
