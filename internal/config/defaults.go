package config

import (
	"time"

	"github.com/rickgao/coinsync/internal/auth"
)

// Default values for optional configuration fields.
const (
	DefaultPlan               = string(auth.PlanPublic)
	DefaultAPITimeout         = 30 * time.Second
	DefaultPollBatchSize      = 500
	DefaultInitialDelay       = 10 * time.Second
	DefaultBackoffStep        = 500 * time.Millisecond
	DefaultCooldown           = 60 * time.Second
	DefaultFailFast           = true
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultMaxConns           = 10
	DefaultMinConns           = 2
	DefaultWriterBatchSize    = 1000
	DefaultMetricsPort        = 9090
	DefaultMetricsPath        = "/metrics"
	DefaultLogLevel           = "info"
	DefaultPublicRequestsRate = 10
	DefaultDemoRequestsRate   = 30
	DefaultProRequestsRate    = 500
)

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.Plan == "" {
		c.API.Plan = DefaultPlan
	}
	plan, err := auth.ParsePlan(c.API.Plan)
	if err == nil {
		c.API.Plan = string(plan)
		if c.API.BaseURL == "" {
			c.API.BaseURL = plan.BaseURL()
		}
		if c.API.RequestsPerMinute == nil {
			v := defaultRequestsRate(plan)
			c.API.RequestsPerMinute = &v
		}
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}

	// Poller defaults
	if c.Poller.BatchSize == 0 {
		c.Poller.BatchSize = DefaultPollBatchSize
	}
	if c.Poller.InitialDelay == nil {
		v := DefaultInitialDelay
		c.Poller.InitialDelay = &v
	}
	if c.Poller.BackoffStep == 0 {
		c.Poller.BackoffStep = DefaultBackoffStep
	}
	if c.Poller.Cooldown == 0 {
		c.Poller.Cooldown = DefaultCooldown
	}
	if c.Poller.FailFast == nil {
		v := DefaultFailFast
		c.Poller.FailFast = &v
	}

	// Database defaults, only when persistence is enabled
	if c.Database.Enabled() {
		if c.Database.Port == 0 {
			c.Database.Port = DefaultDBPort
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = DefaultDBSSLMode
		}
		if c.Database.MaxConns == 0 {
			c.Database.MaxConns = DefaultMaxConns
		}
		if c.Database.MinConns == 0 {
			c.Database.MinConns = DefaultMinConns
		}
	}

	// Writers defaults
	if c.Writers.BatchSize == 0 {
		c.Writers.BatchSize = DefaultWriterBatchSize
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}

func defaultRequestsRate(plan auth.Plan) int {
	switch plan {
	case auth.PlanPro:
		return DefaultProRequestsRate
	case auth.PlanDemo:
		return DefaultDemoRequestsRate
	default:
		return DefaultPublicRequestsRate
	}
}
