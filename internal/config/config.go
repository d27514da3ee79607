package config

import (
	"log/slog"
	"strings"
	"time"
)

// Config is the root configuration for a coinsync instance.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	API      APIConfig      `yaml:"api"`
	Poller   PollerConfig   `yaml:"poller"`
	Database DBConfig       `yaml:"database"`
	Writers  WritersConfig  `yaml:"writers"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// InstanceConfig identifies this instance.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// APIConfig holds CoinGecko API settings.
type APIConfig struct {
	BaseURL           string        `yaml:"base_url"`            // Defaults to the plan's host
	Plan              string        `yaml:"plan"`                // public, demo or pro
	APIKey            string        `yaml:"api_key"`             // Sent as x-cg-demo-api-key or x-cg-pro-api-key
	APIKeyPath        string        `yaml:"api_key_path"`        // File holding the key, overrides api_key
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute *int          `yaml:"requests_per_minute"` // Defaults per plan, 0 disables the cap
	UserAgent         string        `yaml:"user_agent"`
}

// PollerConfig holds polling cycle settings.
type PollerConfig struct {
	BatchSize      int            `yaml:"batch_size"`      // Coin ids per rates request
	InitialDelay   *time.Duration `yaml:"initial_delay"`   // Baseline sleep before each rates request, 0 allowed
	BackoffStep    time.Duration  `yaml:"backoff_step"`    // Baseline increase per ban
	Cooldown       time.Duration  `yaml:"cooldown"`        // Pause between cycles
	RequestTimeout time.Duration  `yaml:"request_timeout"` // Per-call deadline including ban sleeps, 0 disables
	FailFast       *bool          `yaml:"fail_fast"`       // Stop on the first fatal cycle error
}

// DBConfig holds the TimescaleDB connection for snapshots.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// Enabled reports whether persistence is configured.
func (db DBConfig) Enabled() bool {
	return db.Host != ""
}

// WritersConfig holds batch writer settings.
type WritersConfig struct {
	BatchSize int `yaml:"batch_size"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn or error
}

// SlogLevel maps the configured level to a slog level.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
