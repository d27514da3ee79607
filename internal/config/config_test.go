package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rickgao/coinsync/internal/auth"
)

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: test-sync
api:
  plan: demo
  api_key: CG-test
  timeout: 5s
poller:
  batch_size: 250
  cooldown: 2m
  fail_fast: false
database:
  host: localhost
  port: 5432
  name: coins
  user: testuser
  password: testpass
`
	path := writeTempFile(t, "config.yaml", yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-sync" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-sync")
	}
	if cfg.API.Plan != "demo" || cfg.API.APIKey != "CG-test" {
		t.Errorf("API = %+v, want demo plan with key", cfg.API)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("API.Timeout = %v, want %v", cfg.API.Timeout, 5*time.Second)
	}
	if cfg.Poller.BatchSize != 250 || cfg.Poller.Cooldown != 2*time.Minute {
		t.Errorf("Poller = %+v", cfg.Poller)
	}
	if cfg.Poller.FailFast == nil || *cfg.Poller.FailFast {
		t.Errorf("Poller.FailFast = %v, want false", cfg.Poller.FailFast)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "localhost")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_CG_KEY", "CG-secret")

	yaml := `
instance:
  id: test-sync
api:
  plan: pro
  api_key: ${TEST_CG_KEY}
`
	path := writeTempFile(t, "config.yaml", yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.APIKey != "CG-secret" {
		t.Errorf("API.APIKey = %q, want %q", cfg.API.APIKey, "CG-secret")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("COINSYNC_TEST_DOTENV=from-file\n"), 0644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("COINSYNC_TEST_DOTENV") })

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), envPath); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if got := os.Getenv("COINSYNC_TEST_DOTENV"); got != "from-file" {
		t.Errorf("COINSYNC_TEST_DOTENV = %q, want %q", got, "from-file")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
instance:
  id: test-sync
`
	path := writeTempFile(t, "config.yaml", yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.API.Plan != DefaultPlan {
		t.Errorf("API.Plan = %q, want default %q", cfg.API.Plan, DefaultPlan)
	}
	if cfg.API.BaseURL != auth.PublicBaseURL {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, auth.PublicBaseURL)
	}
	if cfg.API.RequestsPerMinute == nil || *cfg.API.RequestsPerMinute != DefaultPublicRequestsRate {
		t.Errorf("API.RequestsPerMinute = %v, want %d", cfg.API.RequestsPerMinute, DefaultPublicRequestsRate)
	}
	if cfg.Poller.BatchSize != DefaultPollBatchSize {
		t.Errorf("Poller.BatchSize = %d, want default %d", cfg.Poller.BatchSize, DefaultPollBatchSize)
	}
	if cfg.Poller.InitialDelay == nil || *cfg.Poller.InitialDelay != DefaultInitialDelay {
		t.Errorf("Poller.InitialDelay = %v, want default %v", cfg.Poller.InitialDelay, DefaultInitialDelay)
	}
	if cfg.Poller.BackoffStep != DefaultBackoffStep {
		t.Errorf("Poller.BackoffStep = %v, want default %v", cfg.Poller.BackoffStep, DefaultBackoffStep)
	}
	if cfg.Poller.FailFast == nil || !*cfg.Poller.FailFast {
		t.Errorf("Poller.FailFast = %v, want default true", cfg.Poller.FailFast)
	}
	if cfg.Database.Enabled() {
		t.Error("database should be disabled without a host")
	}
	if cfg.Database.Port != 0 {
		t.Errorf("Database.Port = %d, want 0 when disabled", cfg.Database.Port)
	}
	if cfg.Metrics.Port != DefaultMetricsPort {
		t.Errorf("Metrics.Port = %d, want default %d", cfg.Metrics.Port, DefaultMetricsPort)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("Logging.Level = %q, want default %q", cfg.Logging.Level, DefaultLogLevel)
	}
}

func TestLoadWithDefaults_ProPlan(t *testing.T) {
	path := writeTempFile(t, "config.yaml", "instance:\n  id: x\napi:\n  plan: pro\ndatabase:\n  host: db\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}
	if cfg.API.BaseURL != auth.ProBaseURL {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, auth.ProBaseURL)
	}
	if cfg.API.RequestsPerMinute == nil || *cfg.API.RequestsPerMinute != DefaultProRequestsRate {
		t.Errorf("API.RequestsPerMinute = %v, want %d", cfg.API.RequestsPerMinute, DefaultProRequestsRate)
	}
	if cfg.Database.Port != DefaultDBPort || cfg.Database.MaxConns != DefaultMaxConns {
		t.Errorf("Database = %+v, want defaults applied", cfg.Database)
	}
}

func TestLoadWithDefaults_ExplicitZeroKept(t *testing.T) {
	yaml := `
instance:
  id: test-sync
api:
  requests_per_minute: 0
poller:
  initial_delay: 0s
`
	path := writeTempFile(t, "config.yaml", yaml)

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}
	if cfg.API.RequestsPerMinute == nil || *cfg.API.RequestsPerMinute != 0 {
		t.Errorf("API.RequestsPerMinute = %v, want explicit 0", cfg.API.RequestsPerMinute)
	}
	if cfg.Poller.InitialDelay == nil || *cfg.Poller.InitialDelay != 0 {
		t.Errorf("Poller.InitialDelay = %v, want explicit 0", cfg.Poller.InitialDelay)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Config{Instance: InstanceConfig{ID: "test"}}
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing instance id",
			mutate:  func(c *Config) { c.Instance.ID = "" },
			wantErr: "instance.id is required",
		},
		{
			name:    "unknown plan",
			mutate:  func(c *Config) { c.API.Plan = "gold" },
			wantErr: `api.plan: unknown plan "gold"`,
		},
		{
			name:    "demo without key",
			mutate:  func(c *Config) { c.API.Plan = "demo" },
			wantErr: `api.api_key or api.api_key_path is required for plan "demo"`,
		},
		{
			name:    "relative base url",
			mutate:  func(c *Config) { c.API.BaseURL = "api.coingecko.com" },
			wantErr: `api.base_url must be an absolute url, got "api.coingecko.com"`,
		},
		{
			name:    "negative batch size",
			mutate:  func(c *Config) { c.Poller.BatchSize = -1 },
			wantErr: "poller.batch_size must be >= 1",
		},
		{
			name:    "database missing password",
			mutate:  func(c *Config) { c.Database = DBConfig{Host: "localhost", Name: "db", User: "user", MaxConns: 5} },
			wantErr: "database.password is required",
		},
		{
			name: "min_conns exceeds max_conns",
			mutate: func(c *Config) {
				c.Database = DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 5, MinConns: 10}
			},
			wantErr: "database.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name:    "metrics port out of range",
			mutate:  func(c *Config) { c.Metrics.Port = 70000 },
			wantErr: "metrics.port must be between 1 and 65535, got 70000",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: `logging.level must be one of debug, info, warn, error, got "verbose"`,
		},
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name: "valid pro config with database",
			mutate: func(c *Config) {
				c.API.Plan = "pro"
				c.API.APIKeyPath = "/etc/coinsync/cg.key"
				c.Database = DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 10, MinConns: 2}
			},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := (LoggingConfig{Level: tt.level}).SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
