package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rickgao/coinsync/internal/auth"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if err := c.API.validate(); err != nil {
		return err
	}

	if c.Poller.BatchSize < 1 {
		return errors.New("poller.batch_size must be >= 1")
	}
	if c.Poller.InitialDelay == nil || *c.Poller.InitialDelay < 0 {
		return errors.New("poller.initial_delay must be >= 0")
	}
	if c.Poller.BackoffStep < 0 {
		return errors.New("poller.backoff_step must be >= 0")
	}
	if c.Poller.Cooldown < 0 {
		return errors.New("poller.cooldown must be >= 0")
	}
	if c.Poller.RequestTimeout < 0 {
		return errors.New("poller.request_timeout must be >= 0")
	}

	if c.Database.Enabled() {
		if err := c.Database.validate("database"); err != nil {
			return err
		}
	}

	if c.Writers.BatchSize < 1 {
		return errors.New("writers.batch_size must be >= 1")
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}

	return nil
}

func (a *APIConfig) validate() error {
	plan, err := auth.ParsePlan(a.Plan)
	if err != nil {
		return fmt.Errorf("api.plan: %w", err)
	}
	if plan != auth.PlanPublic && a.APIKey == "" && a.APIKeyPath == "" {
		return fmt.Errorf("api.api_key or api.api_key_path is required for plan %q", plan)
	}

	if a.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	u, err := url.Parse(a.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute url, got %q", a.BaseURL)
	}

	if a.Timeout <= 0 {
		return errors.New("api.timeout must be > 0")
	}
	if a.RequestsPerMinute == nil || *a.RequestsPerMinute < 0 {
		return errors.New("api.requests_per_minute must be >= 0")
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
