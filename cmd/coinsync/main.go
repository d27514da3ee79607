package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/coinsync/internal/api"
	"github.com/rickgao/coinsync/internal/auth"
	"github.com/rickgao/coinsync/internal/config"
	"github.com/rickgao/coinsync/internal/database"
	"github.com/rickgao/coinsync/internal/metrics"
	"github.com/rickgao/coinsync/internal/poller"
	"github.com/rickgao/coinsync/internal/registry"
	"github.com/rickgao/coinsync/internal/rest"
	"github.com/rickgao/coinsync/internal/version"
	"github.com/rickgao/coinsync/internal/writer"
)

func main() {
	configPath := flag.String("config", "configs/coinsync.local.yaml", "path to config file")
	envPath := flag.String("env", ".env", "path to optional env file")
	flag.Parse()

	// Bootstrap logger until the configured level is known
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.LoadDotEnv(*envPath); err != nil {
		logger.Error("failed to load env file", "error", err)
		os.Exit(1)
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Logging.SlogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("starting coinsync",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"instance_id", cfg.Instance.ID,
		"api_url", cfg.API.BaseURL,
		"plan", cfg.API.Plan,
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("coinsync failed", "error", err)
		os.Exit(1)
	}
	logger.Info("coinsync stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	// Credentials
	plan, err := auth.ParsePlan(cfg.API.Plan)
	if err != nil {
		return err
	}
	creds, err := auth.LoadCredentials(plan, cfg.API.APIKey, cfg.API.APIKeyPath)
	if err != nil {
		return err
	}

	// API client sharing one backoff baseline with the poller
	backoff := rest.NewBackoff(*cfg.Poller.InitialDelay, cfg.Poller.BackoffStep)
	collector.SetBackoff(backoff.Current())
	apiClient := api.NewClient(
		cfg.API.BaseURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithBackoff(backoff),
		api.WithRateLimit(*cfg.API.RequestsPerMinute),
		api.WithObserver(collector),
		api.WithCredentials(creds),
		api.WithUserAgent(cfg.API.UserAgent),
	)

	logger.Info("checking api status")
	pingCtx, pingCancel := context.WithTimeout(ctx, cfg.API.Timeout)
	ping, err := apiClient.Ping(pingCtx)
	pingCancel()
	if err != nil {
		return fmt.Errorf("api ping: %w", err)
	}
	logger.Info("api reachable", "gecko_says", ping.GeckoSays)

	coinRegistry := registry.New(logger)

	pollOpts := []poller.Option{
		poller.WithLogger(logger),
		poller.WithObserver(collector),
		poller.WithHandler(coinRegistry),
		poller.WithHandler(collector),
	}

	// Optional persistence
	var (
		db       database.Pinger
		snapshot *writer.SnapshotWriter
	)
	if cfg.Database.Enabled() {
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)
		pool, err := database.Connect(ctx, cfg.Database, cfg.Instance.ID)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()

		if err := database.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		logger.Info("database connected")

		db = pool
		snapshot = writer.NewSnapshotWriter(writer.WriterConfig{
			BatchSize: cfg.Writers.BatchSize,
		}, pool, logger)
		collector.RegisterWriter(snapshot.Stats)
		pollOpts = append(pollOpts, poller.WithHandler(snapshot))
	} else {
		logger.Info("database not configured, snapshots kept in memory only")
	}

	p := poller.New(poller.Config{
		BatchSize:      cfg.Poller.BatchSize,
		Cooldown:       cfg.Poller.Cooldown,
		RequestTimeout: cfg.Poller.RequestTimeout,
		FailFast:       *cfg.Poller.FailFast,
	}, apiClient, backoff, pollOpts...)

	mux := newHealthHandler(db, coinRegistry, apiClient, logger)
	mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	healthServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting health server", "port", cfg.Metrics.Port)
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})

	if snapshot != nil {
		if err := snapshot.Start(gctx); err != nil {
			return err
		}
	}

	g.Go(func() error {
		return p.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if snapshot != nil {
			if err := snapshot.Stop(shutdownCtx); err != nil {
				logger.Warn("snapshot writer stop", "error", err)
			}
		}
		return healthServer.Shutdown(shutdownCtx)
	})

	logger.Info("coinsync running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Metrics.Port),
	)

	return g.Wait()
}
