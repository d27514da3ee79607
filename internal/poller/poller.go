package poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/coinsync/internal/api"
	"github.com/rickgao/coinsync/internal/model"
	"github.com/rickgao/coinsync/internal/rest"
)

// CoinSource lists coins and their rates. *api.Client satisfies it.
type CoinSource interface {
	GetCoins(ctx context.Context) ([]api.APICoin, error)
	GetRates(ctx context.Context, ids []string) (api.APIRates, error)
}

// SnapshotHandler receives completed snapshots.
type SnapshotHandler interface {
	HandleSnapshot(snapshot model.Snapshot)
}

// SnapshotHandlerFunc is a function adapter for SnapshotHandler.
type SnapshotHandlerFunc func(model.Snapshot)

func (f SnapshotHandlerFunc) HandleSnapshot(s model.Snapshot) {
	f(s)
}

// CycleObserver receives cycle outcomes, typically metrics.
type CycleObserver interface {
	ObserveCycle(d time.Duration, err error)
	SetBackoff(baseline time.Duration)
}

// Config holds poller configuration.
type Config struct {
	BatchSize      int           // Ids per rates request (default: 500)
	Cooldown       time.Duration // Pause between cycles (default: 60s)
	RequestTimeout time.Duration // Per-call deadline, 0 disables
	FailFast       bool          // Return from Run on the first failed cycle
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize: 500,
		Cooldown:  60 * time.Second,
		FailFast:  true,
	}
}

// Poller runs sync cycles against a CoinSource.
type Poller struct {
	cfg      Config
	source   CoinSource
	backoff  *rest.Backoff
	handlers []SnapshotHandler
	observer CycleObserver
	logger   *slog.Logger
}

// Option configures a Poller.
type Option func(*Poller)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Poller) {
		p.logger = logger
	}
}

// WithHandler appends a snapshot handler. Handlers run in order.
func WithHandler(h SnapshotHandler) Option {
	return func(p *Poller) {
		p.handlers = append(p.handlers, h)
	}
}

// WithObserver reports cycle outcomes to o.
func WithObserver(o CycleObserver) Option {
	return func(p *Poller) {
		p.observer = o
	}
}

// New creates a new Poller. backoff must be the baseline shared with the
// executor behind source.
func New(cfg Config, source CoinSource, backoff *rest.Backoff, opts ...Option) *Poller {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	p := &Poller{
		cfg:     cfg,
		source:  source,
		backoff: backoff,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run repeats sync cycles until ctx is cancelled. With FailFast it returns
// the first cycle error; otherwise failed cycles are logged and retried
// after the cooldown.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started",
		"batch_size", p.cfg.BatchSize,
		"cooldown", p.cfg.Cooldown,
		"baseline", p.backoff.Current(),
		"fail_fast", p.cfg.FailFast,
	)

	for {
		_, err := p.SyncOnce(ctx)
		if ctx.Err() != nil {
			p.logger.Info("poller stopped")
			return nil
		}
		if err != nil {
			if p.cfg.FailFast {
				return err
			}
			p.logger.Error("sync cycle failed", "err", err)
		}

		p.logger.Info("cooling down", "duration", p.cfg.Cooldown)
		if err := sleepContext(ctx, p.cfg.Cooldown); err != nil {
			p.logger.Info("poller stopped")
			return nil
		}
	}
}

// SyncOnce runs a single cycle and hands the snapshot to every handler.
func (p *Poller) SyncOnce(ctx context.Context) (model.Snapshot, error) {
	start := time.Now()
	snap, err := p.sync(ctx, start)

	// The baseline only grows within a cycle.
	p.backoff.Reset()
	if p.observer != nil {
		p.observer.SetBackoff(p.backoff.Current())
		p.observer.ObserveCycle(time.Since(start), err)
	}
	if err != nil {
		return model.Snapshot{}, err
	}

	for _, h := range p.handlers {
		h.HandleSnapshot(snap)
	}

	p.logger.Info("sync cycle complete",
		"cycle_id", snap.CycleID,
		"coins", len(snap.Coins),
		"priced", snap.PricedCount(),
		"duration", time.Since(start),
	)
	return snap, nil
}

func (p *Poller) sync(ctx context.Context, start time.Time) (model.Snapshot, error) {
	listed, err := p.listCoins(ctx)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("list coins: %w", err)
	}
	p.logger.Info("fetched coins", "count", len(listed))

	coins := make([]model.Coin, len(listed))
	for i, c := range listed {
		coins[i] = api.ToCoin(c)
	}

	found := 0
	for lo := 0; lo < len(coins); lo += p.cfg.BatchSize {
		hi := min(lo+p.cfg.BatchSize, len(coins))
		batch := coins[lo:hi]

		p.logger.Debug("sleeping before rates request", "baseline", p.backoff.Current())
		if err := p.backoff.Wait(ctx); err != nil {
			return model.Snapshot{}, err
		}

		rates, err := p.fetchRates(ctx, batch)
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("fetch rates [%d:%d]: %w", lo, hi, err)
		}
		found += api.ApplyRates(batch, rates)

		p.logger.Info("fetched rates",
			"batch", len(rates),
			"found", found,
			"coins", len(coins),
		)
	}

	return model.Snapshot{
		CycleID:    uuid.New(),
		StartedAt:  start,
		FinishedAt: time.Now(),
		Coins:      coins,
	}, nil
}

func (p *Poller) listCoins(ctx context.Context) ([]api.APICoin, error) {
	ctx, cancel := p.requestContext(ctx)
	defer cancel()
	return p.source.GetCoins(ctx)
}

func (p *Poller) fetchRates(ctx context.Context, batch []model.Coin) (api.APIRates, error) {
	ids := make([]string, len(batch))
	for i, c := range batch {
		ids[i] = c.ID
	}

	ctx, cancel := p.requestContext(ctx)
	defer cancel()
	return p.source.GetRates(ctx, ids)
}

func (p *Poller) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.cfg.RequestTimeout)
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
