package writer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/rickgao/coinsync/internal/model"
)

const upsertCoinSQL = `
	INSERT INTO coins (id, symbol, name, platforms, updated_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE SET
		symbol = EXCLUDED.symbol,
		name = EXCLUDED.name,
		platforms = EXCLUDED.platforms,
		updated_at = EXCLUDED.updated_at
`

const insertRateSQL = `
	INSERT INTO coin_rates (observed_at, cycle_id, coin_id, price_state, price_usd, last_updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (coin_id, observed_at) DO NOTHING
`

// SnapshotWriter persists polling snapshots to the coins and coin_rates tables.
// Snapshots are queued by HandleSnapshot and written by a single goroutine.
type SnapshotWriter struct {
	cfg    WriterConfig
	logger *slog.Logger

	// Input from the poller
	input chan model.Snapshot

	// Database
	db BatchSender

	// Lifecycle. Writes run on writeCtx, which is not cancelled with ctx.
	// Stop calls abort once the in-flight write is done or its own ctx expires.
	ctx      context.Context
	writeCtx context.Context
	abort    context.CancelFunc
	quit     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// Metrics
	metricsMu sync.Mutex
	metrics   WriterMetrics
}

// NewSnapshotWriter creates a new SnapshotWriter.
func NewSnapshotWriter(cfg WriterConfig, db BatchSender, logger *slog.Logger) *SnapshotWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = DefaultWriterConfig().BatchSize
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = DefaultWriterConfig().QueueSize
	}
	return &SnapshotWriter{
		cfg:    cfg,
		db:     db,
		logger: logger,
		input:  make(chan model.Snapshot, cfg.QueueSize),
	}
}

// Start begins consuming snapshots and writing to the database.
func (w *SnapshotWriter) Start(ctx context.Context) error {
	w.ctx = ctx
	w.writeCtx, w.abort = context.WithCancel(context.WithoutCancel(ctx))
	w.quit = make(chan struct{})

	w.wg.Add(1)
	go w.consumeLoop()

	w.logger.Info("snapshot writer started",
		"batch_size", w.cfg.BatchSize,
		"queue_size", w.cfg.QueueSize,
	)
	return nil
}

// Stop gracefully shuts down the writer. A write already in progress is
// finished, then queued snapshots are written while ctx allows.
func (w *SnapshotWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping snapshot writer")

	w.stopOnce.Do(func() {
		if w.quit != nil {
			close(w.quit)
		}
	})
	if w.abort != nil {
		defer w.abort()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("snapshot writer stop timed out")
		return ctx.Err()
	}

	// Final drain
	for {
		select {
		case snap := <-w.input:
			w.handle(ctx, snap)
		default:
			w.logger.Info("snapshot writer stopped")
			return nil
		}
	}
}

// HandleSnapshot queues snap for writing. It never blocks; when the queue is
// full the snapshot is dropped and counted.
func (w *SnapshotWriter) HandleSnapshot(snap model.Snapshot) {
	select {
	case w.input <- snap:
	default:
		w.metricsMu.Lock()
		w.metrics.Dropped++
		w.metricsMu.Unlock()
		w.logger.Warn("snapshot queue full, dropping snapshot", "cycle_id", snap.CycleID)
	}
}

// Stats returns current metrics.
func (w *SnapshotWriter) Stats() WriterMetrics {
	w.metricsMu.Lock()
	defer w.metricsMu.Unlock()
	return w.metrics
}

// consumeLoop writes queued snapshots until the writer is stopped or its
// parent context ends. Anything left in the queue is written by Stop.
func (w *SnapshotWriter) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.quit:
			return
		case <-w.ctx.Done():
			return
		case snap := <-w.input:
			w.handle(w.writeCtx, snap)
		}
	}
}

func (w *SnapshotWriter) handle(ctx context.Context, snap model.Snapshot) {
	start := time.Now()
	if err := w.Write(ctx, snap); err != nil {
		w.logger.Error("write snapshot failed", "error", err, "cycle_id", snap.CycleID, "coins", len(snap.Coins))
		w.metricsMu.Lock()
		w.metrics.Errors++
		w.metricsMu.Unlock()
		return
	}
	w.logger.Debug("wrote snapshot",
		"cycle_id", snap.CycleID,
		"coins", len(snap.Coins),
		"duration", time.Since(start),
	)
}

// Write persists snap synchronously: coins are upserted, then rates inserted,
// each in chunks of BatchSize.
func (w *SnapshotWriter) Write(ctx context.Context, snap model.Snapshot) error {
	coins, rates := transform(snap)

	for _, chunk := range chunks(coins, w.cfg.BatchSize) {
		if _, err := w.sendCoins(ctx, chunk); err != nil {
			return fmt.Errorf("upsert coins: %w", err)
		}
		w.metricsMu.Lock()
		w.metrics.Upserts += int64(len(chunk))
		w.metrics.Flushes++
		w.metricsMu.Unlock()
	}

	for _, chunk := range chunks(rates, w.cfg.BatchSize) {
		conflicts, err := w.sendRates(ctx, chunk)
		if err != nil {
			return fmt.Errorf("insert rates: %w", err)
		}
		w.metricsMu.Lock()
		w.metrics.Inserts += int64(len(chunk) - conflicts)
		w.metrics.Conflicts += int64(conflicts)
		w.metrics.Flushes++
		w.metricsMu.Unlock()
	}

	w.metricsMu.Lock()
	w.metrics.Snapshots++
	w.metricsMu.Unlock()
	return nil
}

func (w *SnapshotWriter) sendCoins(ctx context.Context, rows []coinRow) (int, error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(upsertCoinSQL, r.ID, r.Symbol, r.Name, r.Platforms, r.UpdatedAt)
	}
	return w.send(ctx, batch)
}

func (w *SnapshotWriter) sendRates(ctx context.Context, rows []rateRow) (int, error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(insertRateSQL, r.ObservedAt, r.CycleID, r.CoinID, r.PriceState, r.PriceUSD, r.LastUpdatedAt)
	}
	return w.send(ctx, batch)
}

// send executes every queued statement and returns how many affected no rows.
func (w *SnapshotWriter) send(ctx context.Context, batch *pgx.Batch) (conflicts int, err error) {
	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range batch.Len() {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}

// transform converts a snapshot into table rows.
func transform(snap model.Snapshot) ([]coinRow, []rateRow) {
	observedAt := snap.FinishedAt
	if observedAt.IsZero() {
		observedAt = time.Now()
	}
	observedAt = observedAt.UTC()
	cycleID := snap.CycleID.String()

	coins := make([]coinRow, 0, len(snap.Coins))
	rates := make([]rateRow, 0, len(snap.Coins))
	for _, c := range snap.Coins {
		platforms := c.Platforms
		if platforms == nil {
			platforms = map[string]string{}
		}
		coins = append(coins, coinRow{
			ID:        c.ID,
			Symbol:    c.Symbol,
			Name:      c.Name,
			Platforms: platforms,
			UpdatedAt: observedAt,
		})

		row := rateRow{
			ObservedAt: observedAt,
			CycleID:    cycleID,
			CoinID:     c.ID,
			PriceState: c.Price.State.String(),
		}
		switch c.Price.State {
		case model.PriceValue:
			row.PriceUSD = decimal.NewNullDecimal(c.Price.USD)
		case model.PriceZero:
			row.PriceUSD = decimal.NewNullDecimal(decimal.Zero)
		}
		if !c.LastUpdatedAt.IsZero() {
			t := c.LastUpdatedAt.UTC()
			row.LastUpdatedAt = &t
		}
		rates = append(rates, row)
	}
	return coins, rates
}

// chunks splits rows into consecutive slices of at most size elements.
func chunks[T any](rows []T, size int) [][]T {
	var out [][]T
	for len(rows) > 0 {
		n := min(size, len(rows))
		out = append(out, rows[:n])
		rows = rows[n:]
	}
	return out
}
