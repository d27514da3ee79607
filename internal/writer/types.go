package writer

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WriterConfig holds batch writer settings.
type WriterConfig struct {
	// BatchSize is the number of rows queued per pgx.Batch.
	BatchSize int

	// QueueSize is the number of snapshots buffered ahead of the database.
	QueueSize int
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize: 1000,
		QueueSize: 4,
	}
}

// WriterMetrics counts writer activity.
type WriterMetrics struct {
	Snapshots int64 // Snapshots fully written
	Inserts   int64 // Rate rows inserted
	Upserts   int64 // Coin rows inserted or updated
	Conflicts int64 // Rate rows skipped as duplicates
	Flushes   int64 // Batches sent
	Errors    int64 // Failed snapshots
	Dropped   int64 // Snapshots rejected because the queue was full
}

// BatchSender sends a pgx batch. *pgxpool.Pool satisfies it.
type BatchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// coinRow represents a row of the coins table.
type coinRow struct {
	ID        string
	Symbol    string
	Name      string
	Platforms map[string]string // Stored as JSONB
	UpdatedAt time.Time
}

// rateRow represents a row of the coin_rates table.
type rateRow struct {
	ObservedAt    time.Time
	CycleID       string
	CoinID        string
	PriceState    string
	PriceUSD      decimal.NullDecimal // NULL when unknown
	LastUpdatedAt *time.Time
}
