package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer runs a statement. *pgxpool.Pool satisfies it.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS coins (
		id          TEXT PRIMARY KEY,
		symbol      TEXT NOT NULL,
		name        TEXT NOT NULL,
		platforms   JSONB NOT NULL DEFAULT '{}'::jsonb,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS coin_rates (
		observed_at      TIMESTAMPTZ NOT NULL,
		cycle_id         UUID NOT NULL,
		coin_id          TEXT NOT NULL,
		price_state      TEXT NOT NULL,
		price_usd        NUMERIC,
		last_updated_at  TIMESTAMPTZ,
		PRIMARY KEY (coin_id, observed_at)
	)`,
	`CREATE INDEX IF NOT EXISTS coin_rates_cycle_idx ON coin_rates (cycle_id)`,
}

// hypertable converts coin_rates when the timescaledb extension is installed.
const hypertable = `DO $$
BEGIN
	IF EXISTS (SELECT 1 FROM pg_extension WHERE extname = 'timescaledb') THEN
		PERFORM create_hypertable('coin_rates', 'observed_at', if_not_exists => TRUE);
	END IF;
END
$$`

// EnsureSchema creates the snapshot tables if they do not exist.
func EnsureSchema(ctx context.Context, db Execer) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	if _, err := db.Exec(ctx, hypertable); err != nil {
		return fmt.Errorf("create hypertable: %w", err)
	}
	return nil
}
