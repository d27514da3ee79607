// Package database provides connection pool management for PostgreSQL and TimescaleDB.
//
// A single pool stores snapshots:
//   - coins: one row per coin id, upserted each cycle
//   - coin_rates: one row per coin per cycle (hypertable when TimescaleDB is present)
package database
