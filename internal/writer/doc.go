// Package writer persists polling snapshots to TimescaleDB.
//
// Each snapshot produces:
//   - one upsert per coin into coins
//   - one insert per coin into coin_rates, keyed by (coin_id, observed_at)
//
// Unknown prices are stored as NULL with price_state "unknown"; a reported
// zero is stored as 0 with price_state "zero".
package writer
