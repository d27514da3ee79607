// Package model defines shared data types used across coinsync.
//
// All types mirror the database schema written by the writer package.
//
// Conventions:
//   - Prices: USD as shopspring/decimal, tri-state (unknown, zero, value)
//   - Timestamps: time.Time in UTC
//   - IDs: CoinGecko coin ids as strings, uuid.UUID for polling cycles
package model
