// Package registry keeps the latest polling snapshot in memory.
//
// The poller hands each completed snapshot to HandleSnapshot. The registry
// diffs it against the previous one, logs listings, delistings and price
// state transitions, and serves lookups to the debug endpoints.
package registry
