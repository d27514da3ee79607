// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - API request counts and latencies per endpoint and status
//   - Rate-limit bans and the shared backoff baseline
//   - Polling cycle outcomes and durations
//   - Coins per price state in the latest snapshot
//   - Snapshot writer throughput
package metrics
