// Package poller implements the coin sync cycle.
//
// Each cycle:
//   - lists every coin once
//   - fetches USD rates in batches of ids, sleeping the shared backoff
//     baseline before each batch
//   - merges rates into coins and hands the snapshot to handlers
//   - resets the baseline and cools down before the next cycle
package poller
