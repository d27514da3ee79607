// Package api provides the CoinGecko REST client.
//
// Endpoints:
//   - Public/Demo: https://api.coingecko.com/api/v3
//   - Pro: https://pro-api.coingecko.com/api/v3
//
// Each endpoint is declared once as a rest.Builder template and specialized
// per call. All calls share one rest.Executor and therefore one backoff
// baseline.
package api
