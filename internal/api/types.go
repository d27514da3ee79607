package api

import (
	"github.com/shopspring/decimal"
)

// APICoin is an entry of GET /coins/list?include_platform=true.
type APICoin struct {
	ID        string            `json:"id"`
	Symbol    string            `json:"symbol"`
	Name      string            `json:"name"`
	Platforms map[string]string `json:"platforms,omitempty"`
}

// APIRate is the per-coin object of GET /simple/price. Fields are nil when
// the API omits them or sends null.
type APIRate struct {
	USD           *decimal.Decimal `json:"usd"`
	USDMarketCap  *decimal.Decimal `json:"usd_market_cap,omitempty"`
	LastUpdatedAt *int64           `json:"last_updated_at,omitempty"`
}

// APIRates maps coin id to its rate.
type APIRates map[string]APIRate

// APICoinDetail from GET /coins/{id}
type APICoinDetail struct {
	ID         string            `json:"id"`
	Symbol     string            `json:"symbol"`
	Name       string            `json:"name"`
	Platforms  map[string]string `json:"platforms,omitempty"`
	MarketData *APIMarketData    `json:"market_data,omitempty"`
}

// APIMarketData is the market_data block of a coin detail.
type APIMarketData struct {
	CurrentPrice map[string]decimal.Decimal `json:"current_price"`
	LastUpdated  string                     `json:"last_updated"`
}
