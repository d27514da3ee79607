package api

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/coinsync/internal/model"
)

func TestToCoin(t *testing.T) {
	c := ToCoin(APICoin{
		ID:        "usd-coin",
		Symbol:    "usdc",
		Name:      "USDC",
		Platforms: map[string]string{"ethereum": "0xa0b8", "solana": "", "": ""},
	})

	if c.Price.State != model.PriceUnknown {
		t.Errorf("Price.State = %v, want unknown", c.Price.State)
	}
	if len(c.Platforms) != 1 || c.Platforms["ethereum"] != "0xa0b8" {
		t.Errorf("Platforms = %v, want only ethereum", c.Platforms)
	}
}

func TestToPrice(t *testing.T) {
	ts := int64(1711356300)
	zero := decimal.Zero
	value := decimal.RequireFromString("0.000001234")

	tests := []struct {
		name        string
		rate        APIRate
		wantState   model.PriceState
		wantUpdated time.Time
	}{
		{"null usd", APIRate{}, model.PriceUnknown, time.Time{}},
		{"zero usd", APIRate{USD: &zero}, model.PriceZero, time.Time{}},
		{"value with timestamp", APIRate{USD: &value, LastUpdatedAt: &ts}, model.PriceValue, time.Unix(ts, 0).UTC()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, updated := ToPrice(tt.rate)
			if p.State != tt.wantState {
				t.Errorf("State = %v, want %v", p.State, tt.wantState)
			}
			if !updated.Equal(tt.wantUpdated) {
				t.Errorf("updated = %v, want %v", updated, tt.wantUpdated)
			}
		})
	}
}

func TestApplyRates(t *testing.T) {
	usd := decimal.RequireFromString("2.5")
	coins := []model.Coin{
		{ID: "a", Price: model.UnknownPrice()},
		{ID: "b", Price: model.UnknownPrice()},
	}

	n := ApplyRates(coins, APIRates{"a": {USD: &usd}, "zzz": {USD: &usd}})
	if n != 1 {
		t.Errorf("applied = %d, want 1", n)
	}
	if !coins[0].Price.USD.Equal(usd) {
		t.Errorf("a price = %s, want 2.5", coins[0].Price.USD)
	}
	if coins[1].Price.Known() {
		t.Error("b should stay unknown")
	}
}

func TestDetailToCoin(t *testing.T) {
	d := APICoinDetail{
		ID:     "bitcoin",
		Symbol: "btc",
		Name:   "Bitcoin",
		MarketData: &APIMarketData{
			CurrentPrice: map[string]decimal.Decimal{"usd": decimal.RequireFromString("67000.5")},
			LastUpdated:  "2024-03-25T08:45:00Z",
		},
	}

	c := DetailToCoin(d)
	if c.Price.State != model.PriceValue {
		t.Errorf("State = %v, want value", c.Price.State)
	}
	want := time.Date(2024, 3, 25, 8, 45, 0, 0, time.UTC)
	if !c.LastUpdatedAt.Equal(want) {
		t.Errorf("LastUpdatedAt = %v, want %v", c.LastUpdatedAt, want)
	}

	if got := DetailToCoin(APICoinDetail{ID: "x"}); got.Price.Known() {
		t.Error("coin without market data should be unpriced")
	}
}
