package api

import (
	"time"

	"github.com/rickgao/coinsync/internal/model"
)

// ToCoin converts a listed coin to the domain type. The price starts
// unknown; empty platform addresses are dropped.
func ToCoin(c APICoin) model.Coin {
	return model.Coin{
		ID:        c.ID,
		Symbol:    c.Symbol,
		Name:      c.Name,
		Platforms: platforms(c.Platforms),
		Price:     model.UnknownPrice(),
	}
}

// ToPrice classifies a rate. A nil USD value is unknown, not zero.
func ToPrice(r APIRate) (model.Price, time.Time) {
	var updated time.Time
	if r.LastUpdatedAt != nil && *r.LastUpdatedAt > 0 {
		updated = time.Unix(*r.LastUpdatedAt, 0).UTC()
	}
	if r.USD == nil {
		return model.UnknownPrice(), updated
	}
	return model.NewPrice(*r.USD), updated
}

// ApplyRates sets the price of every coin present in rates. Coins missing
// from rates are left untouched.
func ApplyRates(coins []model.Coin, rates APIRates) int {
	applied := 0
	for i := range coins {
		r, ok := rates[coins[i].ID]
		if !ok {
			continue
		}
		coins[i].Price, coins[i].LastUpdatedAt = ToPrice(r)
		applied++
	}
	return applied
}

// DetailToCoin converts a coin detail, taking the USD price from market data.
func DetailToCoin(d APICoinDetail) model.Coin {
	coin := model.Coin{
		ID:        d.ID,
		Symbol:    d.Symbol,
		Name:      d.Name,
		Platforms: platforms(d.Platforms),
		Price:     model.UnknownPrice(),
	}
	if d.MarketData == nil {
		return coin
	}
	if usd, ok := d.MarketData.CurrentPrice["usd"]; ok {
		coin.Price = model.NewPrice(usd)
	}
	if t, err := time.Parse(time.RFC3339, d.MarketData.LastUpdated); err == nil {
		coin.LastUpdatedAt = t.UTC()
	}
	return coin
}

func platforms(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}
