package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceState distinguishes an unpriced coin from one priced at zero.
type PriceState int

const (
	PriceUnknown PriceState = iota // no rate fetched or rate was null
	PriceZero                      // API reported exactly 0
	PriceValue                     // API reported a non-zero price
)

func (s PriceState) String() string {
	switch s {
	case PriceZero:
		return "zero"
	case PriceValue:
		return "value"
	default:
		return "unknown"
	}
}

// Price is a USD price with its state.
type Price struct {
	State PriceState
	USD   decimal.Decimal
}

// UnknownPrice returns a price that has not been fetched.
func UnknownPrice() Price {
	return Price{State: PriceUnknown}
}

// NewPrice classifies usd as zero or value.
func NewPrice(usd decimal.Decimal) Price {
	if usd.IsZero() {
		return Price{State: PriceZero}
	}
	return Price{State: PriceValue, USD: usd}
}

// Known reports whether the API returned a price, zero included.
func (p Price) Known() bool {
	return p.State != PriceUnknown
}

// Coin is a tradable asset listed by CoinGecko.
type Coin struct {
	ID        string            // CoinGecko id (e.g., "bitcoin")
	Symbol    string            // Ticker symbol (e.g., "btc")
	Name      string            // Display name
	Platforms map[string]string // Platform -> contract address, empty addresses dropped

	Price         Price     // Latest USD price
	LastUpdatedAt time.Time // Price timestamp reported by the API, zero if absent
}

// Snapshot is the result of one polling cycle.
type Snapshot struct {
	CycleID    uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Coins      []Coin
}

// PricedCount returns how many coins carry a known price.
func (s Snapshot) PricedCount() int {
	n := 0
	for _, c := range s.Coins {
		if c.Price.Known() {
			n++
		}
	}
	return n
}
