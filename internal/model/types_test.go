package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestNewPrice(t *testing.T) {
	tests := []struct {
		name      string
		usd       decimal.Decimal
		wantState PriceState
	}{
		{"zero", decimal.Zero, PriceZero},
		{"zero with scale", decimal.RequireFromString("0.000000000000000000"), PriceZero},
		{"value", decimal.RequireFromString("67012.123456789012345678"), PriceValue},
		{"tiny value", decimal.RequireFromString("0.000000000000000001"), PriceValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPrice(tt.usd)
			if p.State != tt.wantState {
				t.Errorf("State = %v, want %v", p.State, tt.wantState)
			}
			if !p.Known() {
				t.Error("Known() = false, want true")
			}
			if tt.wantState == PriceValue && !p.USD.Equal(tt.usd) {
				t.Errorf("USD = %s, want %s", p.USD, tt.usd)
			}
		})
	}

	if UnknownPrice().Known() {
		t.Error("UnknownPrice().Known() = true, want false")
	}
}

func TestPriceState_String(t *testing.T) {
	tests := map[PriceState]string{
		PriceUnknown: "unknown",
		PriceZero:    "zero",
		PriceValue:   "value",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", s, got, want)
		}
	}
}

func TestSnapshot_PricedCount(t *testing.T) {
	s := Snapshot{
		CycleID:    uuid.New(),
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
		Coins: []Coin{
			{ID: "bitcoin", Price: NewPrice(decimal.NewFromInt(67000))},
			{ID: "dead-coin", Price: NewPrice(decimal.Zero)},
			{ID: "new-coin", Price: UnknownPrice()},
		},
	}

	if got := s.PricedCount(); got != 2 {
		t.Errorf("PricedCount() = %d, want 2", got)
	}
}
