package api

import (
	"errors"
	"fmt"

	"github.com/rickgao/coinsync/internal/rest"
)

// Response kinds, one per declared endpoint.
const (
	KindCoins rest.Kind = "coins"
	KindRates rest.Kind = "rates"
	KindPing  rest.Kind = "ping"
	KindCoin  rest.Kind = "coin"
)

// ErrUnexpectedVariant is returned when an endpoint produces a response of
// another kind than the one it declares.
var ErrUnexpectedVariant = errors.New("unexpected response variant")

// CoinsResponse from GET /coins/list
type CoinsResponse struct {
	Coins []APICoin
}

func (CoinsResponse) Kind() rest.Kind { return KindCoins }

// RatesResponse from GET /simple/price
type RatesResponse struct {
	Rates APIRates
}

func (RatesResponse) Kind() rest.Kind { return KindRates }

// PingResponse from GET /ping
type PingResponse struct {
	GeckoSays string `json:"gecko_says"`
}

func (PingResponse) Kind() rest.Kind { return KindPing }

// CoinResponse from GET /coins/{id}
type CoinResponse struct {
	Coin APICoinDetail
}

func (CoinResponse) Kind() rest.Kind { return KindCoin }

func wrapCoins(v []APICoin) rest.Response { return CoinsResponse{Coins: v} }
func wrapRates(v APIRates) rest.Response { return RatesResponse{Rates: v} }
func wrapPing(v PingResponse) rest.Response { return v }
func wrapCoin(v APICoinDetail) rest.Response { return CoinResponse{Coin: v} }

// expect recovers the concrete variant T from r.
func expect[T rest.Response](r rest.Response) (T, error) {
	var zero T
	switch v := r.(type) {
	case T:
		return v, nil
	case nil:
		return zero, fmt.Errorf("%w: got nil, want %s", ErrUnexpectedVariant, zero.Kind())
	default:
		return zero, fmt.Errorf("%w: got %s, want %s", ErrUnexpectedVariant, v.Kind(), zero.Kind())
	}
}
