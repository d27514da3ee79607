package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rickgao/coinsync/internal/rest"
)

// Ping checks that the API is reachable.
func (c *Client) Ping(ctx context.Context) (*PingResponse, error) {
	m, err := c.ping.Specialize(rest.Patch{})
	if err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}
	resp, err := c.executor.Execute(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}
	out, err := expect[PingResponse](resp)
	if err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &out, nil
}

// GetCoins fetches every listed coin with its platform addresses.
func (c *Client) GetCoins(ctx context.Context) ([]APICoin, error) {
	m, err := c.coinsList.Specialize(rest.Patch{})
	if err != nil {
		return nil, fmt.Errorf("get coins: %w", err)
	}
	resp, err := c.executor.Execute(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("get coins: %w", err)
	}
	out, err := expect[CoinsResponse](resp)
	if err != nil {
		return nil, fmt.Errorf("get coins: %w", err)
	}

	c.logger.Debug("fetched coins", "count", len(out.Coins))
	return out.Coins, nil
}

// GetRates fetches USD rates for ids in one request. Coins the API does not
// price are absent from the result.
func (c *Client) GetRates(ctx context.Context, ids []string) (APIRates, error) {
	if len(ids) == 0 {
		return APIRates{}, nil
	}

	m, err := c.simplePrice.Specialize(rest.Patch{
		Params: map[string]string{"ids": strings.Join(ids, ",")},
	})
	if err != nil {
		return nil, fmt.Errorf("get rates: %w", err)
	}
	resp, err := c.executor.Execute(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("get rates: %w", err)
	}
	out, err := expect[RatesResponse](resp)
	if err != nil {
		return nil, fmt.Errorf("get rates: %w", err)
	}
	if out.Rates == nil {
		out.Rates = APIRates{}
	}

	c.logger.Debug("fetched rates", "requested", len(ids), "returned", len(out.Rates))
	return out.Rates, nil
}

// ErrEmptyCoinID is returned by GetCoin for an empty id.
var ErrEmptyCoinID = errors.New("empty coin id")

// GetCoin fetches a single coin with current market data. The id is escaped
// as one path segment.
func (c *Client) GetCoin(ctx context.Context, id string) (*APICoinDetail, error) {
	if id == "" {
		return nil, ErrEmptyCoinID
	}
	m, err := c.coinDetail.Specialize(rest.Patch{
		Route: map[string]string{"id": url.PathEscape(id)},
	})
	if err != nil {
		return nil, fmt.Errorf("get coin %s: %w", id, err)
	}
	resp, err := c.executor.Execute(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("get coin %s: %w", id, err)
	}
	out, err := expect[CoinResponse](resp)
	if err != nil {
		return nil, fmt.Errorf("get coin %s: %w", id, err)
	}
	return &out.Coin, nil
}
