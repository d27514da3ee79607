package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/rickgao/coinsync/internal/api"
	"github.com/rickgao/coinsync/internal/database"
	"github.com/rickgao/coinsync/internal/model"
	"github.com/rickgao/coinsync/internal/registry"
)

// coinStore is the read side of the registry.
type coinStore interface {
	Ready() bool
	Stats() registry.Stats
	GetCoins() []model.Coin
	GetCoin(id string) (model.Coin, bool)
}

// coinFetcher looks a coin up live.
type coinFetcher interface {
	GetCoin(ctx context.Context, id string) (*api.APICoinDetail, error)
}

// coinView is the JSON form of a coin.
type coinView struct {
	ID            string            `json:"id"`
	Symbol        string            `json:"symbol"`
	Name          string            `json:"name"`
	Platforms     map[string]string `json:"platforms,omitempty"`
	PriceState    string            `json:"price_state"`
	PriceUSD      *string           `json:"price_usd"`
	LastUpdatedAt *time.Time        `json:"last_updated_at,omitempty"`
}

func toView(c model.Coin) coinView {
	v := coinView{
		ID:         c.ID,
		Symbol:     c.Symbol,
		Name:       c.Name,
		Platforms:  c.Platforms,
		PriceState: c.Price.State.String(),
	}
	if c.Price.Known() {
		s := c.Price.USD.String()
		v.PriceUSD = &s
	}
	if !c.LastUpdatedAt.IsZero() {
		t := c.LastUpdatedAt
		v.LastUpdatedAt = &t
	}
	return v
}

// newHealthHandler creates the HTTP handler for health checks. db is nil when
// persistence is disabled.
func newHealthHandler(db database.Pinger, store coinStore, fetcher coinFetcher, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		// Check database
		switch {
		case db == nil:
			health.Components["timescaledb"] = "disabled"
		case db.Ping(ctx) != nil:
			health.Status = "unhealthy"
			health.Components["timescaledb"] = map[string]string{
				"status": "disconnected",
			}
		default:
			health.Components["timescaledb"] = "connected"
		}

		// Check registry
		health.Components["registry"] = store.Stats()
		if !store.Ready() && health.Status == "healthy" {
			health.Status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/debug/coins", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if id := r.URL.Query().Get("id"); id != "" {
			serveCoin(w, r, id, store, fetcher, logger)
			return
		}

		coins := store.GetCoins()

		// Limit to first 100 for debugging
		limit := 100
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
			limit = v
		}
		showing := coins
		if len(showing) > limit {
			showing = showing[:limit]
		}

		views := make([]coinView, len(showing))
		for i, c := range showing {
			views[i] = toView(c)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"count":   len(coins),
			"showing": len(views),
			"coins":   views,
		})
	})

	return mux
}

// serveCoin writes a single coin, from the registry or live when live=true.
func serveCoin(w http.ResponseWriter, r *http.Request, id string, store coinStore, fetcher coinFetcher, logger *slog.Logger) {
	if live, _ := strconv.ParseBool(r.URL.Query().Get("live")); live {
		detail, err := fetcher.GetCoin(r.Context(), id)
		if err != nil {
			logger.Warn("live coin lookup failed", "id", id, "error", err)
			w.WriteHeader(http.StatusBadGateway)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		json.NewEncoder(w).Encode(toView(api.DetailToCoin(*detail)))
		return
	}

	c, ok := store.GetCoin(id)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "coin not found"})
		return
	}
	json.NewEncoder(w).Encode(toView(c))
}
