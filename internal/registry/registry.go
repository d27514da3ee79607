package registry

import (
	"log/slog"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/coinsync/internal/model"
)

// Registry is a thread-safe cache of the latest known coins.
type Registry struct {
	logger *slog.Logger

	mu sync.RWMutex

	// All coins of the last snapshot indexed by id.
	coins map[string]*model.Coin

	lastCycleID uuid.UUID
	lastSyncAt  time.Time
	cycles      int64
}

// Stats summarizes the registry contents.
type Stats struct {
	Coins       int       `json:"coins"`
	Priced      int       `json:"priced"`
	Zero        int       `json:"zero"`
	Unknown     int       `json:"unknown"`
	Cycles      int64     `json:"cycles"`
	LastCycleID uuid.UUID `json:"last_cycle_id"`
	LastSyncAt  time.Time `json:"last_sync_at"`
}

// Change is the difference between two consecutive snapshots.
type Change struct {
	Listed       []string // Ids new in this snapshot
	Delisted     []string // Ids missing from this snapshot
	StateChanged []string // Ids whose price state changed
}

// Empty reports whether nothing changed.
func (c Change) Empty() bool {
	return len(c.Listed) == 0 && len(c.Delisted) == 0 && len(c.StateChanged) == 0
}

// New creates an empty registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger: logger,
		coins:  make(map[string]*model.Coin),
	}
}

// HandleSnapshot replaces the registry contents with snap.
func (r *Registry) HandleSnapshot(snap model.Snapshot) {
	change, cycles := r.apply(snap)

	if cycles == 1 {
		r.logger.Info("registry loaded", "coins", len(snap.Coins), "priced", snap.PricedCount())
		return
	}
	if !change.Empty() {
		r.logger.Info("registry found changes",
			"cycle_id", snap.CycleID,
			"listed", len(change.Listed),
			"delisted", len(change.Delisted),
			"price_state_changed", len(change.StateChanged),
		)
		return
	}
	r.logger.Debug("registry unchanged", "cycle_id", snap.CycleID, "coins", len(snap.Coins))
}

// apply swaps in snap and returns what changed along with the cycle count.
func (r *Registry) apply(snap model.Snapshot) (Change, int64) {
	next := make(map[string]*model.Coin, len(snap.Coins))
	for i := range snap.Coins {
		c := cloneCoin(snap.Coins[i])
		next[c.ID] = &c
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var change Change
	for id, c := range next {
		prev, ok := r.coins[id]
		if !ok {
			change.Listed = append(change.Listed, id)
			continue
		}
		if prev.Price.State != c.Price.State {
			change.StateChanged = append(change.StateChanged, id)
		}
	}
	for id := range r.coins {
		if _, ok := next[id]; !ok {
			change.Delisted = append(change.Delisted, id)
		}
	}
	sort.Strings(change.Listed)
	sort.Strings(change.Delisted)
	sort.Strings(change.StateChanged)

	r.coins = next
	r.lastCycleID = snap.CycleID
	r.lastSyncAt = snap.FinishedAt
	r.cycles++

	return change, r.cycles
}

// GetCoin returns a coin by id.
func (r *Registry) GetCoin(id string) (model.Coin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.coins[id]
	if !ok {
		return model.Coin{}, false
	}
	return cloneCoin(*c), true
}

// GetCoins returns a copy of all coins sorted by id.
func (r *Registry) GetCoins() []model.Coin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]model.Coin, 0, len(r.coins))
	for _, c := range r.coins {
		result = append(result, cloneCoin(*c))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Ready reports whether at least one snapshot has been received.
func (r *Registry) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cycles > 0
}

// Stats returns a summary of the current contents.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Stats{
		Coins:       len(r.coins),
		Cycles:      r.cycles,
		LastCycleID: r.lastCycleID,
		LastSyncAt:  r.lastSyncAt,
	}
	for _, c := range r.coins {
		switch c.Price.State {
		case model.PriceValue:
			s.Priced++
		case model.PriceZero:
			s.Zero++
		default:
			s.Unknown++
		}
	}
	return s
}

// cloneCoin copies c so callers never share its platforms map with the registry.
func cloneCoin(c model.Coin) model.Coin {
	c.Platforms = maps.Clone(c.Platforms)
	return c
}
