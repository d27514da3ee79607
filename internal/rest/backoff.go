package rest

import (
	"context"
	"sync"
	"time"
)

// Backoff is the shared delay baseline imposed before calls. Every known ban
// raises it by one step; it only goes back down through Reset.
type Backoff struct {
	mu      sync.Mutex
	initial time.Duration
	step    time.Duration
	current time.Duration
}

// NewBackoff returns a baseline starting at initial and rising by step.
func NewBackoff(initial, step time.Duration) *Backoff {
	return &Backoff{initial: initial, step: step, current: initial}
}

// Current returns the baseline.
func (b *Backoff) Current() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Raise adds one step and returns the new baseline.
func (b *Backoff) Raise() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current += b.step
	return b.current
}

// Reset restores the initial baseline.
func (b *Backoff) Reset() {
	b.mu.Lock()
	b.current = b.initial
	b.mu.Unlock()
}

// Wait sleeps for the current baseline.
func (b *Backoff) Wait(ctx context.Context) error {
	return sleepContext(ctx, b.Current())
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
