package rest

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestBackoff(t *testing.T) {
	b := NewBackoff(10*time.Second, 500*time.Millisecond)

	if got := b.Current(); got != 10*time.Second {
		t.Errorf("Current() = %v, want 10s", got)
	}
	if got := b.Raise(); got != 10500*time.Millisecond {
		t.Errorf("Raise() = %v, want 10.5s", got)
	}
	b.Raise()
	if got := b.Current(); got != 11*time.Second {
		t.Errorf("Current() = %v, want 11s", got)
	}
	b.Reset()
	if got := b.Current(); got != 10*time.Second {
		t.Errorf("Current() after Reset = %v, want 10s", got)
	}
}

func TestBackoff_ConcurrentRaise(t *testing.T) {
	b := NewBackoff(0, time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Raise()
		}()
	}
	wg.Wait()

	if got := b.Current(); got != 100*time.Millisecond {
		t.Errorf("Current() = %v, want 100ms", got)
	}
}

func TestBackoff_Wait(t *testing.T) {
	b := NewBackoff(20*time.Millisecond, 0)

	start := time.Now()
	if err := b.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Wait returned after %v, want >= 20ms", elapsed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := NewBackoff(time.Hour, 0)
	if err := slow.Wait(ctx); err == nil {
		t.Error("Wait on cancelled context should fail")
	}
}
