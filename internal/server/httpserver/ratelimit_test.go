package httpserver

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestRateLimiterRegistry_PerKeyBuckets(t *testing.T) {
	r := NewRateLimiterRegistry(1, 2)

	if !r.Allow("a") || !r.Allow("a") {
		t.Fatal("burst of 2 should be admitted")
	}
	if r.Allow("a") {
		t.Error("third request in the same instant should be refused")
	}
	if !r.Allow("b") {
		t.Error("another key has its own bucket")
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

func TestRateLimiterRegistry_GetOrCreateReturnsSameLimiter(t *testing.T) {
	r := NewRateLimiterRegistry(10, 10)
	if r.GetOrCreate("k") != r.GetOrCreate("k") {
		t.Error("GetOrCreate should return the same limiter for a key")
	}
}

func TestRateLimiterRegistry_Prune(t *testing.T) {
	now := time.Unix(1000, 0)
	r := NewRateLimiterRegistry(1, 1)
	r.now = func() time.Time { return now }

	r.Allow("old")
	now = now.Add(10 * time.Minute)
	r.Allow("fresh")

	if removed := r.Prune(5 * time.Minute); removed != 1 {
		t.Errorf("Prune() = %d, want 1", removed)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
	if !r.Allow("old") {
		t.Error("a pruned key starts with a full bucket")
	}
}

func TestRateLimiterRegistry_Concurrent(t *testing.T) {
	r := NewRateLimiterRegistry(1000, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				r.Allow(fmt.Sprintf("client-%d", i%5))
			}
		}(i)
	}
	wg.Wait()

	if r.Len() != 5 {
		t.Errorf("Len() = %d, want 5", r.Len())
	}
}

func TestRateLimiterRegistry_RunPrunerStops(t *testing.T) {
	r := NewRateLimiterRegistry(1, 1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.RunPruner(ctx, time.Millisecond, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunPruner did not return after cancel")
	}
}
