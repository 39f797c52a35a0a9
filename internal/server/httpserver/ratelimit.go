package httpserver

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// RateLimiterRegistry holds one token bucket per client key.
type RateLimiterRegistry struct {
	mu       sync.RWMutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

// NewRateLimiterRegistry creates a registry granting rps requests per
// second with the given burst to every key.
func NewRateLimiterRegistry(rps float64, burst int) *RateLimiterRegistry {
	return &RateLimiterRegistry{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// GetOrCreate retrieves the limiter for key, creating it on first use.
func (r *RateLimiterRegistry) GetOrCreate(key string) *rate.Limiter {
	now := r.now()

	r.mu.RLock()
	e, ok := r.limiters[key]
	r.mu.RUnlock()
	if ok {
		e.lastSeen.Store(now.UnixNano())
		return e.limiter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if e, ok := r.limiters[key]; ok {
		e.lastSeen.Store(now.UnixNano())
		return e.limiter
	}

	e = &limiterEntry{limiter: rate.NewLimiter(r.limit, r.burst)}
	e.lastSeen.Store(now.UnixNano())
	r.limiters[key] = e
	return e.limiter
}

// Allow reports whether key may make a request now.
func (r *RateLimiterRegistry) Allow(key string) bool {
	return r.GetOrCreate(key).Allow()
}

// Prune drops limiters unused for longer than idle and returns how many
// were removed. A dropped key starts again with a full bucket.
func (r *RateLimiterRegistry) Prune(idle time.Duration) int {
	cutoff := r.now().Add(-idle).UnixNano()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, e := range r.limiters {
		if e.lastSeen.Load() < cutoff {
			delete(r.limiters, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (r *RateLimiterRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.limiters)
}

// RunPruner prunes every interval until ctx is done.
func (r *RateLimiterRegistry) RunPruner(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Prune(idle)
		case <-ctx.Done():
			return
		}
	}
}
