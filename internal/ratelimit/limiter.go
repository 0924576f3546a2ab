// Package ratelimit provides an advisory per-principal request limiter.
// The limit is not a hard security control: in-memory state resets on
// process restart, which is acceptable for short-lived instances.
package ratelimit

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Limiter answers whether a key may perform one more request.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter is a sliding-window counter held in process memory.
type MemoryLimiter struct {
	max    int
	window time.Duration

	mu      sync.Mutex
	entries *gocache.Cache
}

// NewMemoryLimiter builds a limiter allowing max requests per window.
func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		max:    max,
		window: window,
		// entries expire once idle for a full window, so abandoned keys
		// are cleaned up without a manual sweep.
		entries: gocache.New(window, window),
	}
}

// Allow records the request unless the key already hit the limit inside
// the sliding window.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	var hits []time.Time
	if cached, ok := l.entries.Get(key); ok {
		hits = cached.([]time.Time)
	}

	recent := hits[:0]
	for _, t := range hits {
		if t.After(windowStart) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.max {
		l.entries.Set(key, recent, l.window)
		return false, nil
	}

	recent = append(recent, now)
	l.entries.Set(key, recent, l.window)
	return true, nil
}
