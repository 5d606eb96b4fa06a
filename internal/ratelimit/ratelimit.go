// Package ratelimit throttles the unauthenticated verification probe with a
// sliding window per client.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is an in-memory sliding window rate limiter. The window of
// timestamps per key prevents the burst-at-boundary problem of fixed
// windows.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	seen   map[string][]time.Time
}

// New creates a Limiter allowing limit requests per key per window.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:  limit,
		window: window,
		seen:   map[string][]time.Time{},
	}
}

// Allow reports whether the request identified by key may proceed now, and
// records it if so.
func (l *Limiter) Allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	kept := l.seen[key][:0]
	for _, ts := range l.seen[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.limit {
		l.seen[key] = kept
		return false
	}
	l.seen[key] = append(kept, now)
	return true
}

// Prune drops keys whose whole window has lapsed. Callers can run it
// periodically to bound memory under high key cardinality.
func (l *Limiter) Prune(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	for key, stamps := range l.seen {
		if len(stamps) == 0 || !stamps[len(stamps)-1].After(cutoff) {
			delete(l.seen, key)
		}
	}
}
