// Package ratelimit provides a per-key token-bucket limiter used to throttle
// unauthenticated endpoints by client IP and authenticated traffic by account.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter tracks one token bucket per key. Idle buckets are evicted after
// idleAfter so the map does not grow without bound.
type Limiter struct {
	mu        sync.Mutex
	buckets   map[string]*entry
	perMin    int
	burst     int
	idleAfter time.Duration
	nowF      func() time.Time
}

type entry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// New returns a Limiter allowing perMin events per key per minute. A perMin
// of zero or less disables limiting (Allow always returns true).
func New(perMin int) *Limiter {
	burst := perMin
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		buckets:   make(map[string]*entry),
		perMin:    perMin,
		burst:     burst,
		idleAfter: 10 * time.Minute,
		nowF:      time.Now,
	}
}

// Allow reports whether the event for key is within budget.
func (l *Limiter) Allow(key string) bool {
	if l.perMin <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowF()
	e, ok := l.buckets[key]
	if !ok {
		e = &entry{lim: rate.NewLimiter(rate.Limit(float64(l.perMin)/60.0), l.burst)}
		l.buckets[key] = e
	}
	e.lastSeen = now
	return e.lim.AllowN(now, 1)
}

// Sweep drops buckets idle longer than the eviction window and returns how
// many were removed. Callers run it periodically.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowF()
	removed := 0
	for key, e := range l.buckets {
		if now.Sub(e.lastSeen) > l.idleAfter {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// SweepEvery runs Sweep on the given interval until ctx is cancelled.
// Run it in its own goroutine.
func (l *Limiter) SweepEvery(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Sweep()
		}
	}
}
