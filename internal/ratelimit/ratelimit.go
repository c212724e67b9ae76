// Package ratelimit provides a per-client request limiter for the triage
// endpoint. Each client key gets its own token bucket; stale buckets are
// swept opportunistically.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// sweepFactor controls how often stale entries are dropped: once every
// sweepFactor windows.
const sweepFactor = 5

// Limiter tracks one token bucket per client key. The bucket allows `limit`
// requests per `window`, with the full limit available as burst.
type Limiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	limit     rate.Limit
	burst     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time // test seam
}

type client struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// New creates a Limiter allowing limit requests per window per client.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		clients:   make(map[string]*client),
		limit:     rate.Limit(float64(limit) / window.Seconds()),
		burst:     limit,
		window:    window,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow reports whether a request from the given client may proceed. When
// denied, retryAfter is the wait until a token frees up.
func (l *Limiter) Allow(key string) (ok bool, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	c, found := l.clients[key]
	if !found {
		c = &client{bucket: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now

	r := c.bucket.ReserveN(now, 1)
	if !r.OK() {
		return false, l.window
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// sweep drops clients idle for more than one window. Runs at most once per
// sweepFactor windows.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < time.Duration(sweepFactor)*l.window {
		return
	}
	l.lastSweep = now
	for key, c := range l.clients {
		if now.Sub(c.lastSeen) > l.window {
			delete(l.clients, key)
		}
	}
}

// RetryAfterSeconds rounds a retry delay up to whole seconds for the
// Retry-After header.
func RetryAfterSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
