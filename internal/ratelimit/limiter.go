// Package ratelimit implements lazy fixed-window token buckets keyed by
// (role, tool) pairs.
package ratelimit

import (
	"sync"
	"time"
)

// Result reports the outcome of an acquisition attempt.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetIn   time.Duration
}

type bucket struct {
	mu         sync.Mutex
	tokens     int
	capacity   int
	window     time.Duration
	lastRefill time.Time
}

// Limiter owns all rate buckets. Buckets are created on first use and live
// for the limiter's lifetime. The map lock is held only for bucket lookup so
// unrelated keys do not serialize on each other.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// New creates an empty limiter.
func New() *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Key builds the bucket key for a (role, tool) pair.
func Key(role, toolID string) string {
	return role + ":" + toolID
}

func (l *Limiter) getOrCreate(key string, limit int, window time.Duration) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{
			tokens:     limit,
			capacity:   limit,
			window:     window,
			lastRefill: l.now(),
		}
		l.buckets[key] = b
	}
	return b
}

// TryAcquire takes one token from the bucket for (role, toolID), creating the
// bucket at full capacity on first reference. The refill is lazy: the bucket
// resets to capacity only once a full window has elapsed since lastRefill.
// Exhaustion is an expected outcome, reported through Result.Allowed.
func (l *Limiter) TryAcquire(role, toolID string, limit int, window time.Duration) Result {
	b := l.getOrCreate(Key(role, toolID), limit, window)

	b.mu.Lock()
	defer b.mu.Unlock()

	now := l.now()
	if now.Sub(b.lastRefill) >= b.window {
		b.tokens = b.capacity
		b.lastRefill = now
	}

	res := Result{
		Limit:   b.capacity,
		ResetIn: b.window - now.Sub(b.lastRefill),
	}
	if b.tokens > 0 {
		b.tokens--
		res.Allowed = true
	}
	res.Remaining = b.tokens
	return res
}

// Status returns the current state of a bucket without consuming a token.
// The second return value is false when the bucket has never been used.
func (l *Limiter) Status(role, toolID string) (Result, bool) {
	l.mu.Lock()
	b, ok := l.buckets[Key(role, toolID)]
	l.mu.Unlock()
	if !ok {
		return Result{}, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := l.now()
	tokens := b.tokens
	resetIn := b.window - now.Sub(b.lastRefill)
	if now.Sub(b.lastRefill) >= b.window {
		tokens = b.capacity
		resetIn = b.window
	}
	return Result{
		Allowed:   tokens > 0,
		Limit:     b.capacity,
		Remaining: tokens,
		ResetIn:   resetIn,
	}, true
}
