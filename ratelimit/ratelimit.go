// Package ratelimit implements a fixed-window request limiter. Buckets live
// in process memory; each key carries a counter and a reset deadline, and the
// whole counter resets at the deadline rather than sliding. Construct one
// Limiter per process (or per test) and share it across handlers.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Result reports the outcome of a single admission check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

type bucket struct {
	count   int
	resetAt time.Time
}

// Limiter is a mutex-guarded fixed-window limiter. The check-and-update
// sequence runs atomically under the lock, so concurrent requests for the
// same key can never over-admit.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// New returns an empty limiter.
func New() *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Check admits or rejects one request for key under the given limit and
// window. A missing or expired bucket is replaced with a fresh one counting
// this request; a full bucket rejects without mutation, preserving its reset
// deadline for the Retry-After hint.
func (l *Limiter) Check(key string, limit int, window time.Duration) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || now.After(b.resetAt) {
		b = &bucket{count: 1, resetAt: now.Add(window)}
		l.buckets[key] = b
		return Result{Allowed: true, Remaining: limit - 1, ResetAt: b.resetAt}
	}
	if b.count >= limit {
		return Result{Allowed: false, Remaining: 0, ResetAt: b.resetAt}
	}
	b.count++
	return Result{Allowed: true, Remaining: limit - b.count, ResetAt: b.resetAt}
}

// Len reports the number of live buckets, expired or not.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// StartJanitor prunes expired buckets every interval until ctx is canceled.
// Distinct keys otherwise accumulate without bound.
func (l *Limiter) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.prune()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (l *Limiter) prune() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key, b := range l.buckets {
		if now.After(b.resetAt) {
			delete(l.buckets, key)
		}
	}
}
