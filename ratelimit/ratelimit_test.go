package ratelimit

import (
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests advance the limiter's notion of time directly.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter() (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := New()
	l.now = clock.now
	return l, clock
}

func TestCheckDeniesOverLimit(t *testing.T) {
	l, _ := newTestLimiter()
	window := time.Minute

	wantRemaining := []int{2, 1, 0}
	for i, want := range wantRemaining {
		res := l.Check("ip:1.2.3.4", 3, window)
		if !res.Allowed {
			t.Fatalf("request %d denied, want allowed", i+1)
		}
		if res.Remaining != want {
			t.Errorf("request %d remaining = %d, want %d", i+1, res.Remaining, want)
		}
	}

	res := l.Check("ip:1.2.3.4", 3, window)
	if res.Allowed {
		t.Fatal("request 4 allowed, want denied")
	}
	if res.Remaining != 0 {
		t.Errorf("denied remaining = %d, want 0", res.Remaining)
	}
}

func TestCheckWindowReset(t *testing.T) {
	l, clock := newTestLimiter()
	window := time.Minute

	for i := 0; i < 3; i++ {
		l.Check("k", 3, window)
	}
	if res := l.Check("k", 3, window); res.Allowed {
		t.Fatal("expected denial at limit")
	}

	clock.advance(window + time.Second)

	res := l.Check("k", 3, window)
	if !res.Allowed {
		t.Fatal("expected fresh window after reset deadline")
	}
	if res.Remaining != 2 {
		t.Errorf("remaining after reset = %d, want 2", res.Remaining)
	}
}

func TestCheckDenialPreservesResetAt(t *testing.T) {
	l, clock := newTestLimiter()
	window := time.Minute

	first := l.Check("k", 1, window)
	clock.advance(10 * time.Second)
	denied := l.Check("k", 1, window)

	if denied.Allowed {
		t.Fatal("expected denial")
	}
	if !denied.ResetAt.Equal(first.ResetAt) {
		t.Errorf("denied ResetAt = %v, want original %v", denied.ResetAt, first.ResetAt)
	}
}

func TestCheckKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter()
	window := time.Minute

	l.Check("a", 1, window)
	if res := l.Check("a", 1, window); res.Allowed {
		t.Fatal("key a should be exhausted")
	}
	if res := l.Check("b", 1, window); !res.Allowed {
		t.Fatal("key b should have its own bucket")
	}
}

func TestCheckConcurrentNeverOverAdmits(t *testing.T) {
	l, _ := newTestLimiter()
	const limit = 10

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Check("shared", limit, time.Minute).Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != limit {
		t.Errorf("allowed %d requests, want exactly %d", allowed, limit)
	}
}

func TestPruneDropsExpiredBuckets(t *testing.T) {
	l, clock := newTestLimiter()

	l.Check("stale", 3, time.Minute)
	clock.advance(2 * time.Minute)
	l.Check("fresh", 3, time.Minute)

	if l.Len() != 2 {
		t.Fatalf("Len() = %d before prune, want 2", l.Len())
	}
	l.prune()
	if l.Len() != 1 {
		t.Errorf("Len() = %d after prune, want 1", l.Len())
	}
}
