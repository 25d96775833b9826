package ratelimit

import (
	"sync"
	"testing"
	"time"

	"mercator-hq/texsolve/pkg/config"
)

func TestTokenBucket(t *testing.T) {
	start := time.Unix(0, 0)
	bucket := newTokenBucket(2, 10, start)

	if !bucket.take(start) || !bucket.take(start) {
		t.Fatal("take() = false on a full bucket")
	}
	if bucket.take(start) {
		t.Error("take() = true on an empty bucket")
	}
	if got, want := bucket.timeUntilAvailable(start), 100*time.Millisecond; got != want {
		t.Errorf("timeUntilAvailable() = %v, want %v", got, want)
	}

	later := start.Add(100 * time.Millisecond)
	if !bucket.take(later) {
		t.Error("take() = false after refill")
	}
	if bucket.full(later) {
		t.Error("full() = true right after take")
	}
	if !bucket.full(start.Add(time.Hour)) {
		t.Error("full() = false after an hour")
	}
}

func TestConcurrentLimiter(t *testing.T) {
	cl := NewConcurrentLimiter(2)
	if !cl.Acquire() || !cl.Acquire() {
		t.Fatal("Acquire() = false below limit")
	}
	if cl.Acquire() {
		t.Error("Acquire() = true at limit")
	}
	cl.Release()
	if !cl.Acquire() {
		t.Error("Acquire() = false after Release")
	}
	if cl.Current() != 2 {
		t.Errorf("Current() = %d, want 2", cl.Current())
	}
}

func TestConcurrentLimiterParallel(t *testing.T) {
	cl := NewConcurrentLimiter(5)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if cl.Acquire() {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if granted != 5 {
		t.Errorf("granted = %d, want 5", granted)
	}
}

func TestNewDisabled(t *testing.T) {
	if l := New(nil); l != nil {
		t.Error("New(nil) != nil")
	}
	if l := New(&config.RateLimitConfig{}); l != nil {
		t.Error("New(zero config) != nil")
	}
}

func TestLimiterRatePerClient(t *testing.T) {
	now := time.Unix(0, 0)
	l := New(&config.RateLimitConfig{RequestsPerSecond: 1, Burst: 2})
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if d := l.Allow("a"); !d.Allowed {
			t.Fatalf("Allow(a) #%d rejected", i+1)
		}
	}
	d := l.Allow("a")
	if d.Allowed {
		t.Fatal("Allow(a) #3 allowed, want rate limited")
	}
	if d.Reason != "rate" || d.RetryAfter != time.Second {
		t.Errorf("decision = %+v, want rate with 1s retry", d)
	}

	if d := l.Allow("b"); !d.Allowed {
		t.Error("Allow(b) rejected, clients must not share buckets")
	}

	now = now.Add(time.Second)
	if d := l.Allow("a"); !d.Allowed {
		t.Error("Allow(a) rejected after refill")
	}
}

func TestLimiterSweepsIdleClients(t *testing.T) {
	now := time.Unix(0, 0)
	l := New(&config.RateLimitConfig{RequestsPerSecond: 10, Burst: 1})
	l.now = func() time.Time { return now }

	l.Allow("a")
	l.Allow("b")
	if l.Clients() != 2 {
		t.Fatalf("Clients() = %d, want 2", l.Clients())
	}

	now = now.Add(2 * sweepInterval)
	l.Allow("c")
	if l.Clients() != 1 {
		t.Errorf("Clients() = %d after sweep, want 1", l.Clients())
	}
}

func TestLimiterSweepWaitsFromFirstClient(t *testing.T) {
	now := time.Unix(1_000_000, 0)
	l := New(&config.RateLimitConfig{RequestsPerSecond: 10, Burst: 1})
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(sweepInterval / 2)
	l.Allow("b")
	if l.Clients() != 2 {
		t.Fatalf("Clients() = %d before a full interval, want 2", l.Clients())
	}

	now = now.Add(sweepInterval / 2)
	l.Allow("c")
	if l.Clients() != 1 {
		t.Errorf("Clients() = %d one interval after the first client, want 1", l.Clients())
	}
}

func TestLimiterConcurrency(t *testing.T) {
	l := New(&config.RateLimitConfig{MaxConcurrent: 1})

	first := l.Allow("a")
	if !first.Allowed {
		t.Fatal("first request rejected")
	}
	second := l.Allow("b")
	if second.Allowed || second.Reason != "concurrency" {
		t.Errorf("second decision = %+v, want concurrency rejection", second)
	}
	second.Release()

	first.Release()
	first.Release()
	if d := l.Allow("b"); !d.Allowed {
		t.Error("request rejected after release")
	}
}
