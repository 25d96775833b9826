package ratelimit

import (
	"sync"
	"time"

	"mercator-hq/texsolve/pkg/config"
)

// sweepInterval is how often idle client buckets are dropped.
const sweepInterval = time.Minute

// Decision is the outcome of Limiter.Allow.
type Decision struct {
	Allowed bool

	// Reason is "rate" or "concurrency" when the request was rejected.
	Reason string

	// RetryAfter suggests how long the client should wait.
	RetryAfter time.Duration

	// release frees the concurrency slot of an allowed request.
	release func()
}

// Release frees the resources of an allowed request. It is a no-op for
// rejected ones and safe to call more than once.
func (d *Decision) Release() {
	if d.release != nil {
		d.release()
		d.release = nil
	}
}

// Limiter applies a per-client request rate and a global concurrency bound.
// Zero values in the configuration disable the corresponding limit.
type Limiter struct {
	rate       float64
	burst      int
	concurrent *ConcurrentLimiter

	mu        sync.Mutex
	buckets   map[string]*TokenBucket
	lastSweep time.Time
	now       func() time.Time
}

// New creates a limiter from cfg. It returns nil when cfg enables no limit.
func New(cfg *config.RateLimitConfig) *Limiter {
	if cfg == nil || !cfg.Enabled() {
		return nil
	}

	l := &Limiter{
		rate:    cfg.RequestsPerSecond,
		burst:   cfg.Burst,
		buckets: make(map[string]*TokenBucket),
		now:     time.Now,
	}
	if l.burst < 1 {
		l.burst = 1
	}
	if cfg.MaxConcurrent > 0 {
		l.concurrent = NewConcurrentLimiter(cfg.MaxConcurrent)
	}
	return l
}

// Allow decides whether client may start a request now. Allowed decisions
// must be released when the request finishes.
func (l *Limiter) Allow(client string) *Decision {
	now := l.now()

	if l.rate > 0 {
		bucket := l.bucket(client, now)
		if !bucket.take(now) {
			return &Decision{Reason: "rate", RetryAfter: bucket.timeUntilAvailable(now)}
		}
	}

	if l.concurrent != nil {
		if !l.concurrent.Acquire() {
			return &Decision{Reason: "concurrency", RetryAfter: time.Second}
		}
		return &Decision{Allowed: true, release: l.concurrent.Release}
	}
	return &Decision{Allowed: true}
}

// Clients returns the number of clients currently tracked.
func (l *Limiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) bucket(client string, now time.Time) *TokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	// The sweep clock starts with the first tracked client.
	if l.lastSweep.IsZero() {
		l.lastSweep = now
	}
	if now.Sub(l.lastSweep) >= sweepInterval {
		for key, b := range l.buckets {
			if b.full(now) {
				delete(l.buckets, key)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[client]
	if !ok {
		b = newTokenBucket(l.burst, l.rate, now)
		l.buckets[client] = b
	}
	return b
}
