// Package ratelimit throttles conversion requests.
//
// A Limiter keeps one token bucket per client, allowing bursts up to the
// configured size while holding each client to an average request rate,
// and optionally bounds the number of conversions running at once across
// all clients:
//
//	limiter := ratelimit.New(&cfg.Server.RateLimit)
//	d := limiter.Allow(clientIP)
//	if !d.Allowed {
//	    // reject, retry after d.RetryAfter
//	}
//	defer d.Release()
//
// Buckets of clients that have been idle long enough to refill completely
// are dropped periodically, so memory tracks active clients only.
package ratelimit
