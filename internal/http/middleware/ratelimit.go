// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the per-caller throttle: one token bucket
// (golang.org/x/time/rate) per authenticated user eid, or per client IP for
// anonymous traffic. Buckets live in process memory and idle ones are swept
// every few thousand lookups.
//
// Rejections carry a Retry-After header derived from the bucket's refill
// rate and are rendered by a caller-supplied function, so throttled requests
// get the same error envelope as every other failure.
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Defaults applied by NewRateLimiter for zero-valued options.
const (
	defaultIdleTTL    = 10 * time.Minute
	defaultSweepEvery = 5000
)

// KeyFunc selects the bucket a request draws from.
type KeyFunc func(*gin.Context) string

// KeyByUserOrIP keys authenticated requests by "user:<eid>" (set by
// Authenticate) and everything else by "ip:<client ip>".
func KeyByUserOrIP() KeyFunc {
	return func(c *gin.Context) string {
		if eid := asString(c.Value(userIDKey)); eid != "" {
			return "user:" + eid
		}
		return "ip:" + c.ClientIP()
	}
}

// DenyFunc renders a throttled request. retryAfter is the wait advertised in
// the Retry-After header.
type DenyFunc func(c *gin.Context, retryAfter time.Duration)

// RateLimitOptions configures a RateLimiter.
type RateLimitOptions struct {
	RPS        float64       // refill rate; 0 rejects everything after the burst
	Burst      int           // bucket size; values < 1 become 1
	Key        KeyFunc       // defaults to KeyByUserOrIP
	IdleTTL    time.Duration // buckets unused this long are swept
	SweepEvery uint64        // lookups between sweeps
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter hands out per-key token buckets. It is safe for concurrent use.
type RateLimiter struct {
	opt RateLimitOptions

	mu      sync.Mutex
	buckets map[string]*bucket
	lookups uint64

	now func() time.Time
}

// NewRateLimiter returns a limiter with zero-valued options defaulted.
func NewRateLimiter(opt RateLimitOptions) *RateLimiter {
	if opt.Burst < 1 {
		opt.Burst = 1
	}
	if opt.Key == nil {
		opt.Key = KeyByUserOrIP()
	}
	if opt.IdleTTL <= 0 {
		opt.IdleTTL = defaultIdleTTL
	}
	if opt.SweepEvery == 0 {
		opt.SweepEvery = defaultSweepEvery
	}
	return &RateLimiter{
		opt:     opt,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// limiter returns the bucket for key, creating it on first use. The sweep
// runs before the lookup so a stale bucket for key is replaced, not revived.
func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lookups++
	if rl.lookups >= rl.opt.SweepEvery {
		for k, b := range rl.buckets {
			if now.Sub(b.seen) >= rl.opt.IdleTTL {
				delete(rl.buckets, k)
			}
		}
		rl.lookups = 0
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rate.Limit(rl.opt.RPS), rl.opt.Burst)}
		rl.buckets[key] = b
	}
	b.seen = now
	return b.lim
}

// retryAfter is the time for one token to refill, at least one second.
func (rl *RateLimiter) retryAfter() time.Duration {
	if rl.opt.RPS <= 0 {
		return time.Minute
	}
	secs := math.Ceil(1 / rl.opt.RPS)
	return time.Duration(math.Max(secs, 1)) * time.Second
}

// Handler enforces the limit. Denied requests get Retry-After, are counted
// under api_errors_total{kind="rate_limited"} and rendered by deny; a nil deny
// writes {"errors":[{"message":"rate limit exceeded"}]} with status 429.
func (rl *RateLimiter) Handler(deny DenyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limiter(rl.opt.Key(c)).Allow() {
			c.Next()
			return
		}

		wait := rl.retryAfter()
		c.Header("Retry-After", strconv.Itoa(int(wait/time.Second)))
		ObserveError("rate_limited")

		if deny != nil {
			deny(c, wait)
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"errors": []gin.H{{"message": "rate limit exceeded"}},
		})
	}
}
