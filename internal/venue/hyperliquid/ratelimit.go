// ratelimit.go implements token-bucket rate limiting for the Hyperliquid
// exchange and info APIs, adapted from the teacher's Polymarket rate
// limiter (exchange/ratelimit.go) unchanged in shape: continuous refill
// rather than fixed windows, one bucket per endpoint category.
package hyperliquid

import (
	"context"
	"sync"
	"time"
)

// TokenBucket implements a token-bucket rate limiter with continuous refill.
type TokenBucket struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64
	lastTime time.Time
}

// NewTokenBucket creates a rate limiter with the given capacity and refill rate.
func NewTokenBucket(capacity, ratePerSecond float64) *TokenBucket {
	return &TokenBucket{
		tokens:   capacity,
		capacity: capacity,
		rate:     ratePerSecond,
		lastTime: time.Now(),
	}
}

// Wait blocks until a token is available or ctx is cancelled.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		tb.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(tb.lastTime).Seconds()
		tb.tokens += elapsed * tb.rate
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastTime = now

		if tb.tokens >= 1 {
			tb.tokens--
			tb.mu.Unlock()
			return nil
		}

		wait := time.Duration((1 - tb.tokens) / tb.rate * float64(time.Second))
		tb.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// RateLimiter groups token buckets by Hyperliquid API endpoint category.
// Capacities/rates are conservative defaults within Hyperliquid's published
// per-IP weight limits; a deployment can retune via NewRateLimiter's
// callers if needed.
type RateLimiter struct {
	Exchange *TokenBucket // POST /exchange — order actions
	Info     *TokenBucket // POST /info — metadata and order/fill queries
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		Exchange: NewTokenBucket(100, 20),
		Info:     NewTokenBucket(100, 20),
	}
}
