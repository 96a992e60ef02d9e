package anthropic

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// defaultBackoff is used when a 429 response carries no Retry-After.
const defaultBackoff = 60 * time.Second

// RateLimiter paces requests to the Messages API with a token bucket and
// holds all requests back after a rate limit response.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a limiter allowing requestsPerMinute requests.
// Zero or negative disables pacing; backoff after 429s still applies.
func NewRateLimiter(requestsPerMinute float64) *RateLimiter {
	r := &RateLimiter{}
	if requestsPerMinute > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(requestsPerMinute/60), 1)
	}
	return r
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if r.limiter == nil {
		return nil
	}
	return r.limiter.Wait(ctx)
}

// RecordRateLimitError sets a backoff period after a 429 response.
func (r *RateLimiter) RecordRateLimitError(retryAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if retryAfter <= 0 {
		retryAfter = defaultBackoff
	}
	r.retryAt = time.Now().Add(retryAfter)
}

// Allow reports whether a request can be made immediately and, if so,
// takes its slot. When it returns false the caller must Wait.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return r.limiter == nil || r.limiter.Allow()
}
