package transport

import (
	"context"
	"math"
	"math/rand"
	"net/http"
	"time"
)

const (
	defaultMaxAttempts    = 4
	defaultInitialBackoff = 100 * time.Millisecond
	defaultMaxBackoff     = 10 * time.Second
	defaultBackoffFactor  = 2.0
	defaultJitter         = 0.1
)

// RetryPolicy configures retry behavior for transient transport failures.
type RetryPolicy struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	MaxAttempts int
	// MaxElapsed bounds the total time spent on one logical call across
	// all attempts and backoff waits. Zero disables the ceiling.
	MaxElapsed time.Duration
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between retries.
	MaxBackoff time.Duration
	// BackoffFactor is the multiplier for exponential backoff.
	BackoffFactor float64
	// Jitter adds randomness to backoff (0.0 to 1.0).
	Jitter float64
}

// DefaultRetryPolicy returns the retry policy used when none is configured.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:    defaultMaxAttempts,
		InitialBackoff: defaultInitialBackoff,
		MaxBackoff:     defaultMaxBackoff,
		BackoffFactor:  defaultBackoffFactor,
		Jitter:         defaultJitter,
	}
}

// applyDefaults fills in zero-value fields.
func (p *RetryPolicy) applyDefaults() {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = defaultInitialBackoff
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = defaultMaxBackoff
	}
	if p.BackoffFactor <= 0 {
		p.BackoffFactor = defaultBackoffFactor
	}
}

// backoffFor calculates the wait before the retry following the given
// attempt (1-based).
func (p *RetryPolicy) backoffFor(attempt int) time.Duration {
	backoff := float64(p.InitialBackoff) * math.Pow(p.BackoffFactor, float64(attempt-1))

	if p.Jitter > 0 {
		jitterRange := backoff * p.Jitter
		backoff += (rand.Float64()*2 - 1) * jitterRange
	}

	if backoff > float64(p.MaxBackoff) {
		backoff = float64(p.MaxBackoff)
	}
	if backoff < 0 {
		backoff = float64(p.InitialBackoff)
	}

	return time.Duration(backoff)
}

// wait sleeps for the backoff duration, honoring context cancellation.
func (p *RetryPolicy) wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(p.backoffFor(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isIdempotent reports whether a request may be safely resent. Idempotent
// methods per RFC 7231 section 4.2.2 always qualify; POST and PATCH qualify
// only when they carry a non-empty idempotency key or are explicitly
// marked Retryable.
func isIdempotent(req Request) bool {
	if req.Retryable {
		return true
	}
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace,
		http.MethodPut, http.MethodDelete:
		return true
	case http.MethodPost, http.MethodPatch:
		return req.IdempotencyKey != ""
	default:
		return false
	}
}
