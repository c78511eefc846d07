// Package retrylimit paces outbound API calls with an adaptive rate limiter
// and retries failed calls with exponential backoff.
//
// Example usage:
//
//	lim := retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5)
//	err := retrylimit.Do(ctx, lim, retrylimit.DefaultConfig(), func() error {
//	    return send()
//	})
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AdaptiveLimiter is a rate limit that rises on success and drops when the
// remote side pushes back. Safe for concurrent use.
type AdaptiveLimiter struct {
	mu        sync.Mutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	lastError time.Time
	cooldown  time.Duration
}

// NewAdaptiveLimiter creates an AdaptiveLimiter.
//
//   - initial: starting requests per second
//   - min, max: bounds for the rate
//   - stepUp: increment on success
//   - stepDown: multiplier applied on pushback (0.5 halves the rate)
func NewAdaptiveLimiter(initial, min, max, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if min <= 0 {
		min = 1
	}
	if max < min {
		max = min
	}
	if initial < min {
		initial = min
	}
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, burstFor(initial)),
		minLimit: min,
		maxLimit: max,
		stepUp:   stepUp,
		stepDown: stepDown,
		cooldown: 10 * time.Second,
	}
}

// Wait blocks until a call may proceed or ctx is done.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success raises the rate, unless the last pushback was recent.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastError) > a.cooldown {
		a.setLimit(a.limiter.Limit() + a.stepUp)
	}
}

// RateLimited lowers the rate.
func (a *AdaptiveLimiter) RateLimited() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = time.Now()
	a.setLimit(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// Limit returns the current requests per second.
func (a *AdaptiveLimiter) Limit() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) setLimit(l rate.Limit) {
	l = min(max(l, a.minLimit), a.maxLimit)
	if l != a.limiter.Limit() {
		a.limiter.SetLimit(l)
		a.limiter.SetBurst(burstFor(l))
	}
}

func burstFor(l rate.Limit) int {
	return max(1, int(l))
}

// HTTPError is implemented by errors that carry an HTTP status code.
type HTTPError interface {
	error
	StatusCode() int
}

// FatalError stops retries immediately.
type FatalError struct {
	Err error
}

func (f *FatalError) Error() string { return f.Err.Error() }
func (f *FatalError) Unwrap() error { return f.Err }

// Fatal marks err as not worth retrying.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// Config configures Do.
type Config struct {
	MaxAttempts    int           // at least 1
	InitialDelay   time.Duration // first backoff
	MaxDelay       time.Duration
	RateLimitDelay time.Duration // fixed wait after a 429
	Multiplier     float64
	Jitter         bool
	// OnRetry is called before every wait with the failed attempt number.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultConfig suits chat API calls: a handful of attempts, short waits.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    4,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		RateLimitDelay: time.Second,
		Multiplier:     2,
		Jitter:         true,
	}
}

// Do calls fn until it succeeds, returns a FatalError, ctx is done or the
// attempts run out. The last error is returned wrapped.
func Do(ctx context.Context, lim *AdaptiveLimiter, cfg Config, fn func() error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	delay := cfg.InitialDelay

	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if lim != nil {
			if werr := lim.Wait(ctx); werr != nil {
				return werr
			}
		}

		if err = fn(); err == nil {
			if lim != nil {
				lim.Success()
			}
			return nil
		}

		var fatal *FatalError
		if errors.As(err, &fatal) {
			return fatal.Err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		wait := delay
		switch {
		case IsRateLimited(err):
			if lim != nil {
				lim.RateLimited()
			}
			wait = cfg.RateLimitDelay
		case IsServerError(err):
			if lim != nil {
				lim.RateLimited()
			}
			fallthrough
		default:
			if cfg.Jitter {
				wait = addJitter(delay)
			}
			delay = min(time.Duration(float64(delay)*cfg.Multiplier), cfg.MaxDelay)
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", cfg.MaxAttempts, err)
}

// addJitter adds up to 25% to delay.
func addJitter(delay time.Duration) time.Duration {
	if delay < 4 {
		return delay
	}
	return delay + rand.N(delay/4)
}

// IsRateLimited reports a 429 response.
func IsRateLimited(err error) bool {
	var h HTTPError
	return errors.As(err, &h) && h.StatusCode() == http.StatusTooManyRequests
}

// IsServerError reports a 5xx response.
func IsServerError(err error) bool {
	var h HTTPError
	return errors.As(err, &h) && h.StatusCode() >= 500 && h.StatusCode() < 600
}
