package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type statusErr int

func (s statusErr) Error() string   { return fmt.Sprintf("status %d", int(s)) }
func (s statusErr) StatusCode() int { return int(s) }

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:    attempts,
		InitialDelay:   time.Millisecond,
		MaxDelay:       2 * time.Millisecond,
		RateLimitDelay: time.Millisecond,
		Multiplier:     2,
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	var retries []int
	cfg := fastConfig(5)
	cfg.OnRetry = func(attempt int, _ error, _ time.Duration) { retries = append(retries, attempt) }

	err := Do(context.Background(), nil, cfg, func() error {
		calls++
		if calls < 3 {
			return statusErr(502)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 || len(retries) != 2 {
		t.Fatalf("calls = %d, retries = %v", calls, retries)
	}
}

func TestDoGivesUp(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Do(context.Background(), nil, fastConfig(3), func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != 3 {
		t.Fatalf("err = %v, calls = %d", err, calls)
	}
}

func TestDoStopsOnFatal(t *testing.T) {
	boom := errors.New("forbidden")
	calls := 0
	err := Do(context.Background(), nil, fastConfig(5), func() error {
		calls++
		return Fatal(boom)
	})
	if err != boom || calls != 1 {
		t.Fatalf("err = %v, calls = %d", err, calls)
	}
}

func TestDoHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig(5)
	cfg.InitialDelay = time.Hour
	cfg.OnRetry = func(int, error, time.Duration) { cancel() }

	err := Do(ctx, nil, cfg, func() error { return errors.New("again") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestLimiterAdapts(t *testing.T) {
	lim := NewAdaptiveLimiter(8, 1, 10, 1, 0.5)
	lim.RateLimited()
	if got := lim.Limit(); got != 4 {
		t.Fatalf("after pushback limit = %v, want 4", got)
	}
	lim.RateLimited()
	lim.RateLimited()
	lim.RateLimited()
	if got := lim.Limit(); got != 1 {
		t.Fatalf("limit fell below min: %v", got)
	}
	lim.Success()
	if got := lim.Limit(); got != 1 {
		t.Fatalf("limit rose during cooldown: %v", got)
	}

	lim.cooldown = 0
	lim.lastError = time.Time{}
	for range 20 {
		lim.Success()
	}
	if got := lim.Limit(); got != 10 {
		t.Fatalf("limit = %v, want max 10", got)
	}
}

func TestRateLimitedCountsAsPushback(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 10, 1, 0.5)
	calls := 0
	err := Do(context.Background(), lim, fastConfig(2), func() error {
		calls++
		if calls == 1 {
			return statusErr(429)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := lim.Limit(); got != 2 {
		t.Fatalf("limit = %v, want 2", got)
	}
}
