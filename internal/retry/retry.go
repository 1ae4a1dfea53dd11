// Package retry re-runs a whole scrape attempt when the reasoning backend rate limits us.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-careers-agent/internal/ai"

	"github.com/charmbracelet/log"
)

var ErrRateLimitExceeded = errors.New("rate limit exceeded after all retries")

// Policy waits BaseDelay * 2^attempt between rate limited attempts.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *log.Logger
	// Sleep is replaced in tests, it must honour ctx
	Sleep func(ctx context.Context, d time.Duration) error
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   3 * time.Second,
	}
}

// Delay is the wait after the given zero-based attempt.
func (p Policy) Delay(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(1<<attempt)
}

// Do runs fn until it succeeds, fails with a non rate-limit error, or MaxAttempts rate limited
// attempts have been made. Only rate-limit faults are retried.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	logger := p.Logger
	if logger == nil {
		logger = log.Default()
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn(ctx, attempt)
		if err == nil {
			return result, nil
		}
		if !ai.IsRateLimit(err) {
			return zero, err
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}
		wait := p.Delay(attempt)
		logger.Warn("⏳ rate limit hit, backing off", "wait", wait, "retry", attempt+1, "max_attempts", attempts)
		if err := sleep(ctx, wait); err != nil {
			return zero, err
		}
	}
	return zero, fmt.Errorf("%w (%d attempts): %w", ErrRateLimitExceeded, attempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
