package utils

import (
	"context"
	"math/rand"
	"time"
)

// Evaluator runs a script in the page or frame, result ignored
type Evaluator interface {
	Evaluate(script string) error
}

// RandomDelay pauses for a random time between min and max, returns early if ctx is done
func RandomDelay(ctx context.Context, min, max time.Duration) error {
	d := min
	if max > min {
		d = min + time.Duration(rand.Int63n(int64(max-min)))
	}
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Settle waits roughly d, with a little jitter so pages do not see a fixed rhythm
func Settle(ctx context.Context, d time.Duration) error {
	return RandomDelay(ctx, d, d+d/4)
}

// SmoothScroll simulates human scrolling and ends at the bottom to trigger lazy loading.
// Errors are ignored, scrolling is best effort.
func SmoothScroll(ctx context.Context, ev Evaluator, pause time.Duration) {
	// Scroll down a bit
	_ = ev.Evaluate("window.scrollBy(0, 500)")
	if RandomDelay(ctx, pause, pause*2) != nil {
		return
	}

	// Scroll up a tiny bit (human-like correction)
	_ = ev.Evaluate("window.scrollBy(0, -200)")
	if RandomDelay(ctx, pause, pause*2) != nil {
		return
	}

	_ = ev.Evaluate("window.scrollTo(0, document.body.scrollHeight)")
}
