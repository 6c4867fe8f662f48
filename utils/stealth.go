package utils

import (
	"context"
	"math/rand"
	"time"
)

// RandomDuration picks a duration in [min, max]
func RandomDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)+1))
}

// Sleep waits for d or until ctx is done, whichever comes first
func Sleep(ctx context.Context, d time.Duration) error {
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

// RandomDelay pauses for a random time between min and max.
// Returns ctx.Err() if the wait was cut short.
func RandomDelay(ctx context.Context, min, max time.Duration) error {
	return Sleep(ctx, RandomDuration(min, max))
}
