// Package utils holds small helpers shared by the gateway backends and the stores.
package utils

import (
	"context"
	"time"
)

// WaitFor blocks for d or until ctx ends, whichever comes first. It returns the
// context error when the wait was cut short.
func WaitFor(ctx context.Context, d time.Duration) error {
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
