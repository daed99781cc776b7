package verification

import (
	"context"
	"time"
)

// Remaining is the whole seconds left before expiresAt, never negative. It is
// for display only; the stored expiry stays authoritative.
func Remaining(expiresAt, now time.Time) time.Duration {
	d := expiresAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return d.Truncate(time.Second)
}

// Countdown emits Remaining(expiresAt, now()) right away and then on every
// tick. The channel is closed after zero is sent or when ctx is done.
func Countdown(ctx context.Context, expiresAt time.Time, tick time.Duration, now func() time.Time) <-chan time.Duration {
	out := make(chan time.Duration, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(tick)
		defer ticker.Stop()

		for {
			left := Remaining(expiresAt, now())
			select {
			case out <- left:
			case <-ctx.Done():
				return
			}
			if left == 0 {
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
