package clock

import (
	"context"
	"time"
)

// NextTick returns the first minute boundary (second and sub-second zero)
// strictly after now.
func NextTick(now time.Time) time.Time {
	return now.Truncate(time.Minute).Add(time.Minute)
}

// WaitForNextTick blocks until the next minute boundary after the current
// time and returns it. The boundary is recomputed from the clock on every
// call, so a cycle that overruns into the next minute simply lands on the
// boundary after that one instead of firing twice or sleeping a negative
// duration. Returns early with ctx.Err() on cancellation.
func WaitForNextTick(ctx context.Context) (time.Time, error) {
	tick := NextTick(time.Now())

	for {
		d := time.Until(tick)
		if d <= 0 {
			return tick, nil
		}

		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return time.Time{}, ctx.Err()
		case <-timer.C:
		}
	}
}
