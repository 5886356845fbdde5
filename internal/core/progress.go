package core

import (
	"context"
	"fmt"
	"time"
)

// ProgressFunc receives the completed fraction in [0, 1]
type ProgressFunc func(fraction float64)

// RunProgress drives a simulated processing sequence of steps ticks spaced by
// interval, reporting after each tick. It returns ctx.Err() if cancelled
// before the last step; no report is made after cancellation.
func RunProgress(ctx context.Context, steps int, interval time.Duration, report ProgressFunc) error {
	if steps <= 0 {
		if report != nil {
			report(1)
		}
		return nil
	}
	if interval <= 0 {
		return fmt.Errorf("progress interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for step := 1; step <= steps; step++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if report != nil {
			report(float64(step) / float64(steps))
		}
	}
	return nil
}
