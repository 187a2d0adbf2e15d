package engine

import (
	"context"
	"errors"
	"time"
)

// DefaultWatchInterval is the pause between polling passes.
const DefaultWatchInterval = time.Minute

// Watch runs triage passes until the context is cancelled: one immediately,
// then one per interval tick. A tick that lands while the previous pass is
// still running is skipped rather than queued. Pass failures are logged and
// the loop keeps going; only cancellation ends it.
func (c *Controller) Watch(ctx context.Context, interval time.Duration, query string) error {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	c.runPass(ctx, query)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.runPass(ctx, query)
		}
	}
}

func (c *Controller) runPass(ctx context.Context, query string) {
	if _, err := c.Sync(ctx, query); err != nil {
		if errors.Is(err, ErrPassInFlight) {
			c.log.Info("skipping tick: previous pass still running")
			return
		}
		c.log.Error("triage pass failed", "error", err)
	}
}
