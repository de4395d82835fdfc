package groupcache

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"wabridge/pkg/logger"
)

// StartSweeper runs Sweep on the given cron schedule until ctx is
// cancelled. An empty expression defaults to hourly. The sweeper is an
// optimization only; Get never depends on it.
func StartSweeper(ctx context.Context, c *Cache, cronExpr string) (context.CancelFunc, error) {
	if cronExpr == "" {
		cronExpr = "0 * * * *"
	}
	if !gronx.IsValid(cronExpr) {
		return nil, fmt.Errorf("invalid group sweep cron expression: %s", cronExpr)
	}
	ctx2, cancel := context.WithCancel(ctx)
	go runSweeper(ctx2, c, cronExpr)
	logger.Info("group_sweeper_started", "cron", cronExpr)
	return cancel, nil
}

// runSweeper computes the next tick with gronx and sleeps until then.
func runSweeper(ctx context.Context, c *Cache, cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("group_sweeper_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("group_sweeper_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			if removed := c.Sweep(); removed > 0 {
				logger.Info("group_sweep_done", "removed", removed, "remaining", c.Len())
			}
		case <-ctx.Done():
			logger.Info("group_sweeper_stopping")
			return
		}
	}
}
