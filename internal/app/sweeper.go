package app

import (
	"context"
	"time"
)

const defaultSweepInterval = 500 * time.Millisecond

// pruner drops expired entries. *notice.Board implements it.
type pruner interface {
	Prune() bool
}

// StartSweeper launches a background goroutine that drops expired notices
// at a fixed cadence until ctx is cancelled. It returns immediately.
func StartSweeper(ctx context.Context, board pruner, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				board.Prune()
			}
		}
	}()
}
