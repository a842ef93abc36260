package scheduler

import (
	"context"
	"log/slog"
	"time"
)

type Task func(ctx context.Context) error

// Every runs task now and then on every tick until ctx is cancelled. A
// failing run is logged and the schedule keeps going.
func Every(ctx context.Context, interval time.Duration, name string, log *slog.Logger, task Task) {
	t := time.NewTicker(interval)
	defer t.Stop()

	// run immediately
	go func() {
		if err := task(ctx); err != nil {
			log.Warn("scheduled task failed", "task", name, "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := task(ctx); err != nil {
				log.Warn("scheduled task failed", "task", name, "err", err)
			}
		}
	}
}
