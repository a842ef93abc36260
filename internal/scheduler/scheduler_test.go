package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEveryRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	runs := 0

	done := make(chan struct{})
	go func() {
		Every(ctx, 5*time.Millisecond, "count", slog.New(slog.NewTextHandler(io.Discard, nil)),
			func(ctx context.Context) error {
				mu.Lock()
				runs++
				n := runs
				mu.Unlock()
				if n >= 3 {
					cancel()
				}
				// a failing run must not stop the schedule
				return errors.New("transient")
			})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, runs, 3)
}
