package delivery

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tempmail-go/client-go/internal/metrics"
)

// DefaultCheckInterval is the sleep between two polls.
const DefaultCheckInterval = time.Second

// ListFunc fetches the current list of items, in service order.
type ListFunc[T any] func(ctx context.Context) ([]T, error)

// Config holds configuration for a Poller.
type Config struct {
	// Timeout is the total polling budget, measured from the end of the
	// baseline fetch. Required.
	Timeout time.Duration

	// Interval is the sleep between two polls.
	// If zero, defaults to DefaultCheckInterval.
	Interval time.Duration

	// Logger receives one debug entry per poll. Defaults to a no-op logger.
	Logger *zap.Logger

	// Metrics counts polls and wait outcomes. May be nil.
	Metrics *metrics.Recorder

	// Now and Sleep replace the wall clock. Tests use them to drive the
	// poller without real delays.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// sleepContext blocks for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
