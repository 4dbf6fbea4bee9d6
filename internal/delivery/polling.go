package delivery

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/tempmail-go/client-go/internal/metrics"
)

// ErrDeadline is returned when the timeout elapses without the list growing.
var ErrDeadline = errors.New("deadline reached without new items")

// Poller waits for a list to grow past its baseline length.
type Poller[T any] struct {
	list     ListFunc[T]
	timeout  time.Duration
	interval time.Duration
	logger   *zap.Logger
	metrics  *metrics.Recorder
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewPoller creates a poller over list.
func NewPoller[T any](list ListFunc[T], cfg Config) *Poller[T] {
	p := &Poller[T]{
		list:     list,
		timeout:  cfg.Timeout,
		interval: cfg.Interval,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		now:      cfg.Now,
		sleep:    cfg.Sleep,
	}
	if p.interval <= 0 {
		p.interval = DefaultCheckInterval
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.sleep == nil {
		p.sleep = sleepContext
	}
	return p
}

// WaitForGrowth records the current list length as a baseline, then polls
// until a fetch returns more items than the baseline and returns the last
// item of that fetch.
func (p *Poller[T]) WaitForGrowth(ctx context.Context) (T, error) {
	var zero T

	initial, err := p.list(ctx)
	if err != nil {
		p.metrics.ObserveWait(outcomeFor(err))
		return zero, err
	}
	baseline := len(initial)

	deadline := p.now().Add(p.timeout)
	p.logger.Debug("waiting for new items",
		zap.Int("baseline", baseline),
		zap.Duration("timeout", p.timeout),
		zap.Duration("interval", p.interval),
	)

	polls := 0
	for p.now().Before(deadline) {
		current, err := p.list(ctx)
		polls++
		p.metrics.IncPoll()
		if err != nil {
			p.logger.Debug("poll failed", zap.Int("poll", polls), zap.Error(err))
			p.metrics.ObserveWait(outcomeFor(err))
			return zero, err
		}

		p.logger.Debug("poll completed",
			zap.Int("poll", polls),
			zap.Int("count", len(current)),
			zap.Int("baseline", baseline),
		)

		if len(current) > baseline {
			p.metrics.ObserveWait(metrics.OutcomeMessage)
			return current[len(current)-1], nil
		}

		if err := p.sleep(ctx, p.interval); err != nil {
			p.metrics.ObserveWait(metrics.OutcomeCanceled)
			return zero, err
		}
	}

	p.metrics.ObserveWait(metrics.OutcomeTimeout)
	return zero, ErrDeadline
}

func outcomeFor(err error) string {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return metrics.OutcomeCanceled
	}
	return metrics.OutcomeError
}
