package tempmail

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/tempmail-go/client-go/internal/delivery"
)

// WaitForNewMessage blocks until the mailbox holds more messages than it
// did when the call started, and returns the last message of the listing
// that showed the growth.
//
// The wait budget is the client's Timeout, measured from the end of the
// first listing. When it elapses, a *WaitTimeoutError is returned. Listing
// failures end the wait at once and are returned unchanged. Cancelling ctx
// ends the wait with ctx.Err(), or with a *TransportError wrapping it when
// a request was in flight.
//
// Example:
//
//	msg, err := client.WaitForNewMessage(ctx,
//	    tempmail.WithCheckInterval(500*time.Millisecond),
//	)
func (c *Client) WaitForNewMessage(ctx context.Context, opts ...WaitOption) (*Message, error) {
	cfg := &waitConfig{
		checkInterval: defaultCheckInterval,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if !c.HasSession() {
		return nil, &NoActiveSessionError{Operation: "wait for new message"}
	}

	poller := delivery.NewPoller[*Message](c.GetMessages, delivery.Config{
		Timeout:  c.timeout,
		Interval: cfg.checkInterval,
		Logger:   c.logger.With(zap.String("address", c.EmailAddress())),
		Metrics:  c.metrics,
	})

	msg, err := poller.WaitForGrowth(ctx)
	if errors.Is(err, delivery.ErrDeadline) {
		c.logger.Warn("no new message before timeout",
			zap.String("address", c.EmailAddress()),
			zap.Duration("timeout", c.timeout),
		)
		return nil, &WaitTimeoutError{Timeout: c.timeout}
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}
