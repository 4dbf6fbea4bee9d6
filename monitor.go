package tempmail

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// errFound stops the remaining waits of WaitAny once a message arrived.
var errFound = errors.New("message found")

// MonitorResult is the outcome of one session's wait.
type MonitorResult struct {
	Client  *Client
	Message *Message
	Err     error
}

// Monitor waits on several mailbox sessions at once. Each session is waited
// on in its own goroutine, so a slow or failing mailbox never delays the
// others.
type Monitor struct {
	clients []*Client
}

// NewMonitor creates a monitor over clients. Every client should hold a
// session; those that do not fail with ErrNoActiveSession.
func NewMonitor(clients ...*Client) *Monitor {
	return &Monitor{clients: clients}
}

// Clients returns the monitored clients.
func (m *Monitor) Clients() []*Client {
	return m.clients
}

// WaitAll waits on every session and returns one result per client, in the
// order the clients were given. The error joins every per-session failure
// and is nil when each session received a message.
func (m *Monitor) WaitAll(ctx context.Context, opts ...WaitOption) ([]MonitorResult, error) {
	results := make([]MonitorResult, len(m.clients))

	var wg sync.WaitGroup
	for i, client := range m.clients {
		wg.Go(func() {
			msg, err := client.WaitForNewMessage(ctx, opts...)
			results[i] = MonitorResult{Client: client, Message: msg, Err: err}
		})
	}
	wg.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Client.EmailAddress(), r.Err))
		}
	}
	return results, errors.Join(errs...)
}

// WaitAny returns the first message to arrive in any session and cancels
// the remaining waits. When no session receives a message, the error joins
// every per-session failure.
func (m *Monitor) WaitAny(ctx context.Context, opts ...WaitOption) (*MonitorResult, error) {
	if len(m.clients) == 0 {
		return nil, errors.New("no sessions to monitor")
	}

	g, gctx := errgroup.WithContext(ctx)

	var (
		mu    sync.Mutex
		first *MonitorResult
		errs  []error
	)
	for _, client := range m.clients {
		g.Go(func() error {
			msg, err := client.WaitForNewMessage(gctx, opts...)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if first == nil || !isCanceled(err) {
					errs = append(errs, fmt.Errorf("%s: %w", client.EmailAddress(), err))
				}
				return nil
			}
			if first == nil {
				first = &MonitorResult{Client: client, Message: msg}
			}
			return errFound
		})
	}
	_ = g.Wait()

	if first != nil {
		return first, nil
	}
	return nil, errors.Join(errs...)
}
