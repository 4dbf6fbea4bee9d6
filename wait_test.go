package tempmail

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tempmail-go/client-go/internal/metrics"
)

func newSessionClient(t *testing.T, opts ...Option) (*fakeService, *Client) {
	t.Helper()
	svc, server := newFakeService(t)
	c := newTestClient(t, server.URL, opts...)
	if _, err := c.GenerateEmail(context.Background()); err != nil {
		t.Fatalf("GenerateEmail() error = %v", err)
	}
	return svc, c
}

func TestWaitForNewMessage_NoSession(t *testing.T) {
	svc, server := newFakeService(t)
	c := newTestClient(t, server.URL)

	_, err := c.WaitForNewMessage(context.Background())
	if !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("WaitForNewMessage() error = %v, want ErrNoActiveSession", err)
	}
	if n := svc.lists.Load(); n != 0 {
		t.Errorf("list calls = %d, want 0", n)
	}
}

func TestWaitForNewMessage_ReturnsNewMessage(t *testing.T) {
	svc, c := newSessionClient(t, WithTimeout(5*time.Second))

	created := "2024-03-01T08:00:00Z"
	third := map[string]any{"from": "x", "subject": "s", "bodyPreview": "b", "createdAt": created}
	svc.setListings(
		records("one", "two"),
		append(records("one", "two"), third),
	)

	msg, err := c.WaitForNewMessage(context.Background(), WithCheckInterval(10*time.Millisecond))
	if err != nil {
		t.Fatalf("WaitForNewMessage() error = %v", err)
	}

	want, _ := time.Parse(time.RFC3339, created)
	if msg.From != "x" || msg.Subject != "s" || msg.BodyPreview != "b" || !msg.ReceivedAt.Equal(want) {
		t.Errorf("msg = %+v, want from=x subject=s body=b receivedAt=%v", msg, want)
	}
	if n := svc.lists.Load(); n != 2 {
		t.Errorf("list calls = %d, want 2", n)
	}
}

func TestWaitForNewMessage_ReturnsLastElement(t *testing.T) {
	svc, c := newSessionClient(t, WithTimeout(5*time.Second))

	// The service inserts the new message at the front; the last element
	// is still what the wait reports.
	svc.setListings(
		records("a", "b"),
		records("new", "a", "b"),
	)

	msg, err := c.WaitForNewMessage(context.Background(), WithCheckInterval(10*time.Millisecond))
	if err != nil {
		t.Fatalf("WaitForNewMessage() error = %v", err)
	}
	if msg.Subject != "b" {
		t.Errorf("Subject = %q, want b", msg.Subject)
	}
}

func TestWaitForNewMessage_DelayedArrival(t *testing.T) {
	svc, c := newSessionClient(t, WithTimeout(5*time.Second))
	svc.setListings(
		records("a"),
		records("a"),
		records("a"),
		records("a", "b"),
	)

	msg, err := c.WaitForNewMessage(context.Background(), WithCheckInterval(10*time.Millisecond))
	if err != nil {
		t.Fatalf("WaitForNewMessage() error = %v", err)
	}
	if msg.Subject != "b" {
		t.Errorf("Subject = %q, want b", msg.Subject)
	}
	if n := svc.lists.Load(); n != 4 {
		t.Errorf("list calls = %d, want 4", n)
	}
}

func TestWaitForNewMessage_Timeout(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping timing test in short mode")
	}

	svc, c := newSessionClient(t, WithTimeout(2*time.Second))
	svc.setListings(records("a", "b"))

	start := time.Now()
	_, err := c.WaitForNewMessage(context.Background(), WithCheckInterval(500*time.Millisecond))
	elapsed := time.Since(start)

	if !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("WaitForNewMessage() error = %v, want ErrWaitTimeout", err)
	}
	var timeoutErr *WaitTimeoutError
	if !errors.As(err, &timeoutErr) || timeoutErr.Timeout != 2*time.Second {
		t.Errorf("error = %#v, want *WaitTimeoutError{Timeout: 2s}", err)
	}
	if err.Error() != "no new messages received within 2 seconds" {
		t.Errorf("Error() = %q", err.Error())
	}
	if elapsed < 1500*time.Millisecond || elapsed > 3*time.Second {
		t.Errorf("elapsed = %v, want about 2s", elapsed)
	}

	// One baseline listing plus the polls.
	polls := svc.lists.Load() - 1
	if polls < 2 || polls > 5 {
		t.Errorf("polls = %d, want between 2 and 5", polls)
	}
}

func TestWaitForNewMessage_ShrinkIsNotNew(t *testing.T) {
	svc, c := newSessionClient(t, WithTimeout(200*time.Millisecond))
	svc.setListings(records("a", "b", "c"), records("a"))

	_, err := c.WaitForNewMessage(context.Background(), WithCheckInterval(20*time.Millisecond))
	if !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("WaitForNewMessage() error = %v, want ErrWaitTimeout", err)
	}
}

func TestWaitForNewMessage_TransportErrorStopsPolling(t *testing.T) {
	svc, c := newSessionClient(t, WithTimeout(5*time.Second))
	svc.setListings(records("a"))

	done := make(chan error, 1)
	go func() {
		_, err := c.WaitForNewMessage(context.Background(), WithCheckInterval(20*time.Millisecond))
		done <- err
	}()

	// Let the baseline and a few polls happen, then fail the service.
	time.Sleep(70 * time.Millisecond)
	svc.setStatus(http.StatusInternalServerError)

	select {
	case err := <-done:
		var te *TransportError
		if !errors.As(err, &te) {
			t.Fatalf("error type = %T (%v), want *TransportError", err, err)
		}
		if te.StatusCode != http.StatusInternalServerError {
			t.Errorf("StatusCode = %d, want 500", te.StatusCode)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("wait did not stop after a transport failure")
	}

	calls := svc.lists.Load()
	time.Sleep(60 * time.Millisecond)
	if svc.lists.Load() != calls {
		t.Error("polling continued after a transport failure")
	}
}

func TestWaitForNewMessage_BaselineErrorReturnsImmediately(t *testing.T) {
	svc, c := newSessionClient(t)
	svc.setStatus(http.StatusForbidden)

	_, err := c.WaitForNewMessage(context.Background())
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("WaitForNewMessage() error = %v, want ErrForbidden", err)
	}
	if n := svc.lists.Load(); n != 1 {
		t.Errorf("list calls = %d, want 1", n)
	}
}

func TestWaitForNewMessage_ContextCancellation(t *testing.T) {
	svc, c := newSessionClient(t, WithTimeout(time.Minute))
	svc.setListings(records("a"))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.WaitForNewMessage(ctx, WithCheckInterval(time.Second))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("WaitForNewMessage() error = %v, want context.DeadlineExceeded", err)
	}
	if errors.Is(err, ErrWaitTimeout) {
		t.Error("cancellation must be distinct from a wait timeout")
	}
	if time.Since(start) > 900*time.Millisecond {
		t.Error("cancellation should interrupt the sleep between polls")
	}
}

func TestWaitForNewMessage_LogsAndMetrics(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	reg := prometheus.NewRegistry()
	svc, c := newSessionClient(t,
		WithTimeout(100*time.Millisecond),
		WithLogger(zap.New(core)),
		WithMetrics(reg),
	)
	svc.setListings(records("a"))

	_, err := c.WaitForNewMessage(context.Background(), WithCheckInterval(20*time.Millisecond))
	if !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("WaitForNewMessage() error = %v, want ErrWaitTimeout", err)
	}

	if logs.FilterMessage("no new message before timeout").Len() != 1 {
		t.Error("expected a warn log on timeout")
	}
	if logs.FilterMessage("poll completed").Len() == 0 {
		t.Error("expected debug logs per poll")
	}
	if got := testutil.ToFloat64(c.metrics.WaitsTotal.WithLabelValues(metrics.OutcomeTimeout)); got != 1 {
		t.Errorf("waits_total{outcome=timeout} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.metrics.PollsTotal); got < 1 {
		t.Errorf("polls_total = %v, want at least 1", got)
	}
}
