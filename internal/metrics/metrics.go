// Package metrics records Prometheus metrics for tempmail clients.
//
// A nil *Recorder is valid and records nothing, so callers never need to
// check whether metrics were configured.
package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Wait outcomes.
const (
	OutcomeMessage  = "message"
	OutcomeTimeout  = "timeout"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

// StatusNetworkError is the status label used when no HTTP response was received.
const StatusNetworkError = "network_error"

// Recorder holds the client metrics.
type Recorder struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	PollsTotal      prometheus.Counter
	WaitsTotal      *prometheus.CounterVec
	MailboxesTotal  prometheus.Counter
}

// New creates a Recorder and registers its collectors with reg.
// Collectors already registered by another Recorder on the same registry
// are reused, so several clients may share one registry. A collector that
// clashes with a different one already in reg is reported as an error.
func New(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		return nil, nil
	}

	rr := &registrar{reg: reg}
	r := &Recorder{
		RequestsTotal: register(rr, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tempmail_client_requests_total",
				Help: "Total number of API requests by method, endpoint and status code",
			},
			[]string{"method", "endpoint", "status_code"},
		)),
		RequestDuration: register(rr, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tempmail_client_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		)),
		PollsTotal: register(rr, prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tempmail_client_polls_total",
				Help: "Total number of message list polls issued while waiting",
			},
		)),
		WaitsTotal: register(rr, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tempmail_client_waits_total",
				Help: "Completed waits for a new message by outcome",
			},
			[]string{"outcome"},
		)),
		MailboxesTotal: register(rr, prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tempmail_client_mailboxes_created_total",
				Help: "Total number of mailboxes provisioned",
			},
		)),
	}
	if rr.err != nil {
		return nil, rr.err
	}
	return r, nil
}

// registrar keeps the first registration failure.
type registrar struct {
	reg prometheus.Registerer
	err error
}

func register[C prometheus.Collector](rr *registrar, c C) C {
	if rr.err != nil {
		return c
	}
	if err := rr.reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		rr.err = fmt.Errorf("register metrics: %w", err)
	}
	return c
}

// ObserveRequest records one API request. A zero status means the request
// failed before a response arrived.
func (r *Recorder) ObserveRequest(method, endpoint string, status int, d time.Duration) {
	if r == nil {
		return
	}
	code := StatusNetworkError
	if status != 0 {
		code = strconv.Itoa(status)
	}
	r.RequestsTotal.WithLabelValues(method, endpoint, code).Inc()
	r.RequestDuration.WithLabelValues(method, endpoint).Observe(d.Seconds())
}

// IncPoll records one poll of the message list.
func (r *Recorder) IncPoll() {
	if r == nil {
		return
	}
	r.PollsTotal.Inc()
}

// ObserveWait records the outcome of a wait.
func (r *Recorder) ObserveWait(outcome string) {
	if r == nil {
		return
	}
	r.WaitsTotal.WithLabelValues(outcome).Inc()
}

// IncMailbox records a provisioned mailbox.
func (r *Recorder) IncMailbox() {
	if r == nil {
		return
	}
	r.MailboxesTotal.Inc()
}
