package tempmail

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tempmail-go/client-go/internal/api"
)

const (
	defaultBaseURL        = api.DefaultBaseURL
	defaultWaitTimeout    = 60 * time.Second
	defaultRequestTimeout = api.DefaultTimeout
	defaultCheckInterval  = time.Second
)

// clientConfig holds configuration for the client.
type clientConfig struct {
	baseURL        string
	httpClient     *http.Client
	timeout        time.Duration
	requestTimeout time.Duration
	logger         *zap.Logger
	registerer     prometheus.Registerer
	rateLimit      rate.Limit
	rateBurst      int
	headers        http.Header
}

// waitConfig holds configuration for waiting on messages.
type waitConfig struct {
	checkInterval time.Duration
}

// Option configures the client.
type Option func(*clientConfig)

// WaitOption configures WaitForNewMessage.
type WaitOption func(*waitConfig)

// WithBaseURL sets the service base URL.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client. It takes precedence over
// WithRequestTimeout.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the total time budget of WaitForNewMessage.
// Default: 60 seconds
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithRequestTimeout bounds each HTTP request.
// Default: 30 seconds
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.requestTimeout = timeout
	}
}

// WithLogger sets the logger. The client logs requests and polls at debug
// level. Default: no logging.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithMetrics registers client metrics with reg. Several clients may share
// one registry.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *clientConfig) {
		c.registerer = reg
	}
}

// WithRateLimit caps outgoing requests to limit per second, allowing bursts
// of burst requests. Polls wait for the limiter rather than fail.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *clientConfig) {
		c.rateLimit = limit
		c.rateBurst = burst
	}
}

// WithUserAgent replaces the default browser User-Agent.
func WithUserAgent(userAgent string) Option {
	return func(c *clientConfig) {
		if c.headers == nil {
			c.headers = make(http.Header)
		}
		c.headers.Set("User-Agent", userAgent)
	}
}

// WithHeaders adds headers to every request. A header with the same name as
// a default header replaces it.
func WithHeaders(headers http.Header) Option {
	return func(c *clientConfig) {
		if c.headers == nil {
			c.headers = make(http.Header)
		}
		for key, values := range headers {
			c.headers[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
		}
	}
}

// WithCheckInterval sets the sleep between two polls.
// Default: 1 second
func WithCheckInterval(interval time.Duration) WaitOption {
	return func(c *waitConfig) {
		c.checkInterval = interval
	}
}
