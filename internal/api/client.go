package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tempmail-go/client-go/internal/apierrors"
	"github.com/tempmail-go/client-go/internal/metrics"
)

const (
	// DefaultBaseURL is the temp-mail service endpoint.
	DefaultBaseURL = "https://web2.temp-mail.org"
	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent mimics desktop Chrome on Windows.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	maxResponseSize = 10 << 20
)

// DefaultHeaders returns the browser-like header profile sent with every request.
func DefaultHeaders() http.Header {
	return http.Header{
		"User-Agent":      {DefaultUserAgent},
		"Accept":          {"application/json, text/plain, */*"},
		"Accept-Language": {"en-US,en;q=0.9"},
	}
}

// Client is the HTTP API client.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	headers    http.Header
	limiter    *rate.Limiter
	logger     *zap.Logger
	metrics    *metrics.Recorder
}

// Config holds configuration for creating a new API client.
type Config struct {
	// BaseURL is the service base URL. Defaults to DefaultBaseURL.
	BaseURL string
	// HTTPClient is an optional custom HTTP client.
	HTTPClient *http.Client
	// Timeout bounds each request when HTTPClient is nil. Defaults to DefaultTimeout.
	Timeout time.Duration
	// Headers override or extend DefaultHeaders.
	Headers http.Header
	// RateLimit caps outgoing requests per second. Zero disables limiting.
	RateLimit rate.Limit
	// RateBurst is the limiter burst size. Defaults to 1 when RateLimit is set.
	RateBurst int
	// Logger receives debug logs for each request. Defaults to a no-op logger.
	Logger *zap.Logger
	// Metrics records request metrics. May be nil.
	Metrics *metrics.Recorder
}

// NewClient creates a new API client from a Config.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	headers := DefaultHeaders()
	for key, values := range cfg.Headers {
		headers[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		baseURL:    base,
		httpClient: httpClient,
		headers:    headers,
		logger:     logger,
		metrics:    cfg.Metrics,
	}

	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(cfg.RateLimit, burst)
	}

	return c, nil
}

// Option configures the API client.
type Option func(*Config)

// WithBaseURL sets the base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithHeaders adds headers to every request.
func WithHeaders(headers http.Header) Option {
	return func(c *Config) {
		if c.Headers == nil {
			c.Headers = make(http.Header)
		}
		for key, values := range headers {
			c.Headers[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
		}
	}
}

// WithRateLimit caps outgoing requests to limit per second with the given burst.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Config) {
		c.RateLimit = limit
		c.RateBurst = burst
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(c *Config) {
		c.Metrics = m
	}
}

// New creates a new API client using functional options.
func New(opts ...Option) (*Client, error) {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewClient(cfg)
}

// SetHTTPClient sets a custom HTTP client.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// BaseURL returns the base URL requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Request carries the optional parts of a request.
type Request struct {
	// Token is sent as a bearer credential when non-empty.
	Token string
	// Headers are merged over the client's default headers.
	Headers http.Header
	// Body is encoded as JSON when non-nil.
	Body any
}

// resolve joins endpoint onto the base URL with the same rules a browser
// applies to a relative link.
func (c *Client) resolve(endpoint string) (string, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	return c.baseURL.ResolveReference(ref).String(), nil
}

// Do performs an HTTP request and decodes the JSON response into result.
// result may be nil when the response body is not needed.
func (c *Client) Do(ctx context.Context, method, endpoint string, req *Request, result any) error {
	if req == nil {
		req = &Request{}
	}

	target, err := c.resolve(endpoint)
	if err != nil {
		return err
	}

	var bodyReader io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &apierrors.NetworkError{Err: err, URL: target}
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range c.headers {
		httpReq.Header[key] = append([]string(nil), values...)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, values := range req.Headers {
		httpReq.Header[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	requestID := uuid.NewString()
	log := c.logger.With(
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("endpoint", endpoint),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.ObserveRequest(method, endpoint, 0, time.Since(start))
		log.Debug("request failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return &apierrors.NetworkError{Err: err, URL: target}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	elapsed := time.Since(start)
	c.metrics.ObserveRequest(method, endpoint, resp.StatusCode, elapsed)
	if err != nil {
		log.Debug("reading response failed", zap.Error(err), zap.Int("status", resp.StatusCode))
		return &apierrors.NetworkError{Err: err, URL: target}
	}

	log.Debug("request completed",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", elapsed),
		zap.Int("bytes", len(data)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apierrors.APIError{
			StatusCode: resp.StatusCode,
			Body:       apierrors.Snippet(data),
			RequestID:  requestID,
		}
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return &apierrors.DecodeError{
				StatusCode: resp.StatusCode,
				Body:       apierrors.Snippet(data),
				Err:        err,
			}
		}
	}

	return nil
}
