package tempmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tempmail-go/client-go/internal/api"
	"github.com/tempmail-go/client-go/internal/metrics"
)

// identity is the credential pair of the current mailbox.
type identity struct {
	address string
	token   string
}

// Client is a mailbox session. It holds at most one mailbox identity;
// generating or importing another replaces it.
type Client struct {
	apiClient *api.Client
	timeout   time.Duration
	logger    *zap.Logger
	metrics   *metrics.Recorder

	mu       sync.RWMutex
	identity identity
}

// buildAPIClient creates and configures an API client from the given config.
func buildAPIClient(cfg *clientConfig, rec *metrics.Recorder) (*api.Client, error) {
	apiOpts := []api.Option{
		api.WithBaseURL(cfg.baseURL),
		api.WithLogger(cfg.logger),
		api.WithMetrics(rec),
	}
	if cfg.requestTimeout > 0 {
		apiOpts = append(apiOpts, api.WithTimeout(cfg.requestTimeout))
	}
	if cfg.rateLimit > 0 {
		apiOpts = append(apiOpts, api.WithRateLimit(cfg.rateLimit, cfg.rateBurst))
	}
	if len(cfg.headers) > 0 {
		apiOpts = append(apiOpts, api.WithHeaders(cfg.headers))
	}

	apiClient, err := api.New(apiOpts...)
	if err != nil {
		return nil, err
	}

	if cfg.httpClient != nil {
		apiClient.SetHTTPClient(cfg.httpClient)
	}

	return apiClient, nil
}

// New creates a client. No network call is made until GenerateEmail.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		baseURL:        defaultBaseURL,
		timeout:        defaultWaitTimeout,
		requestTimeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %v", cfg.timeout)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	rec, err := metrics.New(cfg.registerer)
	if err != nil {
		return nil, err
	}
	apiClient, err := buildAPIClient(cfg, rec)
	if err != nil {
		return nil, err
	}

	return &Client{
		apiClient: apiClient,
		timeout:   cfg.timeout,
		logger:    cfg.logger,
		metrics:   rec,
	}, nil
}

// GenerateEmail provisions a new mailbox and makes it the client's current
// identity. The previous identity, if any, is discarded.
func (c *Client) GenerateEmail(ctx context.Context) (string, error) {
	resp, err := c.apiClient.CreateMailbox(ctx)
	if err != nil {
		return "", wrapError(http.MethodPost, api.EndpointMailbox, err)
	}

	var missing []string
	if resp.Token == "" {
		missing = append(missing, "token")
	}
	if resp.Mailbox == "" {
		missing = append(missing, "mailbox")
	}
	if len(missing) > 0 {
		return "", &ProvisioningError{Missing: missing}
	}

	c.setIdentity(identity{address: resp.Mailbox, token: resp.Token})
	c.metrics.IncMailbox()
	c.logger.Info("mailbox generated", zap.String("address", resp.Mailbox))

	return resp.Mailbox, nil
}

// GetMessages returns every message currently in the mailbox, in the order
// the service reports them.
func (c *Client) GetMessages(ctx context.Context) ([]*Message, error) {
	token := c.Token()
	if token == "" {
		return nil, &NoActiveSessionError{Operation: "get messages"}
	}

	resp, err := c.apiClient.ListMessages(ctx, token)
	if err != nil {
		return nil, wrapError(http.MethodGet, api.EndpointMessages, err)
	}

	messages := make([]*Message, 0, len(resp.Messages))
	for _, record := range resp.Messages {
		messages = append(messages, newMessage(record))
	}
	return messages, nil
}

// EmailAddress returns the current mailbox address, or "" without a session.
func (c *Client) EmailAddress() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity.address
}

// Token returns the current bearer token, or "" without a session.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity.token
}

// HasSession reports whether a mailbox identity is held.
func (c *Client) HasSession() bool {
	return c.Token() != ""
}

// Timeout returns the wait budget of WaitForNewMessage.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string {
	return c.apiClient.BaseURL()
}

func (c *Client) setIdentity(id identity) {
	c.mu.Lock()
	c.identity = id
	c.mu.Unlock()
}

// isCanceled reports whether err stems from ctx cancellation or expiry.
func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
