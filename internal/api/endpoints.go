package api

import (
	"context"
	"net/http"
)

// Service endpoints, relative to the base URL.
const (
	EndpointMailbox  = "/mailbox"
	EndpointMessages = "/messages"
)

// CreateMailbox provisions a new disposable mailbox.
func (c *Client) CreateMailbox(ctx context.Context) (*CreateMailboxResponse, error) {
	var result CreateMailboxResponse
	if err := c.Do(ctx, http.MethodPost, EndpointMailbox, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListMessages returns the messages of the mailbox owning token, in the
// order the service reports them.
func (c *Client) ListMessages(ctx context.Context, token string) (*MessagesResponse, error) {
	var result MessagesResponse
	if err := c.Do(ctx, http.MethodGet, EndpointMessages, &Request{Token: token}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
