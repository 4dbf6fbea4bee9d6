// Package apierrors provides the transport error types shared by the
// tempmail client packages.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"
)

// MaxBodySnippet is the number of response body bytes kept on an error.
const MaxBodySnippet = 512

// Sentinel errors for errors.Is() checks
var (
	// ErrUnauthorized is returned when the bearer token is rejected.
	ErrUnauthorized = errors.New("invalid or expired token")

	// ErrRateLimited is returned when the service rate limit is exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrForbidden is returned when the service refuses the request,
	// typically because the anti-bot layer blocked it.
	ErrForbidden = errors.New("request blocked by service")

	// ErrServerError is returned for any 5xx response.
	ErrServerError = errors.New("service error")
)

// APIError represents a non-2xx HTTP response from the service.
type APIError struct {
	StatusCode int
	Body       string
	RequestID  string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("API request failed: %d", e.StatusCode)
	if e.Body != "" {
		msg += " - " + e.Body
	}
	if e.RequestID != "" {
		msg += fmt.Sprintf(" (request_id: %s)", e.RequestID)
	}
	return msg
}

// Is implements errors.Is for sentinel error matching.
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return target == ErrUnauthorized
	case e.StatusCode == http.StatusForbidden:
		return target == ErrForbidden
	case e.StatusCode == http.StatusTooManyRequests:
		return target == ErrRateLimited
	case e.StatusCode >= 500:
		return target == ErrServerError
	}
	return false
}

// DecodeError is returned when a successful response does not carry JSON.
type DecodeError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid JSON response from API: %v", e.Err)
	}
	return "invalid JSON response from API"
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NetworkError represents a network-level failure.
type NetworkError struct {
	Err error
	URL string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Snippet trims a response body to at most MaxBodySnippet bytes without
// splitting a UTF-8 sequence.
func Snippet(body []byte) string {
	if len(body) <= MaxBodySnippet {
		return string(body)
	}
	cut := MaxBodySnippet
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut]) + "..."
}
