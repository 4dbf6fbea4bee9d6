package tempmail

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tempmail-go/client-go/internal/apierrors"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrTransport matches every *TransportError.
	ErrTransport = errors.New("transport error")

	// ErrProvisioning matches every *ProvisioningError.
	ErrProvisioning = errors.New("failed to generate email address")

	// ErrNoActiveSession matches every *NoActiveSessionError.
	ErrNoActiveSession = errors.New("no active email session")

	// ErrWaitTimeout matches every *WaitTimeoutError.
	ErrWaitTimeout = errors.New("timed out waiting for new message")

	// ErrInvalidImportData is returned when an exported session is invalid.
	ErrInvalidImportData = errors.New("invalid import data")

	// ErrUnauthorized is matched by a *TransportError carrying a 401 response.
	ErrUnauthorized = apierrors.ErrUnauthorized

	// ErrRateLimited is matched by a *TransportError carrying a 429 response.
	ErrRateLimited = apierrors.ErrRateLimited

	// ErrForbidden is matched by a *TransportError carrying a 403 response.
	ErrForbidden = apierrors.ErrForbidden
)

// TempMailError is implemented by all errors originating in this package.
type TempMailError interface {
	error
	TempMailError() // marker method
}

// TransportError is returned when a request could not be completed: the
// service answered with a non-2xx status, the body was not JSON, or no
// response arrived at all.
type TransportError struct {
	Method     string
	Endpoint   string
	StatusCode int    // 0 when no response was received
	Body       string // response body excerpt, if any
	Err        error
}

func (e *TransportError) Error() string {
	prefix := strings.TrimSpace(e.Method + " " + e.Endpoint)
	if e.Err == nil {
		if e.StatusCode != 0 {
			return fmt.Sprintf("%s: API request failed: %d - %s", prefix, e.StatusCode, e.Body)
		}
		return prefix + ": request failed"
	}
	if prefix == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", prefix, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// TempMailError implements the TempMailError interface.
func (e *TransportError) TempMailError() {}

// ProvisioningError is returned when the mailbox creation response lacks
// the token or the address.
type ProvisioningError struct {
	Missing []string
}

func (e *ProvisioningError) Error() string {
	if len(e.Missing) == 0 {
		return ErrProvisioning.Error()
	}
	return fmt.Sprintf("%s: response missing %s", ErrProvisioning, strings.Join(e.Missing, " and "))
}

// Is implements errors.Is for sentinel error matching.
func (e *ProvisioningError) Is(target error) bool {
	return target == ErrProvisioning
}

// TempMailError implements the TempMailError interface.
func (e *ProvisioningError) TempMailError() {}

// NoActiveSessionError is returned when an authenticated operation is
// attempted before a mailbox was generated or imported.
type NoActiveSessionError struct {
	Operation string
}

func (e *NoActiveSessionError) Error() string {
	if e.Operation == "" {
		return ErrNoActiveSession.Error()
	}
	return fmt.Sprintf("%s: %s", e.Operation, ErrNoActiveSession)
}

// Is implements errors.Is for sentinel error matching.
func (e *NoActiveSessionError) Is(target error) bool {
	return target == ErrNoActiveSession
}

// TempMailError implements the TempMailError interface.
func (e *NoActiveSessionError) TempMailError() {}

// WaitTimeoutError is returned when no new message arrived within the
// configured timeout.
type WaitTimeoutError struct {
	Timeout time.Duration
}

func (e *WaitTimeoutError) Error() string {
	if e.Timeout%time.Second == 0 {
		return fmt.Sprintf("no new messages received within %d seconds", int64(e.Timeout/time.Second))
	}
	return fmt.Sprintf("no new messages received within %v", e.Timeout)
}

// Is implements errors.Is for sentinel error matching.
func (e *WaitTimeoutError) Is(target error) bool {
	return target == ErrWaitTimeout
}

// TempMailError implements the TempMailError interface.
func (e *WaitTimeoutError) TempMailError() {}

// wrapError converts internal transport errors to public errors.
// This ensures that errors.Is() checks work with public sentinel errors.
func wrapError(method, endpoint string, err error) error {
	if err == nil {
		return nil
	}

	te := &TransportError{Method: method, Endpoint: endpoint, Err: err}

	var apiErr *apierrors.APIError
	var decodeErr *apierrors.DecodeError
	switch {
	case errors.As(err, &apiErr):
		te.StatusCode = apiErr.StatusCode
		te.Body = apiErr.Body
	case errors.As(err, &decodeErr):
		te.StatusCode = decodeErr.StatusCode
		te.Body = decodeErr.Body
	}

	return te
}
