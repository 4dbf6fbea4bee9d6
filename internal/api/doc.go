// Package api provides the HTTP transport for the temp-mail web service.
// It resolves endpoints against a base URL, attaches the mailbox bearer
// token, decodes JSON responses and classifies every failure.
//
// # Client Creation
//
// The package provides two ways to create a client:
//
//   - [NewClient]: Struct-based configuration for explicit, type-safe setup.
//   - [New]: Functional options pattern for flexible configuration.
//
// Both default to [DefaultBaseURL] and [DefaultTimeout].
//
// # Headers
//
// Every request carries a browser-like header profile (see
// [DefaultHeaders]). Headers passed in [Request.Headers] replace the
// default value for the same key and leave every other header in place.
// When [Request.Token] is set, an Authorization: Bearer header is added
// last.
//
// # Error Handling
//
// Failures are returned as one of the types in the apierrors package:
//
//   - *apierrors.APIError: the service answered with a non-2xx status.
//   - *apierrors.DecodeError: a 2xx response did not carry valid JSON.
//   - *apierrors.NetworkError: no response was received.
//
// Requests are never retried. Retrying is left to the caller.
//
// # Thread Safety
//
// The [Client] type is safe for concurrent use. Multiple goroutines may call
// methods on a single Client simultaneously.
package api
