package errors

import (
	"errors"
	"fmt"
)

// Kind classifies SDK errors into the top-level taxonomy.
type Kind int

const (
	// KindAuth indicates a token acquisition failure.
	KindAuth Kind = iota
	// KindSigning indicates invalid signing key material or a failed
	// signature computation. Always fatal.
	KindSigning
	// KindTransport indicates a connection-level failure or timeout.
	KindTransport
	// KindAPI indicates the upstream rejected the request semantically.
	KindAPI
	// KindDecode indicates a response body that did not match the
	// expected shape.
	KindDecode
	// KindValidation indicates a request rejected locally before
	// dispatch.
	KindValidation
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindSigning:
		return "signing"
	case KindTransport:
		return "transport"
	case KindAPI:
		return "api"
	case KindDecode:
		return "decode"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// AuthReason narrows KindAuth failures.
type AuthReason int

const (
	// AuthReasonNone is set on non-auth errors.
	AuthReasonNone AuthReason = iota
	// AuthNetworkFailure means the authorization endpoint was unreachable.
	AuthNetworkFailure
	// AuthRejected means the authorization endpoint rejected the credentials.
	AuthRejected
	// AuthMalformedResponse means the token response could not be decoded.
	AuthMalformedResponse
)

// String returns the reason name.
func (r AuthReason) String() string {
	switch r {
	case AuthNetworkFailure:
		return "network_failure"
	case AuthRejected:
		return "rejected"
	case AuthMalformedResponse:
		return "malformed_response"
	default:
		return "none"
	}
}

// Error is the structured SDK error type.
type Error struct {
	// Kind classifies the error.
	Kind Kind
	// Reason narrows auth failures. AuthReasonNone otherwise.
	Reason AuthReason
	// Message describes the error.
	Message string
	// Retryable indicates whether the delivery pipeline may resend the
	// request that produced this error.
	Retryable bool
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Reason != AuthReasonNone {
		return fmt.Sprintf("paykit: %s (%s): %s", e.Kind, e.Reason, e.Message)
	}
	return fmt.Sprintf("paykit: %s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewAuthError creates a token acquisition error.
func NewAuthError(reason AuthReason, message string, err error) *Error {
	return &Error{
		Kind:      KindAuth,
		Reason:    reason,
		Message:   message,
		Retryable: reason == AuthNetworkFailure,
		Err:       err,
	}
}

// NewSigningError creates a signing error. Signing errors are always fatal.
func NewSigningError(message string, err error) *Error {
	return &Error{
		Kind:    KindSigning,
		Message: message,
		Err:     err,
	}
}

// NewTransportError creates a connection-level error.
func NewTransportError(err error) *Error {
	return &Error{
		Kind:      KindTransport,
		Message:   err.Error(),
		Retryable: true,
		Err:       err,
	}
}

// NewTimeoutError creates a transport error caused by a timeout or
// cancellation. Timeouts are not retried: either the per-attempt context
// expired (and the logical budget is gone) or the caller cancelled.
func NewTimeoutError(err error) *Error {
	return &Error{
		Kind:    KindTransport,
		Message: err.Error(),
		Err:     err,
	}
}

// NewDecodeError creates a response decoding error.
func NewDecodeError(err error) *Error {
	return &Error{
		Kind:    KindDecode,
		Message: err.Error(),
		Err:     err,
	}
}

// NewValidationError creates a local request validation error. The
// request never left the process.
func NewValidationError(err error) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: err.Error(),
		Err:     err,
	}
}

// IsAuth checks if an error is a token acquisition error.
func IsAuth(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindAuth
}

// IsSigning checks if an error is a signing error.
func IsSigning(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindSigning
}

// IsTransport checks if an error is a connection-level error.
func IsTransport(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindTransport
}

// IsDecode checks if an error is a response decoding error.
func IsDecode(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindDecode
}

// IsValidation checks if an error is a local request validation error.
func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindValidation
}

// IsRetryable checks if the delivery pipeline may resend the request that
// produced this error.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	var api *APIError
	if errors.As(err, &api) {
		return api.Retryable()
	}
	return false
}
