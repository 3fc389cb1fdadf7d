package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// APIError is an error returned by an upstream API endpoint. Its fields
// follow the problem-details shape returned by the payments APIs.
type APIError struct {
	// Type is a unique identifier for this class of error, typically a
	// URL pointing to a page with more information.
	Type string `json:"type"`
	// Title is a concise description of the error.
	Title string `json:"title"`
	// Status is the HTTP status returned by the server.
	Status int `json:"status"`
	// TraceID is the upstream trace identifier for the request, if any.
	TraceID string `json:"trace_id,omitempty"`
	// Detail is a human readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`
	// Errors lists the fields that failed validation, when applicable.
	Errors map[string][]string `json:"errors,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "paykit: api error %d: %s", e.Status, e.Title)
	if e.Type != "" {
		fmt.Fprintf(&b, " (%s)", e.Type)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	if e.TraceID != "" {
		fmt.Fprintf(&b, " [trace %s]", e.TraceID)
	}
	return b.String()
}

// Retryable reports whether the pipeline may resend the failed request.
// Only rate limiting and server-side failures are considered transient.
func (e *APIError) Retryable() bool {
	return e.Status == 429 || e.Status >= 500
}

// IsAuthRejection reports whether the server rejected the access token.
func (e *APIError) IsAuthRejection() bool {
	return e.Status == 401
}

// legacy v1 error body returned by the auth server.
type v1ErrorBody struct {
	Error            string            `json:"error"`
	ErrorDescription string            `json:"error_description"`
	ErrorDetails     map[string]string `json:"error_details"`
}

// FromResponse builds an APIError from a non-2xx response. It understands
// both the problem-details body of the v3 APIs and the legacy body of the
// auth server; anything else falls back to a generic error carrying the
// status code.
func FromResponse(status int, body []byte, traceID string) *APIError {
	var v3 APIError
	if err := json.Unmarshal(body, &v3); err == nil && v3.Title != "" {
		v3.Status = status
		if v3.TraceID == "" {
			v3.TraceID = traceID
		}
		return &v3
	}

	var v1 v1ErrorBody
	if err := json.Unmarshal(body, &v1); err == nil && v1.Error != "" {
		fieldErrors := make(map[string][]string, len(v1.ErrorDetails))
		for k, v := range v1.ErrorDetails {
			fieldErrors[k] = []string{v}
		}
		return &APIError{
			Title:   v1.Error,
			Status:  status,
			TraceID: traceID,
			Detail:  v1.ErrorDescription,
			Errors:  fieldErrors,
		}
	}

	return &APIError{
		Title:   "server_error",
		Status:  status,
		TraceID: traceID,
	}
}

// IsAPI checks if an error is an upstream API error.
func IsAPI(err error) bool {
	var e *APIError
	return errors.As(err, &e)
}

// APIStatus returns the HTTP status of an upstream API error, or 0 if the
// error is not an APIError.
func APIStatus(err error) int {
	var e *APIError
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// IsNotFound checks if an error is an upstream 404.
func IsNotFound(err error) bool {
	return APIStatus(err) == 404
}

// IsAuthRejection checks if an error is an upstream 401.
func IsAuthRejection(err error) bool {
	return APIStatus(err) == 401
}
