package transport

import "net/http"

// Header names used by the payments APIs.
const (
	// IdempotencyKeyHeader carries the caller-supplied idempotency key on
	// mutating requests.
	IdempotencyKeyHeader = "Idempotency-Key"
	// SignatureHeader carries the detached request signature.
	SignatureHeader = "Tl-Signature"
	// CorrelationIDHeader carries the upstream trace identifier.
	CorrelationIDHeader = "Tl-Correlation-Id"
)

// Request describes one logical outbound API call.
type Request struct {
	// Method is the HTTP method (GET, POST, PUT, DELETE, etc).
	Method string
	// Path is appended to the client's BaseURL.
	Path string
	// Query are URL query parameters.
	Query map[string]string
	// Headers are request-specific headers (merged over client defaults).
	Headers map[string]string
	// Body is the request body; it is JSON-encoded exactly once per
	// logical call. []byte values are sent as-is.
	Body any
	// IdempotencyKey makes a POST or PATCH request safe to retry. It is
	// sent as the Idempotency-Key header and included in the request
	// signature.
	IdempotencyKey string
	// Retryable marks the request as safe to resend without an
	// idempotency key, for calls known to be idempotent at the
	// application level (e.g. a client-credentials token exchange).
	Retryable bool
}

// Response is the result of a logical call.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers, flattened to single values.
	Headers map[string]string
	// Body is the raw response body.
	Body []byte
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// TraceID returns the upstream trace identifier, if present.
func (r *Response) TraceID() string {
	return r.Headers[CorrelationIDHeader]
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}
