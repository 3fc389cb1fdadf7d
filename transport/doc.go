// Package transport implements the delivery pipeline for paykit API calls.
//
// Each logical call flows through a fixed sequence: the request body is
// serialized exactly once, a bearer token is attached (fetched through the
// configured TokenSource), mutating requests are signed exactly once over
// the serialized bytes, and the request is dispatched with retry/backoff
// applied to transient failures.
//
// Two retry paths exist and are bounded independently:
//
//   - transient transport failures (connection errors, 5xx, 429) are
//     retried with exponential backoff, but only for idempotent requests:
//     idempotent methods per RFC 7231, or POST/PATCH carrying a non-empty
//     Idempotency-Key header. Every attempt resends byte-identical body,
//     idempotency key and signature.
//   - a 401 triggers one token invalidation and re-authentication cycle
//     per logical call, after which the failure is surfaced.
//
// Responses are classified into the typed errors of the errors package.
package transport
