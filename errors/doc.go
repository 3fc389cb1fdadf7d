// Package errors defines the typed error taxonomy shared by all paykit
// packages.
//
// Every failure surfaced by the SDK is one of:
//
//   - KindAuth: token acquisition failed (network, rejected credentials,
//     malformed token response)
//   - KindSigning: invalid signing key material; never retried
//   - KindTransport: connection-level failure or timeout; retried per policy
//   - KindAPI: the upstream rejected the request semantically; carries the
//     decoded problem-details body as [*APIError]
//   - KindDecode: a response body did not match the expected shape
//   - KindValidation: the request was rejected locally before dispatch
//
// Use the IsX helpers (or errors.As against [*Error] / [*APIError]) to
// classify failures. IsRetryable reports whether the delivery pipeline is
// allowed to resend the request.
package errors
