// Package payments is the typed surface for the payments API.
//
// It rides on the transport pipeline: mutating calls are signed and carry
// a generated idempotency key, reads are plain bearer-authenticated
// requests. Payments settle asynchronously; use Poll to wait for a
// terminal status.
package payments
