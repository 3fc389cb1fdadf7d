// Package signing produces detached request signatures for mutating API
// calls.
//
// The signature scheme is a detached JWS: an ES512 signature over a
// canonical payload built from the HTTP method, the request path, the
// signed headers (at minimum the Idempotency-Key header, when present) and
// the exact request body bytes. The transmitted header contains only the
// protected JWS header and the signature, bound to the signing key id; the
// payload is recomputed by the verifying side.
//
// Keys are EC P-521 private keys in PEM form. Key material is parsed once
// at construction and the PEM bytes are zeroed afterwards; invalid or
// unsupported key material is a fatal, non-retryable error.
package signing
