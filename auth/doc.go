// Package auth manages credentials and access tokens for the payments
// APIs.
//
// The Authenticator exchanges the configured credentials for an access
// token on first use and caches it until it approaches expiry. Concurrent
// callers observing a missing or expiring token are collapsed into a
// single refresh call against the authorization endpoint; all of them
// receive the same token (or the same error). A caller cancelling its own
// context does not abort an in-flight refresh that other callers are
// waiting on.
//
// If the authorization server returns a refresh token, subsequent
// refreshes switch to the refresh-token grant automatically.
package auth
