// Package paykit is a client SDK for a TrueLayer-style payments API.
//
// A Client authenticates with OAuth2 client credentials, signs mutating
// requests with a detached JWS, and delivers requests through a retrying
// pipeline that is safe for idempotent calls. The typed API surfaces
// live in the payments, payouts and merchantaccounts packages and are
// reachable from Client fields.
//
//	client, err := paykit.New(paykit.Config{
//		Credentials: auth.ClientCredentials{
//			ID:     os.Getenv("PAYKIT_CLIENT_ID"),
//			Secret: os.Getenv("PAYKIT_CLIENT_SECRET"),
//			Scope:  "payments",
//		},
//		SigningKeyID:  os.Getenv("PAYKIT_SIGNING_KEY_ID"),
//		SigningKeyPEM: pemBytes,
//		Environment:   paykit.EnvironmentSandbox(),
//	})
package paykit
