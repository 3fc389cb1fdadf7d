package paykit

import (
	"github.com/kbukum/paykit/auth"
	"github.com/kbukum/paykit/merchantaccounts"
	"github.com/kbukum/paykit/payments"
	"github.com/kbukum/paykit/payouts"
	"github.com/kbukum/paykit/signing"
	"github.com/kbukum/paykit/transport"
)

// Client is the entry point to the SDK. Construct one with New and reach
// the typed API surfaces through its fields.
type Client struct {
	// Auth exposes the token cache, mostly useful for diagnostics.
	Auth *auth.Authenticator
	// Payments exposes the payments operations.
	Payments *payments.API
	// Payouts exposes the payouts operations.
	Payouts *payouts.API
	// MerchantAccounts exposes the merchant account operations.
	MerchantAccounts *merchantaccounts.API
}

// New wires an authenticator, a request signer and the delivery pipeline
// into a Client per the given configuration. The signing key PEM is
// parsed once and zeroed before New returns.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	authenticator, err := auth.New(auth.Config{
		AuthURL:       cfg.Environment.AuthURL,
		Credentials:   cfg.Credentials,
		RefreshMargin: cfg.RefreshMargin,
		Retry:         cfg.Retry,
		Logger:        cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	var signer transport.Signer
	if cfg.SigningKeyID != "" {
		key, err := signing.NewKey(cfg.SigningKeyID, cfg.SigningKeyPEM)
		if err != nil {
			return nil, err
		}
		signer = signing.NewSigner(key)
	}

	pipeline, err := transport.New(transport.Config{
		BaseURL:     cfg.Environment.PaymentsURL,
		Timeout:     cfg.Timeout,
		TokenSource: authenticator,
		Signer:      signer,
		Retry:       cfg.Retry,
		Logger:      cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		Auth:             authenticator,
		Payments:         payments.New(pipeline, cfg.Environment.HPPURL),
		Payouts:          payouts.New(pipeline),
		MerchantAccounts: merchantaccounts.New(pipeline),
	}, nil
}
