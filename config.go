package paykit

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kbukum/paykit/auth"
	"github.com/kbukum/paykit/transport"
)

const defaultTimeout = 30 * time.Second

// Config configures a Client.
type Config struct {
	// Credentials authenticate the client against the auth server.
	Credentials auth.Credentials
	// SigningKeyID identifies the signing key registered in the console.
	// Leave empty together with SigningKeyPEM to disable request signing.
	SigningKeyID string
	// SigningKeyPEM is the EC P-521 private key in PEM form. The bytes
	// are consumed and zeroed during New.
	SigningKeyPEM []byte
	// Environment selects the live, sandbox or custom base URLs.
	// Defaults to live.
	Environment Environment
	// Timeout bounds each physical request attempt. Defaults to 30s.
	Timeout time.Duration
	// Retry configures the delivery pipeline's retry policy. Nil uses
	// the default policy; RetryDisabled turns retries off.
	Retry *transport.RetryPolicy
	// RetryDisabled turns off retries regardless of Retry.
	RetryDisabled bool
	// RefreshMargin is how long before expiry a cached access token is
	// considered stale. Defaults to 30s.
	RefreshMargin time.Duration
	// Logger receives debug logs. Defaults to a no-op logger.
	Logger zerolog.Logger
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Environment == (Environment{}) {
		c.Environment = EnvironmentLive()
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Retry == nil && !c.RetryDisabled {
		c.Retry = transport.DefaultRetryPolicy()
	}
}

// Validate checks that the configuration is complete.
func (c *Config) Validate() error {
	if c.Credentials == nil {
		return fmt.Errorf("paykit: credentials are required")
	}
	if c.Environment.AuthURL == "" || c.Environment.PaymentsURL == "" {
		return fmt.Errorf("paykit: environment urls are required")
	}
	if (c.SigningKeyID == "") != (len(c.SigningKeyPEM) == 0) {
		return fmt.Errorf("paykit: signing key id and pem must be set together")
	}
	return nil
}
