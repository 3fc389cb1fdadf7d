package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const defaultTimeout = 30 * time.Second

// TokenSource supplies bearer tokens for outgoing requests.
type TokenSource interface {
	// Token returns a valid access token, fetching or refreshing one if
	// necessary.
	Token(ctx context.Context) (string, error)
	// Invalidate discards the given token from any cache so the next
	// Token call forces a refresh. It is a no-op if the cached token has
	// already been replaced.
	Invalidate(token string)
}

// Signer produces a detached signature over the canonical representation
// of an outgoing request. The body is the exact bytes to be transmitted.
type Signer interface {
	Sign(method, path string, headers map[string]string, body []byte) (string, error)
}

// Config configures a pipeline Client.
type Config struct {
	// BaseURL is prepended to all request paths.
	BaseURL string
	// Timeout bounds each physical attempt. Defaults to 30s.
	Timeout time.Duration
	// Headers are default headers applied to all requests.
	Headers map[string]string
	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// TokenSource attaches bearer tokens. Nil disables authentication.
	TokenSource TokenSource
	// Signer signs mutating requests. Nil disables signing.
	Signer Signer
	// Retry configures retry behavior for transient failures. Nil
	// disables retry.
	Retry *RetryPolicy
	// Logger receives debug logs. Defaults to a no-op logger.
	Logger zerolog.Logger
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.Retry != nil {
		c.Retry.applyDefaults()
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("transport: base url is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("transport: timeout must be positive")
	}
	return nil
}
