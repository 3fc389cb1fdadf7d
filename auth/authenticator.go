package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	pkerrors "github.com/kbukum/paykit/errors"
	"github.com/kbukum/paykit/transport"
)

const (
	// tokenPath is the client-credentials grant endpoint.
	tokenPath = "/connect/token"

	defaultRefreshMargin  = 30 * time.Second
	defaultRefreshTimeout = 30 * time.Second
)

// Config configures an Authenticator.
type Config struct {
	// AuthURL is the base URL of the authorization server.
	AuthURL string
	// Credentials are exchanged for access tokens.
	Credentials Credentials
	// RefreshMargin is how long before expiry a cached token is
	// considered stale. Defaults to 30s.
	RefreshMargin time.Duration
	// RefreshTimeout bounds each refresh call independently of the
	// callers awaiting it. Defaults to 30s.
	RefreshTimeout time.Duration
	// Retry configures retries of the token endpoint call itself.
	Retry *transport.RetryPolicy
	// Logger receives debug logs. Defaults to a no-op logger.
	Logger zerolog.Logger
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.RefreshMargin <= 0 {
		c.RefreshMargin = defaultRefreshMargin
	}
	if c.RefreshTimeout <= 0 {
		c.RefreshTimeout = defaultRefreshTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Credentials == nil {
		return fmt.Errorf("auth: credentials are required")
	}
	if _, ok := c.Credentials.(StaticToken); !ok && c.AuthURL == "" {
		return fmt.Errorf("auth: auth url is required")
	}
	return nil
}

// Authenticator caches an access token for one client instance and
// refreshes it on demand. Safe for concurrent use.
type Authenticator struct {
	http   *transport.Client
	static string
	margin time.Duration
	rtmout time.Duration
	log    zerolog.Logger
	now    func() time.Time

	mu    sync.Mutex // guards token and creds
	token AccessToken
	creds Credentials

	sf singleflight.Group
}

// compile-time assertion
var _ transport.TokenSource = (*Authenticator)(nil)

// New creates a new Authenticator.
func New(cfg Config) (*Authenticator, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Authenticator{
		margin: cfg.RefreshMargin,
		rtmout: cfg.RefreshTimeout,
		log:    cfg.Logger,
		now:    time.Now,
		creds:  cfg.Credentials,
	}

	if static, ok := cfg.Credentials.(StaticToken); ok {
		a.static = static.Token
		return a, nil
	}

	httpClient, err := transport.New(transport.Config{
		BaseURL: cfg.AuthURL,
		Timeout: cfg.RefreshTimeout,
		Retry:   cfg.Retry,
		Logger:  cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	a.http = httpClient
	return a, nil
}

// Token returns a valid bearer string, refreshing if necessary.
func (a *Authenticator) Token(ctx context.Context) (string, error) {
	token, err := a.AccessToken(ctx)
	if err != nil {
		return "", err
	}
	return token.Token, nil
}

// AccessToken returns the current access token. A cached token with at
// least the refresh margin of validity left is returned without network
// I/O; otherwise a refresh is performed, with concurrent callers sharing
// one in-flight call to the authorization endpoint.
func (a *Authenticator) AccessToken(ctx context.Context) (AccessToken, error) {
	if a.static != "" {
		return AccessToken{Token: a.static}, nil
	}

	a.mu.Lock()
	token := a.token
	a.mu.Unlock()
	if token.valid(a.now(), a.margin) {
		return token, nil
	}

	// The refresh runs detached from this caller's context: if this
	// caller is cancelled, other waiters still receive the outcome.
	ch := a.sf.DoChan("refresh", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.rtmout)
		defer cancel()
		return a.refresh(rctx)
	})

	select {
	case <-ctx.Done():
		return AccessToken{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return AccessToken{}, res.Err
		}
		return res.Val.(AccessToken), nil
	}
}

// Invalidate discards the cached token if it matches the given value, so
// the next AccessToken call forces a refresh. Invalidation applies to
// whichever token is current: if the cache has already been replaced by a
// newer token, it is a no-op.
func (a *Authenticator) Invalidate(token string) {
	if a.static != "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if token == "" || a.token.Token == token {
		a.token = AccessToken{}
	}
}

// refresh exchanges the current credentials for a new access token and
// atomically replaces the cached one.
func (a *Authenticator) refresh(ctx context.Context) (AccessToken, error) {
	a.mu.Lock()
	// A previous flight may have refreshed the token after this caller
	// observed it stale.
	if a.token.valid(a.now(), a.margin) {
		token := a.token
		a.mu.Unlock()
		return token, nil
	}
	creds := a.creds
	a.mu.Unlock()

	// A token exchange is idempotent at the grant level: retrying it at
	// worst issues another token.
	resp, err := a.http.Do(ctx, transport.Request{
		Method:    http.MethodPost,
		Path:      tokenPath,
		Body:      creds.tokenRequest(),
		Retryable: true,
	})
	if err != nil {
		if pkerrors.IsAPI(err) {
			return AccessToken{}, pkerrors.NewAuthError(pkerrors.AuthRejected,
				"authorization endpoint rejected the credentials", err)
		}
		return AccessToken{}, pkerrors.NewAuthError(pkerrors.AuthNetworkFailure,
			"authorization endpoint unreachable", err)
	}

	var body tokenResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return AccessToken{}, pkerrors.NewAuthError(pkerrors.AuthMalformedResponse,
			"malformed token response", err)
	}
	if body.AccessToken == "" {
		return AccessToken{}, pkerrors.NewAuthError(pkerrors.AuthMalformedResponse,
			"token response has no access token", nil)
	}
	if body.TokenType != "Bearer" {
		return AccessToken{}, pkerrors.NewAuthError(pkerrors.AuthMalformedResponse,
			fmt.Sprintf("unsupported token type %q", body.TokenType), nil)
	}

	token := AccessToken{Token: body.AccessToken}
	if body.ExpiresIn > 0 {
		token.ExpiresAt = a.now().Add(time.Duration(body.ExpiresIn) * time.Second)
	}

	a.mu.Lock()
	a.token = token
	// Use the refresh token for subsequent refreshes if one was provided.
	if body.RefreshToken != "" {
		a.creds = refreshCredentials{
			clientID:     creds.ClientID(),
			clientSecret: clientSecretOf(creds),
			refreshToken: body.RefreshToken,
		}
	}
	a.mu.Unlock()

	a.log.Debug().Str("client_id", creds.ClientID()).Msg("obtained new access token")
	return token, nil
}

func clientSecretOf(creds Credentials) string {
	switch c := creds.(type) {
	case ClientCredentials:
		return c.Secret
	case refreshCredentials:
		return c.clientSecret
	default:
		return ""
	}
}
