package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	pkerrors "github.com/kbukum/paykit/errors"
	"github.com/kbukum/paykit/transport"
)

const (
	mockClientID     = "mock-client-id"
	mockClientSecret = "mock-client-secret"
	mockAccessToken  = "mock-access-token"
	mockRefreshToken = "mock-refresh-token"
)

// newTokenServer returns a server that responds with mock-access-token-N,
// where N counts the requests received, and its call counter.
func newTokenServer(t *testing.T, includeRefreshToken bool) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/connect/token" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		n := calls.Add(1) - 1

		resp := map[string]any{
			"token_type":   "Bearer",
			"access_token": fmt.Sprintf("%s-%d", mockAccessToken, n),
			"expires_in":   3600,
		}
		if includeRefreshToken {
			resp["refresh_token"] = mockRefreshToken
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newAuthenticator(t *testing.T, authURL string) *Authenticator {
	t.Helper()
	a, err := New(Config{
		AuthURL: authURL,
		Credentials: ClientCredentials{
			ID:     mockClientID,
			Secret: mockClientSecret,
			Scope:  "payments",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return a
}

func TestAccessToken_ReusedUntilExpired(t *testing.T) {
	srv, calls := newTokenServer(t, false)
	a := newAuthenticator(t, srv.URL)

	now := time.Now()
	a.now = func() time.Time { return now }

	tok1, err := a.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok1.Token != mockAccessToken+"-0" {
		t.Errorf("unexpected token: %q", tok1.Token)
	}
	if tok1.ExpiresAt.IsZero() {
		t.Error("expected an expiry instant")
	}

	tok2, err := a.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok2.Token != tok1.Token {
		t.Errorf("expected cached token, got %q", tok2.Token)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 call to the token endpoint, got %d", got)
	}

	// A moment before the refresh margin: still cached.
	now = tok1.ExpiresAt.Add(-defaultRefreshMargin - time.Second)
	tok3, err := a.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok3.Token != tok1.Token {
		t.Errorf("expected cached token, got %q", tok3.Token)
	}

	// Inside the refresh margin: a new token is fetched.
	now = tok1.ExpiresAt.Add(-defaultRefreshMargin)
	tok4, err := a.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok4.Token != mockAccessToken+"-1" {
		t.Errorf("expected refreshed token, got %q", tok4.Token)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 calls to the token endpoint, got %d", got)
	}
}

func TestAccessToken_ConcurrentCallersShareOneRefresh(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release // hold every caller on the same in-flight refresh
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"token_type":   "Bearer",
			"access_token": mockAccessToken,
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	a := newAuthenticator(t, srv.URL)

	const n = 50
	tokens := make([]string, n)
	errs := make([]error, n)
	var started, done sync.WaitGroup
	started.Add(n)
	done.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer done.Done()
			started.Done()
			tok, err := a.AccessToken(context.Background())
			tokens[i], errs[i] = tok.Token, err
		}(i)
	}
	started.Wait()
	time.Sleep(50 * time.Millisecond) // let all goroutines reach the flight
	close(release)
	done.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("expected exactly 1 call to the token endpoint, got %d", got)
	}
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: unexpected error: %v", i, errs[i])
		}
		if tokens[i] != mockAccessToken {
			t.Errorf("caller %d: unexpected token %q", i, tokens[i])
		}
	}
}

func TestAccessToken_CancelledWaiterDoesNotAbortRefresh(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"token_type":   "Bearer",
			"access_token": mockAccessToken,
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	a := newAuthenticator(t, srv.URL)

	// First caller starts the refresh, then cancels.
	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := a.AccessToken(ctx)
		firstErr <- err
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	if err := <-firstErr; err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	// Second caller joins the same flight and still gets the token.
	secondTok := make(chan string, 1)
	secondErr := make(chan error, 1)
	go func() {
		tok, err := a.AccessToken(context.Background())
		secondTok <- tok.Token
		secondErr <- err
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)

	if err := <-secondErr; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok := <-secondTok; tok != mockAccessToken {
		t.Errorf("unexpected token: %q", tok)
	}
}

func TestInvalidate_ForcesRefresh(t *testing.T) {
	srv, calls := newTokenServer(t, false)
	a := newAuthenticator(t, srv.URL)

	tok1, err := a.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a.Invalidate(tok1.Token)

	tok2, err := a.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok2.Token == tok1.Token {
		t.Error("expected a fresh token after invalidation")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 calls, got %d", got)
	}
}

func TestInvalidate_IgnoresSupersededToken(t *testing.T) {
	srv, calls := newTokenServer(t, false)
	a := newAuthenticator(t, srv.URL)

	tok1, err := a.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Invalidating a token that is no longer cached is a no-op.
	a.Invalidate("some-older-token")

	tok2, err := a.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok2.Token != tok1.Token {
		t.Error("expected cached token to survive stale invalidation")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 call, got %d", got)
	}
}

func TestRefreshToken_UsedWhenProvided(t *testing.T) {
	var grants []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		grants = append(grants, req["grant_type"])
		if len(grants) > 1 {
			if req["refresh_token"] != mockRefreshToken {
				t.Errorf("expected refresh token in request, got %q", req["refresh_token"])
			}
			if req["client_id"] != mockClientID {
				t.Errorf("expected client id in refresh request, got %q", req["client_id"])
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"token_type":    "Bearer",
			"access_token":  fmt.Sprintf("%s-%d", mockAccessToken, len(grants)-1),
			"expires_in":    3600,
			"refresh_token": mockRefreshToken,
		})
	}))
	defer srv.Close()

	a := newAuthenticator(t, srv.URL)
	now := time.Now()
	a.now = func() time.Time { return now }

	tok1, err := a.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now = tok1.ExpiresAt // expired
	if _, err := a.AccessToken(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(grants) != 2 || grants[0] != "client_credentials" || grants[1] != "refresh_token" {
		t.Errorf("unexpected grant sequence: %v", grants)
	}
}

func TestAccessToken_TransientTokenFailureRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"token_type": "Bearer", "access_token": %q, "expires_in": 3600}`, mockAccessToken)
	}))
	t.Cleanup(srv.Close)

	a, err := New(Config{
		AuthURL:     srv.URL,
		Credentials: ClientCredentials{ID: mockClientID, Secret: mockClientSecret},
		Retry: &transport.RetryPolicy{
			MaxAttempts:    3,
			InitialBackoff: time.Millisecond,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A 503 from the token endpoint is transient: the configured retry
	// policy must resend the token request, not surface it.
	tok, err := a.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Token != mockAccessToken {
		t.Errorf("unexpected token: %q", tok.Token)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected the token request to be retried once, got %d calls", got)
	}
}

func TestAccessToken_ErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		reason  pkerrors.AuthReason
	}{
		{
			name: "rejected credentials",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, `{"error": "invalid_client"}`)
			},
			reason: pkerrors.AuthRejected,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `not json at all`)
			},
			reason: pkerrors.AuthMalformedResponse,
		},
		{
			name: "missing access token",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"token_type": "Bearer", "expires_in": 3600}`)
			},
			reason: pkerrors.AuthMalformedResponse,
		},
		{
			name: "unsupported token type",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"token_type": "MAC", "access_token": "x", "expires_in": 3600}`)
			},
			reason: pkerrors.AuthMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			a := newAuthenticator(t, srv.URL)
			_, err := a.AccessToken(context.Background())
			if !pkerrors.IsAuth(err) {
				t.Fatalf("expected auth error, got %v", err)
			}
			var e *pkerrors.Error
			if !errors.As(err, &e) || e.Reason != tt.reason {
				t.Errorf("expected reason %s, got %v", tt.reason, err)
			}
		})
	}
}

func TestAccessToken_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	a := newAuthenticator(t, srv.URL)
	_, err := a.AccessToken(context.Background())
	var e *pkerrors.Error
	if !errors.As(err, &e) || e.Reason != pkerrors.AuthNetworkFailure {
		t.Errorf("expected network failure, got %v", err)
	}
}

func TestStaticToken(t *testing.T) {
	a, err := New(Config{Credentials: StaticToken{Token: "pre-fetched"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tok, err := a.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Token != "pre-fetched" {
		t.Errorf("unexpected token: %q", tok.Token)
	}

	// Invalidation is a no-op for static tokens.
	a.Invalidate("pre-fetched")
	tok, err = a.AccessToken(context.Background())
	if err != nil || tok.Token != "pre-fetched" {
		t.Errorf("expected static token to survive invalidation, got %q, %v", tok.Token, err)
	}
}

func TestConfig_Validate(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for missing credentials")
	}
	if _, err := New(Config{Credentials: ClientCredentials{ID: "x"}}); err == nil {
		t.Error("expected error for missing auth url")
	}
}

