package auth

import "time"

// AccessToken is an opaque bearer token with its expiry instant.
type AccessToken struct {
	// Token is the bearer string. Treat as sensitive; never log it.
	Token string
	// ExpiresAt is the instant the token expires. Zero means the token
	// does not expire.
	ExpiresAt time.Time
}

// valid reports whether the token still has at least margin of validity
// left at the given instant.
func (t AccessToken) valid(now time.Time, margin time.Duration) bool {
	if t.Token == "" {
		return false
	}
	if t.ExpiresAt.IsZero() {
		return true
	}
	return now.Before(t.ExpiresAt.Add(-margin))
}

// tokenResponse is the body returned by the authorization endpoint.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
}
