package auth

// Credentials is the set of supported ways to authenticate against the
// authorization endpoint. The variant is dispatched once at Authenticator
// construction.
type Credentials interface {
	// ClientID returns the client identifier, if any.
	ClientID() string

	tokenRequest() tokenRequest
}

// tokenRequest is the JSON body of a token endpoint call.
type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	Scope        string `json:"scope,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// ClientCredentials authenticates with a client id and secret using the
// OAuth2 client-credentials grant.
type ClientCredentials struct {
	ID     string
	Secret string
	Scope  string
}

// ClientID returns the client identifier.
func (c ClientCredentials) ClientID() string { return c.ID }

func (c ClientCredentials) tokenRequest() tokenRequest {
	return tokenRequest{
		GrantType:    "client_credentials",
		ClientID:     c.ID,
		ClientSecret: c.Secret,
		Scope:        c.Scope,
	}
}

// refreshCredentials authenticates with a refresh token obtained from a
// previous token response. Never constructed by callers.
type refreshCredentials struct {
	clientID     string
	clientSecret string
	refreshToken string
}

func (c refreshCredentials) ClientID() string { return c.clientID }

func (c refreshCredentials) tokenRequest() tokenRequest {
	return tokenRequest{
		GrantType:    "refresh_token",
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		RefreshToken: c.refreshToken,
	}
}

// StaticToken supplies an externally fetched access token. The
// Authenticator never contacts the authorization endpoint and the token is
// never refreshed.
type StaticToken struct {
	Token string
}

// ClientID returns the empty string: a static token carries no client id.
func (StaticToken) ClientID() string { return "" }

func (StaticToken) tokenRequest() tokenRequest { return tokenRequest{} }
