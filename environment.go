package paykit

const (
	liveAuthURL     = "https://auth.truelayer.com"
	livePaymentsURL = "https://api.truelayer.com"
	liveHPPURL      = "https://payment.truelayer.com"

	sandboxAuthURL     = "https://auth.truelayer-sandbox.com"
	sandboxPaymentsURL = "https://api.truelayer-sandbox.com"
	sandboxHPPURL      = "https://payment.truelayer-sandbox.com"
)

// Environment selects the base URLs for the auth server, the payments
// API and the Hosted Payments Page.
type Environment struct {
	// AuthURL is the base URL of the OAuth2 token endpoint host.
	AuthURL string
	// PaymentsURL is the base URL of the payments API.
	PaymentsURL string
	// HPPURL is the base URL of the Hosted Payments Page.
	HPPURL string
}

// EnvironmentLive is the production environment.
func EnvironmentLive() Environment {
	return Environment{
		AuthURL:     liveAuthURL,
		PaymentsURL: livePaymentsURL,
		HPPURL:      liveHPPURL,
	}
}

// EnvironmentSandbox is the sandbox environment.
func EnvironmentSandbox() Environment {
	return Environment{
		AuthURL:     sandboxAuthURL,
		PaymentsURL: sandboxPaymentsURL,
		HPPURL:      sandboxHPPURL,
	}
}

// EnvironmentCustom builds an environment from explicit URLs, typically
// for tests or local mocks.
func EnvironmentCustom(authURL, paymentsURL, hppURL string) Environment {
	return Environment{
		AuthURL:     authURL,
		PaymentsURL: paymentsURL,
		HPPURL:      hppURL,
	}
}

// EnvironmentFromSingleURL points every base URL at the same host.
func EnvironmentFromSingleURL(u string) Environment {
	return Environment{AuthURL: u, PaymentsURL: u, HPPURL: u}
}
