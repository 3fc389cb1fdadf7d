package merchantaccounts

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	pkerrors "github.com/kbukum/paykit/errors"
	"github.com/kbukum/paykit/payments"
	"github.com/kbukum/paykit/transport"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// MerchantAccount is a platform-held account denominated in a single
// currency.
type MerchantAccount struct {
	ID                      string                       `json:"id"`
	Currency                payments.Currency            `json:"currency"`
	AccountIdentifiers      []payments.AccountIdentifier `json:"account_identifiers"`
	AvailableBalanceInMinor uint64                       `json:"available_balance_in_minor"`
	CurrentBalanceInMinor   uint64                       `json:"current_balance_in_minor"`
	AccountHolderName       string                       `json:"account_holder_name"`
}

// SweepingFrequency is how often an automatic sweep runs.
type SweepingFrequency string

const (
	SweepDaily       SweepingFrequency = "daily"
	SweepWeekly      SweepingFrequency = "weekly"
	SweepFortnightly SweepingFrequency = "fortnightly"
)

// SetupSweepingRequest configures automatic sweeping: at each interval,
// available balance above the configured maximum is withdrawn to the
// account's pre-configured destination.
type SetupSweepingRequest struct {
	MaxAmountInMinor uint64            `json:"max_amount_in_minor" validate:"required,gt=0"`
	Currency         payments.Currency `json:"currency" validate:"required"`
	Frequency        SweepingFrequency `json:"frequency" validate:"required,oneof=daily weekly fortnightly"`
}

// SweepingSettings is the active sweeping configuration.
type SweepingSettings struct {
	MaxAmountInMinor uint64                     `json:"max_amount_in_minor"`
	Currency         payments.Currency          `json:"currency"`
	Frequency        SweepingFrequency          `json:"frequency"`
	Destination      payments.AccountIdentifier `json:"destination"`
}

type listResponse struct {
	Items []MerchantAccount `json:"items"`
}

// API exposes the merchant account operations.
type API struct {
	http *transport.Client
}

// New creates a merchant accounts API backed by the given pipeline
// client.
func New(client *transport.Client) *API {
	return &API{http: client}
}

// List returns all merchant accounts visible to the client.
func (a *API) List(ctx context.Context) ([]MerchantAccount, error) {
	res, err := transport.Get[listResponse](ctx, a.http, "/merchant-accounts")
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

// Get fetches a merchant account by id. It returns (nil, nil) when no
// account with that id exists.
func (a *API) Get(ctx context.Context, id string) (*MerchantAccount, error) {
	m, err := transport.Get[MerchantAccount](ctx, a.http, "/merchant-accounts/"+url.PathEscape(id))
	if pkerrors.IsNotFound(err) {
		return nil, nil
	}
	return m, err
}

// SetupSweeping configures automatic sweeping for a merchant account.
// The call is signed and idempotency-keyed.
func (a *API) SetupSweeping(ctx context.Context, id string, req *SetupSweepingRequest) error {
	if err := validate.StructCtx(ctx, req); err != nil {
		return pkerrors.NewValidationError(err)
	}
	path := "/merchant-accounts/" + url.PathEscape(id) + "/sweeping"
	_, err := transport.Post[struct{}](ctx, a.http, path, req, uuid.NewString())
	return err
}

// DisableSweeping removes the sweeping configuration of a merchant
// account. The call is signed and idempotency-keyed.
func (a *API) DisableSweeping(ctx context.Context, id string) error {
	_, err := transport.Do[struct{}](ctx, a.http, transport.Request{
		Method:         http.MethodDelete,
		Path:           "/merchant-accounts/" + url.PathEscape(id) + "/sweeping",
		IdempotencyKey: uuid.NewString(),
	})
	return err
}

// SweepingSettings returns the active sweeping configuration, or
// (nil, nil) when sweeping is not configured.
func (a *API) SweepingSettings(ctx context.Context, id string) (*SweepingSettings, error) {
	s, err := transport.Get[SweepingSettings](ctx, a.http, "/merchant-accounts/"+url.PathEscape(id)+"/sweeping")
	if pkerrors.IsNotFound(err) {
		return nil, nil
	}
	return s, err
}
