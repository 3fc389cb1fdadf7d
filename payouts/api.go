package payouts

import (
	"context"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	pkerrors "github.com/kbukum/paykit/errors"
	"github.com/kbukum/paykit/pollable"
	"github.com/kbukum/paykit/transport"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// API exposes the payouts operations.
type API struct {
	http *transport.Client
}

// New creates a payouts API backed by the given pipeline client.
func New(client *transport.Client) *API {
	return &API{http: client}
}

// Create creates a new payout. The request is validated locally, then
// sent as a signed POST carrying a freshly generated idempotency key.
func (a *API) Create(ctx context.Context, req *CreatePayoutRequest) (*CreatePayoutResponse, error) {
	if err := validate.StructCtx(ctx, req); err != nil {
		return nil, pkerrors.NewValidationError(err)
	}
	return transport.Post[CreatePayoutResponse](ctx, a.http, "/payouts", req, uuid.NewString())
}

// Get fetches a payout by id. It returns (nil, nil) when no payout with
// that id exists.
func (a *API) Get(ctx context.Context, id string) (*Payout, error) {
	p, err := transport.Get[Payout](ctx, a.http, "/payouts/"+url.PathEscape(id))
	if pkerrors.IsNotFound(err) {
		return nil, nil
	}
	return p, err
}

// Poll fetches the payout until its status is terminal, per the polling
// options.
func (a *API) Poll(ctx context.Context, id string, opts pollable.Options) (*Payout, error) {
	return pollable.Until(ctx, opts,
		func(ctx context.Context) (*Payout, error) {
			return transport.Get[Payout](ctx, a.http, "/payouts/"+url.PathEscape(id))
		},
		func(p *Payout) bool { return p.Status.Terminal() },
	)
}
