package payments

import (
	"context"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	pkerrors "github.com/kbukum/paykit/errors"
	"github.com/kbukum/paykit/pollable"
	"github.com/kbukum/paykit/transport"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// API exposes the payments operations.
type API struct {
	http   *transport.Client
	hppURL string
}

// New creates a payments API backed by the given pipeline client. hppURL
// is the base URL of the Hosted Payments Page, used only for link
// building.
func New(client *transport.Client, hppURL string) *API {
	return &API{http: client, hppURL: strings.TrimRight(hppURL, "/")}
}

// Create creates a new payment. The request is validated locally, then
// sent as a signed POST carrying a freshly generated idempotency key, so
// transient failures are retried safely.
func (a *API) Create(ctx context.Context, req *CreatePaymentRequest) (*CreatePaymentResponse, error) {
	if err := validate.StructCtx(ctx, req); err != nil {
		return nil, pkerrors.NewValidationError(err)
	}
	return transport.Post[CreatePaymentResponse](ctx, a.http, "/payments", req, uuid.NewString())
}

// Get fetches a payment by id. It returns (nil, nil) when no payment
// with that id exists.
func (a *API) Get(ctx context.Context, id string) (*Payment, error) {
	p, err := transport.Get[Payment](ctx, a.http, "/payments/"+url.PathEscape(id))
	if pkerrors.IsNotFound(err) {
		return nil, nil
	}
	return p, err
}

// StartAuthorizationFlow starts the authorization flow for a payment.
func (a *API) StartAuthorizationFlow(ctx context.Context, paymentID string, req *StartAuthorizationFlowRequest) (*StartAuthorizationFlowResponse, error) {
	path := "/payments/" + url.PathEscape(paymentID) + "/authorization-flow"
	return transport.Post[StartAuthorizationFlowResponse](ctx, a.http, path, req, uuid.NewString())
}

// SubmitProviderSelection answers a provider-selection action with the
// provider the end user chose.
func (a *API) SubmitProviderSelection(ctx context.Context, paymentID string, req *SubmitProviderSelectionRequest) (*SubmitProviderSelectionResponse, error) {
	if err := validate.StructCtx(ctx, req); err != nil {
		return nil, pkerrors.NewValidationError(err)
	}
	path := "/payments/" + url.PathEscape(paymentID) + "/authorization-flow/actions/provider-selection"
	return transport.Post[SubmitProviderSelectionResponse](ctx, a.http, path, req, uuid.NewString())
}

// SubmitProviderReturnParameters submits the query and fragment of a
// direct provider redirect, resolving which payment they belong to.
func (a *API) SubmitProviderReturnParameters(ctx context.Context, req *SubmitProviderReturnParametersRequest) (*SubmitProviderReturnParametersResponse, error) {
	return transport.Post[SubmitProviderReturnParametersResponse](ctx, a.http, "/payments-provider-return", req, uuid.NewString())
}

// CreateRefund refunds a settled payment back to its source account. The
// call is signed and carries a freshly generated idempotency key.
func (a *API) CreateRefund(ctx context.Context, paymentID string, req *CreateRefundRequest) (*CreateRefundResponse, error) {
	if err := validate.StructCtx(ctx, req); err != nil {
		return nil, pkerrors.NewValidationError(err)
	}
	path := "/payments/" + url.PathEscape(paymentID) + "/refunds"
	return transport.Post[CreateRefundResponse](ctx, a.http, path, req, uuid.NewString())
}

// GetRefund fetches a refund of a payment by id. It returns (nil, nil)
// when no such refund exists.
func (a *API) GetRefund(ctx context.Context, paymentID, refundID string) (*Refund, error) {
	path := "/payments/" + url.PathEscape(paymentID) + "/refunds/" + url.PathEscape(refundID)
	r, err := transport.Get[Refund](ctx, a.http, path)
	if pkerrors.IsNotFound(err) {
		return nil, nil
	}
	return r, err
}

// ListRefunds returns all refunds of a payment.
func (a *API) ListRefunds(ctx context.Context, paymentID string) ([]Refund, error) {
	path := "/payments/" + url.PathEscape(paymentID) + "/refunds"
	res, err := transport.Get[refundListResponse](ctx, a.http, path)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

// PollRefund fetches the refund until its status is terminal, per the
// polling options.
func (a *API) PollRefund(ctx context.Context, paymentID, refundID string, opts pollable.Options) (*Refund, error) {
	path := "/payments/" + url.PathEscape(paymentID) + "/refunds/" + url.PathEscape(refundID)
	return pollable.Until(ctx, opts,
		func(ctx context.Context) (*Refund, error) {
			return transport.Get[Refund](ctx, a.http, path)
		},
		func(r *Refund) bool { return r.Status.Terminal() },
	)
}

// HostedPaymentsPageLink builds the URL that hands a payment over to the
// Hosted Payments Page. The payment id, resource token and return URI
// travel in the URL fragment, which browsers do not send to the server.
func (a *API) HostedPaymentsPageLink(paymentID, resourceToken, returnURI string) string {
	fragment := "payment_id=" + url.QueryEscape(paymentID) +
		"&resource_token=" + url.QueryEscape(resourceToken) +
		"&return_uri=" + url.QueryEscape(returnURI)
	return a.hppURL + "/payments#" + fragment
}

// Poll fetches the payment until its status is terminal, per the polling
// options. A 404 during polling surfaces as the underlying not-found
// error rather than (nil, nil).
func (a *API) Poll(ctx context.Context, id string, opts pollable.Options) (*Payment, error) {
	return pollable.Until(ctx, opts,
		func(ctx context.Context) (*Payment, error) {
			return transport.Get[Payment](ctx, a.http, "/payments/"+url.PathEscape(id))
		},
		func(p *Payment) bool { return p.Status.Terminal() },
	)
}
