package payouts

import (
	"time"

	"github.com/kbukum/paykit/payments"
)

// CreatePayoutRequest is the body of a create-payout call.
type CreatePayoutRequest struct {
	MerchantAccountID string            `json:"merchant_account_id" validate:"required"`
	AmountInMinor     uint64            `json:"amount_in_minor" validate:"required,gt=0"`
	Currency          payments.Currency `json:"currency" validate:"required"`
	Beneficiary       Beneficiary       `json:"beneficiary" validate:"required"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// Beneficiary is the destination of a payout: an external bank account,
// or the source account of a previously settled payment.
type Beneficiary struct {
	Type              string                      `json:"type" validate:"required,oneof=external_account payment_source"`
	AccountHolderName string                      `json:"account_holder_name,omitempty"`
	AccountIdentifier *payments.AccountIdentifier `json:"account_identifier,omitempty"`
	Reference         string                      `json:"reference,omitempty" validate:"required"`
	UserID            string                      `json:"user_id,omitempty" validate:"required_if=Type payment_source"`
	PaymentSourceID   string                      `json:"payment_source_id,omitempty" validate:"required_if=Type payment_source"`
}

// ExternalAccount builds a payout beneficiary for an external bank
// account.
func ExternalAccount(holderName string, identifier payments.AccountIdentifier, reference string) Beneficiary {
	return Beneficiary{
		Type:              "external_account",
		AccountHolderName: holderName,
		AccountIdentifier: &identifier,
		Reference:         reference,
	}
}

// PaymentSource builds a payout beneficiary refunding the source account
// of an earlier payment.
func PaymentSource(userID, paymentSourceID, reference string) Beneficiary {
	return Beneficiary{
		Type:            "payment_source",
		UserID:          userID,
		PaymentSourceID: paymentSourceID,
		Reference:       reference,
	}
}

// CreatePayoutResponse is the result of a create-payout call.
type CreatePayoutResponse struct {
	ID string `json:"id"`
}

// Status is a payout lifecycle status.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAuthorized Status = "authorized"
	StatusExecuted   Status = "executed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusExecuted || s == StatusFailed
}

// Payout is the full state of a payout resource.
type Payout struct {
	ID                string            `json:"id"`
	MerchantAccountID string            `json:"merchant_account_id"`
	AmountInMinor     uint64            `json:"amount_in_minor"`
	Currency          payments.Currency `json:"currency"`
	Beneficiary       Beneficiary       `json:"beneficiary"`
	CreatedAt         time.Time         `json:"created_at"`
	Status            Status            `json:"status"`

	ExecutedAt    *time.Time `json:"executed_at,omitempty"`
	FailedAt      *time.Time `json:"failed_at,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
}
