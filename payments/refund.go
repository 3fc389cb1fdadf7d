package payments

import "time"

// CreateRefundRequest is the body of a create-refund call. A nil
// AmountInMinor refunds the full remaining amount of the payment.
type CreateRefundRequest struct {
	AmountInMinor *uint64           `json:"amount_in_minor,omitempty"`
	Reference     string            `json:"reference" validate:"required"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// CreateRefundResponse is the result of a create-refund call.
type CreateRefundResponse struct {
	ID string `json:"id"`
}

// RefundStatus is a refund lifecycle status.
type RefundStatus string

const (
	RefundPending    RefundStatus = "pending"
	RefundAuthorized RefundStatus = "authorized"
	RefundExecuted   RefundStatus = "executed"
	RefundFailed     RefundStatus = "failed"
)

// Terminal reports whether the status is final.
func (s RefundStatus) Terminal() bool {
	return s == RefundExecuted || s == RefundFailed
}

// Refund is the full state of a refund resource. Refunds are scoped to
// the payment they refund.
type Refund struct {
	ID            string            `json:"id"`
	AmountInMinor uint64            `json:"amount_in_minor"`
	Currency      Currency          `json:"currency"`
	Reference     string            `json:"reference"`
	CreatedAt     time.Time         `json:"created_at"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Status        RefundStatus      `json:"status"`

	ExecutedAt    *time.Time `json:"executed_at,omitempty"`
	FailedAt      *time.Time `json:"failed_at,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
}

type refundListResponse struct {
	Items []Refund `json:"items"`
}
