package payments

import "time"

// Currency is an ISO 4217 currency code.
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyNOK Currency = "NOK"
	CurrencyPLN Currency = "PLN"
)

// CreatePaymentRequest is the body of a create-payment call.
type CreatePaymentRequest struct {
	AmountInMinor uint64            `json:"amount_in_minor" validate:"required,gt=0"`
	Currency      Currency          `json:"currency" validate:"required"`
	PaymentMethod PaymentMethod     `json:"payment_method" validate:"required"`
	User          User              `json:"user" validate:"required"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// PaymentMethod describes how a payment is executed. Bank transfer is the
// only supported type.
type PaymentMethod struct {
	Type              string            `json:"type" validate:"required,eq=bank_transfer"`
	ProviderSelection ProviderSelection `json:"provider_selection" validate:"required"`
	Beneficiary       Beneficiary       `json:"beneficiary" validate:"required"`
}

// BankTransfer builds a bank-transfer payment method.
func BankTransfer(selection ProviderSelection, beneficiary Beneficiary) PaymentMethod {
	return PaymentMethod{
		Type:              "bank_transfer",
		ProviderSelection: selection,
		Beneficiary:       beneficiary,
	}
}

// ProviderSelection controls which banking provider executes the
// transfer: "user_selected" defers the choice to the end user,
// "preselected" pins a provider and scheme up front.
type ProviderSelection struct {
	Type       string          `json:"type" validate:"required,oneof=user_selected preselected"`
	Filter     *ProviderFilter `json:"filter,omitempty"`
	ProviderID string          `json:"provider_id,omitempty" validate:"required_if=Type preselected"`
	SchemeID   string          `json:"scheme_id,omitempty" validate:"required_if=Type preselected"`
	Remitter   *Remitter       `json:"remitter,omitempty"`
}

// UserSelected builds a provider selection resolved by the end user.
func UserSelected() ProviderSelection {
	return ProviderSelection{Type: "user_selected"}
}

// Preselected builds a provider selection pinned to one provider/scheme.
func Preselected(providerID, schemeID string) ProviderSelection {
	return ProviderSelection{Type: "preselected", ProviderID: providerID, SchemeID: schemeID}
}

// ProviderFilter narrows the providers offered to the end user.
type ProviderFilter struct {
	Countries      []string `json:"countries,omitempty"`
	ReleaseChannel string   `json:"release_channel,omitempty"`
	ProviderIDs    []string `json:"provider_ids,omitempty"`
}

// Remitter identifies the account the funds are pulled from.
type Remitter struct {
	AccountHolderName string             `json:"account_holder_name,omitempty"`
	AccountIdentifier *AccountIdentifier `json:"account_identifier,omitempty"`
}

// Beneficiary is the destination of the funds: a merchant account held
// with the platform, or an external bank account.
type Beneficiary struct {
	Type              string             `json:"type" validate:"required,oneof=merchant_account external_account"`
	MerchantAccountID string             `json:"merchant_account_id,omitempty" validate:"required_if=Type merchant_account"`
	AccountHolderName string             `json:"account_holder_name,omitempty"`
	AccountIdentifier *AccountIdentifier `json:"account_identifier,omitempty"`
	Reference         string             `json:"reference,omitempty"`
}

// MerchantAccountBeneficiary builds a beneficiary for a platform-held
// merchant account.
func MerchantAccountBeneficiary(merchantAccountID string) Beneficiary {
	return Beneficiary{Type: "merchant_account", MerchantAccountID: merchantAccountID}
}

// ExternalAccountBeneficiary builds a beneficiary for an external bank
// account.
func ExternalAccountBeneficiary(holderName string, identifier AccountIdentifier, reference string) Beneficiary {
	return Beneficiary{
		Type:              "external_account",
		AccountHolderName: holderName,
		AccountIdentifier: &identifier,
		Reference:         reference,
	}
}

// AccountIdentifier identifies a bank account in one of the supported
// schemes.
type AccountIdentifier struct {
	Type          string `json:"type" validate:"required,oneof=sort_code_account_number iban bban nrb"`
	SortCode      string `json:"sort_code,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	IBAN          string `json:"iban,omitempty"`
	BBAN          string `json:"bban,omitempty"`
	NRB           string `json:"nrb,omitempty"`
}

// SortCodeAccountNumber builds a UK sort-code / account-number identifier.
func SortCodeAccountNumber(sortCode, accountNumber string) AccountIdentifier {
	return AccountIdentifier{Type: "sort_code_account_number", SortCode: sortCode, AccountNumber: accountNumber}
}

// IBAN builds an IBAN account identifier.
func IBAN(iban string) AccountIdentifier {
	return AccountIdentifier{Type: "iban", IBAN: iban}
}

// User is the end user a payment is created on behalf of. Set ID to
// reference an existing user, or the contact fields to create one.
type User struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// CreatePaymentResponse is the result of a create-payment call.
type CreatePaymentResponse struct {
	ID            string `json:"id"`
	ResourceToken string `json:"resource_token"`
	User          struct {
		ID string `json:"id"`
	} `json:"user"`
	Status Status `json:"status"`
}

// Status is a payment lifecycle status.
type Status string

const (
	StatusAuthorizationRequired Status = "authorization_required"
	StatusAuthorizing           Status = "authorizing"
	StatusAuthorized            Status = "authorized"
	StatusExecuted              Status = "executed"
	StatusSettled               Status = "settled"
	StatusFailed                Status = "failed"
)

// Terminal reports whether the status is final: the payment will not
// transition any further.
func (s Status) Terminal() bool {
	switch s {
	case StatusExecuted, StatusSettled, StatusFailed:
		return true
	default:
		return false
	}
}

// Payment is the full state of a payment resource.
type Payment struct {
	ID            string            `json:"id"`
	AmountInMinor uint64            `json:"amount_in_minor"`
	Currency      Currency          `json:"currency"`
	User          User              `json:"user"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	CreatedAt     time.Time         `json:"created_at"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Status        Status            `json:"status"`

	// Status-dependent fields, populated per the current status.
	AuthorizationFlow *AuthorizationFlow `json:"authorization_flow,omitempty"`
	ExecutedAt        *time.Time         `json:"executed_at,omitempty"`
	SettledAt         *time.Time         `json:"settled_at,omitempty"`
	FailedAt          *time.Time         `json:"failed_at,omitempty"`
	FailureStage      string             `json:"failure_stage,omitempty"`
	FailureReason     string             `json:"failure_reason,omitempty"`
	PaymentSource     *PaymentSource     `json:"payment_source,omitempty"`
}

// PaymentSource is the account a settled payment was funded from.
type PaymentSource struct {
	ID                 string              `json:"id"`
	UserID             string              `json:"user_id,omitempty"`
	AccountIdentifiers []AccountIdentifier `json:"account_identifiers,omitempty"`
	AccountHolderName  string              `json:"account_holder_name,omitempty"`
}

// StartAuthorizationFlowRequest declares which authorization actions the
// caller can handle.
type StartAuthorizationFlowRequest struct {
	ProviderSelection *ProviderSelectionSupported `json:"provider_selection,omitempty"`
	Redirect          *RedirectSupported          `json:"redirect,omitempty"`
}

// ProviderSelectionSupported marks provider selection as a supported
// authorization action.
type ProviderSelectionSupported struct{}

// RedirectSupported marks browser redirects as a supported authorization
// action.
type RedirectSupported struct {
	ReturnURI string `json:"return_uri"`
}

// StartAuthorizationFlowResponse carries the resulting flow state.
type StartAuthorizationFlowResponse struct {
	AuthorizationFlow *AuthorizationFlow `json:"authorization_flow,omitempty"`
	Status            Status             `json:"status"`
}

// AuthorizationFlow is the in-flight authorization state of a payment.
type AuthorizationFlow struct {
	Actions *AuthorizationFlowActions `json:"actions,omitempty"`
}

// AuthorizationFlowActions holds the next action the end user must take.
type AuthorizationFlowActions struct {
	Next AuthorizationFlowAction `json:"next"`
}

/// AuthorizationFlowAction is a single authorization step: provider
// selection, a redirect to the bank, or a wait.
type AuthorizationFlowAction struct {
	Type      string     `json:"type"`
	URI       string     `json:"uri,omitempty"`
	Providers []Provider `json:"providers,omitempty"`
}

// SubmitProviderSelectionRequest carries the provider the end user chose
// in answer to a provider-selection action.
type SubmitProviderSelectionRequest struct {
	ProviderID string `json:"provider_id" validate:"required"`
}

// SubmitProviderSelectionResponse carries the flow state after the
// selection is applied.
type SubmitProviderSelectionResponse struct {
	AuthorizationFlow *AuthorizationFlow `json:"authorization_flow,omitempty"`
	Status            Status             `json:"status"`
}

// SubmitProviderReturnParametersRequest carries the query and fragment
// of the URI the provider redirected the end user back to.
type SubmitProviderReturnParametersRequest struct {
	Query    string `json:"query"`
	Fragment string `json:"fragment"`
}

// SubmitProviderReturnParametersResponse identifies the resource the
// return parameters belonged to.
type SubmitProviderReturnParametersResponse struct {
	Resource SubmitProviderReturnParametersResource `json:"resource"`
}

// SubmitProviderReturnParametersResource is the resource resolved from
// provider return parameters. Type is currently always "payment".
type SubmitProviderReturnParametersResource struct {
	Type      string `json:"type"`
	PaymentID string `json:"payment_id,omitempty"`
}

// Provider is a banking provider offered during provider selection.
type Provider struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	IconURI     string `json:"icon_uri,omitempty"`
	LogoURI     string `json:"logo_uri,omitempty"`
	BgColor     string `json:"bg_color,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}
