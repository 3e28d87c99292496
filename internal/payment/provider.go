package payment

import "context"

// IntentRequest captures what is needed to open a payment intent upstream.
// Amount is always the server-recomputed order total in minor units.
type IntentRequest struct {
	OrderID         string
	Amount          int64
	Currency        string
	ExpiresAtSec    int
	CallbackBaseURL string
}

// IntentResponse is the minimal provider answer the storefront needs to
// hand the shopper over to the hosted card page.
type IntentResponse struct {
	Provider    string
	Token       string
	RedirectURL string
	ExpiresAt   int64
}

// Provider abstracts the upstream card payment gateway.
type Provider interface {
	CreateIntent(ctx context.Context, req IntentRequest) (IntentResponse, error)
}

// ConfirmationVerifier is implemented by providers that can check a callback
// token against the one they issued for the order and amount.
type ConfirmationVerifier interface {
	VerifyConfirmation(orderID string, amount int64, token string) bool
}
