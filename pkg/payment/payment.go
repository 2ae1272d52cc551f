package payment

import (
	"context"
	"errors"
)

// Typed gateway failures so callers can answer with the right status code.
var (
	ErrCardDeclined       = errors.New("card declined")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrGatewayUnavailable = errors.New("payment gateway unreachable")
)

type ChargeRequest struct {
	CustomerID      string
	PaymentMethodID string
	AmountCents     int64
	Currency        string
	Description     string
	Reference       string // merchant-side reference, e.g. contract id
}

type ChargeResult struct {
	ProviderRef string // gateway charge/intent id
	Status      string
}

type RefundResult struct {
	ProviderRef string // gateway refund id
	Status      string
}

type CardInfo struct {
	Brand string
	Last4 string
}

// Gateway wraps the card-charging API: customer creation, payment method
// attachment, synchronous charge (create+confirm) and refund.
type Gateway interface {
	CreateCustomer(ctx context.Context, email, name string) (string, error)
	AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (*CardInfo, error)
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, providerRef string, amountCents int64) (*RefundResult, error)
}
