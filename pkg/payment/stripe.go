package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// StripeGateway talks to the Stripe HTTP API directly (form-encoded, Bearer
// secret key). Charges are created confirmed so the result is final when the
// call returns; webhook reconciliation is not used.
type StripeGateway struct {
	BaseURL   string
	SecretKey string
	client    *http.Client
}

func NewStripeGateway(baseURL, secretKey string) *StripeGateway {
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}
	return &StripeGateway{
		BaseURL:   baseURL,
		SecretKey: secretKey,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type stripeError struct {
	Error struct {
		Type        string `json:"type"`
		Code        string `json:"code"`
		DeclineCode string `json:"decline_code"`
		Message     string `json:"message"`
	} `json:"error"`
}

func (g *StripeGateway) post(ctx context.Context, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+g.SecretKey)
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		var se stripeError
		if err := json.NewDecoder(resp.Body).Decode(&se); err == nil {
			return mapStripeError(se)
		}
		return fmt.Errorf("gateway error: status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func mapStripeError(se stripeError) error {
	switch {
	case se.Error.DeclineCode == "insufficient_funds":
		return ErrInsufficientFunds
	case se.Error.Code == "card_declined":
		return ErrCardDeclined
	default:
		return fmt.Errorf("gateway error: %s", se.Error.Message)
	}
}

type stripeCustomer struct {
	ID string `json:"id"`
}

func (g *StripeGateway) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("name", name)
	var cust stripeCustomer
	if err := g.post(ctx, "/v1/customers", form, &cust); err != nil {
		return "", err
	}
	return cust.ID, nil
}

type stripePaymentMethod struct {
	ID   string `json:"id"`
	Card struct {
		Brand string `json:"brand"`
		Last4 string `json:"last4"`
	} `json:"card"`
}

func (g *StripeGateway) AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (*CardInfo, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	var pm stripePaymentMethod
	if err := g.post(ctx, "/v1/payment_methods/"+paymentMethodID+"/attach", form, &pm); err != nil {
		return nil, err
	}
	return &CardInfo{Brand: pm.Card.Brand, Last4: pm.Card.Last4}, nil
}

type stripePaymentIntent struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (g *StripeGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.AmountCents, 10))
	form.Set("currency", strings.ToLower(req.Currency))
	form.Set("customer", req.CustomerID)
	form.Set("payment_method", req.PaymentMethodID)
	form.Set("description", req.Description)
	form.Set("confirm", "true")
	form.Set("off_session", "true")
	if req.Reference != "" {
		form.Set("metadata[reference]", req.Reference)
	}
	var pi stripePaymentIntent
	if err := g.post(ctx, "/v1/payment_intents", form, &pi); err != nil {
		return nil, err
	}
	if pi.Status != "succeeded" {
		return nil, fmt.Errorf("%w: intent status %s", ErrCardDeclined, pi.Status)
	}
	return &ChargeResult{ProviderRef: pi.ID, Status: pi.Status}, nil
}

type stripeRefund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (g *StripeGateway) Refund(ctx context.Context, providerRef string, amountCents int64) (*RefundResult, error) {
	form := url.Values{}
	form.Set("payment_intent", providerRef)
	if amountCents > 0 {
		form.Set("amount", strconv.FormatInt(amountCents, 10))
	}
	var rf stripeRefund
	if err := g.post(ctx, "/v1/refunds", form, &rf); err != nil {
		return nil, err
	}
	return &RefundResult{ProviderRef: rf.ID, Status: rf.Status}, nil
}
