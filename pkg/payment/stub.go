package payment

import (
	"context"
	"fmt"
	"sync/atomic"
)

// StubGateway is an in-memory gateway for development and tests. Every call
// succeeds unless FailWith is set.
type StubGateway struct {
	FailWith error
	seq      atomic.Int64
}

func (s *StubGateway) ref(prefix string) string {
	return fmt.Sprintf("%s_stub_%d", prefix, s.seq.Add(1))
}

func (s *StubGateway) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	if s.FailWith != nil {
		return "", s.FailWith
	}
	return s.ref("cus"), nil
}

func (s *StubGateway) AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (*CardInfo, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	return &CardInfo{Brand: "visa", Last4: "4242"}, nil
}

func (s *StubGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	return &ChargeResult{ProviderRef: s.ref("pi"), Status: "succeeded"}, nil
}

func (s *StubGateway) Refund(ctx context.Context, providerRef string, amountCents int64) (*RefundResult, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	return &RefundResult{ProviderRef: s.ref("re"), Status: "succeeded"}, nil
}
