package service

import (
	"fmt"
	"time"

	"brandlink/config"
	"brandlink/internal/domain"
	"brandlink/internal/models"
)

// PayoutCheck is one rule outcome within a verification.
type PayoutCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // passed, failed, pending
	Detail string `json:"detail,omitempty"`
}

// PayoutVerification is the read-only audit result for one withdrawal.
type PayoutVerification struct {
	WithdrawalID uint          `json:"withdrawal_id"`
	OrderID      string        `json:"order_id"`
	Status       string        `json:"status"` // passed, failed, pending
	Checks       []PayoutCheck `json:"checks"`
}

// PayoutAuditor cross-checks withdrawals against the creator's bank account
// on file, amount bounds, transaction references and processing-time bounds.
// Pure read-side reconciliation: no side effects.
type PayoutAuditor struct {
	cfg *config.PaymentConfig
}

func NewPayoutAuditor(cfg *config.PaymentConfig) *PayoutAuditor {
	return &PayoutAuditor{cfg: cfg}
}

// Verify audits one withdrawal. bank may be nil when the creator has no
// account on file (itself a failure).
func (a *PayoutAuditor) Verify(w *models.Withdrawal, bank *models.BankAccount, now time.Time) PayoutVerification {
	v := PayoutVerification{WithdrawalID: w.ID, OrderID: w.OrderID}

	amount := PayoutCheck{Name: "amount_bounds", Status: domain.VerificationPassed}
	if w.AmountCents <= 0 || w.AmountCents > a.cfg.MaxWithdrawalCents {
		amount.Status = domain.VerificationFailed
		amount.Detail = fmt.Sprintf("amount %d outside (0, %d]", w.AmountCents, a.cfg.MaxWithdrawalCents)
	}
	v.Checks = append(v.Checks, amount)

	bankCheck := PayoutCheck{Name: "bank_details", Status: domain.VerificationPassed}
	switch {
	case bank == nil:
		bankCheck.Status = domain.VerificationFailed
		bankCheck.Detail = "no bank account on file"
	case bank.BankName != w.BankName || bank.AccountNumber != w.AccountNumber || bank.AccountName != w.AccountName:
		bankCheck.Status = domain.VerificationFailed
		bankCheck.Detail = "recorded bank details do not match the account on file"
	}
	v.Checks = append(v.Checks, bankCheck)

	ref := PayoutCheck{Name: "transaction_ref", Status: domain.VerificationPassed}
	switch w.Status {
	case domain.WithdrawalCompleted:
		if w.ProviderRef == "" {
			ref.Status = domain.VerificationFailed
			ref.Detail = "completed withdrawal has no transaction reference"
		}
	case domain.WithdrawalPending:
		ref.Status = domain.VerificationPending
	}
	v.Checks = append(v.Checks, ref)

	timing := PayoutCheck{Name: "processing_time", Status: domain.VerificationPassed}
	switch w.Status {
	case domain.WithdrawalCompleted:
		if w.CompletedAt != nil && w.CompletedAt.Sub(w.CreatedAt) > a.cfg.PayoutWindow {
			timing.Status = domain.VerificationFailed
			timing.Detail = fmt.Sprintf("processed in more than %s", a.cfg.PayoutWindow)
		}
	case domain.WithdrawalPending:
		if now.Sub(w.CreatedAt) > a.cfg.PayoutWindow {
			timing.Status = domain.VerificationFailed
			timing.Detail = fmt.Sprintf("pending for more than %s", a.cfg.PayoutWindow)
		} else {
			timing.Status = domain.VerificationPending
		}
	}
	v.Checks = append(v.Checks, timing)

	v.Status = domain.VerificationPassed
	for _, c := range v.Checks {
		if c.Status == domain.VerificationFailed {
			v.Status = domain.VerificationFailed
			break
		}
		if c.Status == domain.VerificationPending {
			v.Status = domain.VerificationPending
		}
	}
	return v
}
