package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"brandlink/config"
	"brandlink/internal/domain"
	"brandlink/internal/models"
	"brandlink/internal/repository"
	"brandlink/pkg/payment"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotParty             = errors.New("not a party to this contract")
	ErrContractNotActive    = errors.New("contract is not active")
	ErrContractNotCompleted = errors.New("contract is not completed")
	ErrContractTerminal     = errors.New("contract is in a terminal state")
	ErrAlreadyCharged       = errors.New("contract already charged")
	ErrNotCharged           = errors.New("contract has not been charged")
	ErrAlreadyReviewed      = errors.New("already reviewed this contract")
	ErrReviewsClosed        = errors.New("both parties have already reviewed")
	ErrDisputeClosed        = errors.New("dispute already resolved")
	ErrNoBankAccount        = errors.New("no bank account on file")
	ErrWithdrawalLimit      = errors.New("withdrawal amount out of bounds")
	ErrInvalidResolution    = errors.New("invalid dispute resolution")
)

// EscrowService drives the contract payment state machine: card charge into
// escrow, completion, the mutual-review gate releasing funds, dispute
// resolution and withdrawals. Every balance mutation runs in one DB
// transaction holding a row lock on the creator balance, paired with an
// append-only ledger entry.
type EscrowService struct {
	db           *gorm.DB
	cfg          *config.Config
	gateway      payment.Gateway
	contractRepo *repository.ContractRepository
	paymentRepo  *repository.PaymentRepository
	balanceRepo  *repository.BalanceRepository
	reviewRepo   *repository.ReviewRepository
	withdrawRepo *repository.WithdrawalRepository
	bankRepo     *repository.BankAccountRepository
	disputeRepo  *repository.DisputeRepository
	auditRepo    *repository.AuditLogRepository
	notif        *NotificationService
}

func NewEscrowService(
	db *gorm.DB,
	cfg *config.Config,
	gateway payment.Gateway,
	contractRepo *repository.ContractRepository,
	paymentRepo *repository.PaymentRepository,
	balanceRepo *repository.BalanceRepository,
	reviewRepo *repository.ReviewRepository,
	withdrawRepo *repository.WithdrawalRepository,
	bankRepo *repository.BankAccountRepository,
	disputeRepo *repository.DisputeRepository,
	auditRepo *repository.AuditLogRepository,
	notif *NotificationService,
) *EscrowService {
	return &EscrowService{
		db:           db,
		cfg:          cfg,
		gateway:      gateway,
		contractRepo: contractRepo,
		paymentRepo:  paymentRepo,
		balanceRepo:  balanceRepo,
		reviewRepo:   reviewRepo,
		withdrawRepo: withdrawRepo,
		bankRepo:     bankRepo,
		disputeRepo:  disputeRepo,
		auditRepo:    auditRepo,
		notif:        notif,
	}
}

// SplitBudget divides a contract budget into platform fee and creator share.
// The fee is rounded to the nearest cent and the creator gets the remainder,
// so fee + creator == total exactly.
func (s *EscrowService) SplitBudget(totalCents int64) (feeCents, creatorCents int64) {
	feeCents = int64(math.Round(float64(totalCents) * s.cfg.Payment.PlatformFeeRate))
	creatorCents = totalCents - feeCents
	return feeCents, creatorCents
}

// Charge bills the brand's card for the contract budget and escrows the
// creator share. The gateway call happens before any DB write: a failed
// charge leaves the contract untouched.
func (s *EscrowService) Charge(ctx context.Context, brand *models.User, contractID uint, pm *models.PaymentMethod) (*models.JobPayment, error) {
	contract, err := s.contractRepo.GetByID(contractID)
	if err != nil {
		return nil, err
	}
	if contract.BrandID != brand.ID {
		return nil, ErrNotParty
	}
	if contract.Status != domain.ContractActive {
		return nil, ErrContractNotActive
	}
	if contract.Payment != nil {
		return nil, ErrAlreadyCharged
	}

	feeCents, creatorCents := s.SplitBudget(contract.BudgetCents)
	result, err := s.gateway.Charge(ctx, payment.ChargeRequest{
		CustomerID:      brand.GatewayCustomerID,
		PaymentMethodID: pm.GatewayRef,
		AmountCents:     contract.BudgetCents,
		Currency:        contract.Currency,
		Description:     fmt.Sprintf("Contract #%d: %s", contract.ID, contract.Title),
		Reference:       fmt.Sprintf("contract-%d", contract.ID),
	})
	if err != nil {
		return nil, err
	}

	var jp *models.JobPayment
	err = s.db.Transaction(func(tx *gorm.DB) error {
		txn := &models.Transaction{
			ContractID:  contract.ID,
			BrandID:     brand.ID,
			Provider:    "stripe",
			ProviderRef: result.ProviderRef,
			AmountCents: contract.BudgetCents,
			Currency:    contract.Currency,
			Status:      "succeeded",
		}
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		jp = &models.JobPayment{
			ContractID:       contract.ID,
			TotalCents:       contract.BudgetCents,
			PlatformFeeCents: feeCents,
			CreatorCents:     creatorCents,
			Status:           domain.PaymentPending,
			TransactionID:    txn.ID,
		}
		if err := tx.Create(jp).Error; err != nil {
			return err
		}
		balance, err := s.balanceRepo.GetForUpdate(tx, contract.CreatorID, contract.Currency)
		if err != nil {
			return err
		}
		balance.PendingCents += creatorCents
		balance.TotalEarnedCents += creatorCents
		if err := s.balanceRepo.Save(tx, balance); err != nil {
			return err
		}
		cid := contract.ID
		return s.balanceRepo.AppendLedger(tx, &models.LedgerEntry{
			CreatorID:   contract.CreatorID,
			ContractID:  &cid,
			Type:        domain.LedgerCharge,
			AmountCents: creatorCents,
			Reference:   result.ProviderRef,
		})
	})
	if err != nil {
		return nil, err
	}
	_ = s.notif.NotifyEscrowFunded(contract.CreatorID, contract.ID, creatorCents)
	return jp, nil
}

// Complete marks the contract completed (creator submits work) and enters
// the waiting_review workflow state. Requires a prior charge: escrow must be
// funded before work is accepted.
func (s *EscrowService) Complete(creatorID, contractID uint, deliverableURL string) (*models.Contract, error) {
	contract, err := s.contractRepo.GetByID(contractID)
	if err != nil {
		return nil, err
	}
	if contract.CreatorID != creatorID {
		return nil, ErrNotParty
	}
	if contract.Status != domain.ContractActive {
		return nil, ErrContractNotActive
	}
	if contract.Payment == nil || contract.Payment.Status != domain.PaymentPending {
		return nil, ErrNotCharged
	}
	now := time.Now()
	contract.Status = domain.ContractCompleted
	contract.WorkflowStatus = domain.WorkflowWaitingReview
	contract.CompletedAt = &now
	if deliverableURL != "" {
		contract.DeliverableURL = deliverableURL
	}
	if err := s.contractRepo.Update(contract); err != nil {
		return nil, err
	}
	_ = s.notif.NotifyWorkSubmitted(contract.BrandID, contract.ID)
	return contract, nil
}

// SubmitReview records a review for a completed contract. The second review
// releases escrowed funds: JobPayment pending->paid and the creator share
// moves pending->available atomically.
func (s *EscrowService) SubmitReview(reviewerID, contractID uint, rating int, comment string) (*models.Review, bool, error) {
	contract, err := s.contractRepo.GetByID(contractID)
	if err != nil {
		return nil, false, err
	}
	if !contract.IsParty(reviewerID) {
		return nil, false, ErrNotParty
	}
	if contract.Status != domain.ContractCompleted {
		return nil, false, ErrContractNotCompleted
	}
	if _, err := s.reviewRepo.GetByContractAndReviewer(contractID, reviewerID); err == nil {
		return nil, false, ErrAlreadyReviewed
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	both, err := s.reviewRepo.HasBothReviews(contractID, contract.BrandID, contract.CreatorID)
	if err != nil {
		return nil, false, err
	}
	if both {
		return nil, false, ErrReviewsClosed
	}

	review := &models.Review{
		ContractID: contractID,
		ReviewerID: reviewerID,
		ReviewedID: contract.Counterparty(reviewerID),
		Rating:     rating,
		Comment:    comment,
	}
	// unique index on (contract_id, reviewer_id) backstops concurrent duplicates
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, false, ErrAlreadyReviewed
	}
	_ = s.notif.NotifyReviewReceived(review.ReviewedID, contract.ID)

	both, err = s.reviewRepo.HasBothReviews(contractID, contract.BrandID, contract.CreatorID)
	if err != nil || !both {
		return review, false, err
	}
	released, err := s.release(contract)
	if err != nil {
		return review, false, err
	}
	return review, released, nil
}

// release moves the creator share pending->available under a balance row
// lock. Idempotent: a payment that is no longer pending (already released by
// a racing request, or refunded) is left alone.
func (s *EscrowService) release(contract *models.Contract) (bool, error) {
	released := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		balance, err := s.balanceRepo.GetForUpdate(tx, contract.CreatorID, contract.Currency)
		if err != nil {
			return err
		}
		var jp models.JobPayment
		if err := tx.Where("contract_id = ?", contract.ID).First(&jp).Error; err != nil {
			// no escrow to release (e.g. an admin completed an uncharged
			// contract); reviews stand on their own
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if jp.Status != domain.PaymentPending {
			return nil
		}
		now := time.Now()
		jp.Status = domain.PaymentPaid
		jp.PaidAt = &now
		if err := tx.Save(&jp).Error; err != nil {
			return err
		}
		balance.PendingCents -= jp.CreatorCents
		balance.AvailableCents += jp.CreatorCents
		if err := s.balanceRepo.Save(tx, balance); err != nil {
			return err
		}
		cid := contract.ID
		if err := s.balanceRepo.AppendLedger(tx, &models.LedgerEntry{
			CreatorID:   contract.CreatorID,
			ContractID:  &cid,
			Type:        domain.LedgerRelease,
			AmountCents: jp.CreatorCents,
			Reference:   fmt.Sprintf("contract-%d", contract.ID),
		}); err != nil {
			return err
		}
		if err := tx.Model(&models.Contract{}).Where("id = ?", contract.ID).
			Update("workflow_status", domain.WorkflowPaymentAvailable).Error; err != nil {
			return err
		}
		released = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if released {
		if jp, err := s.paymentRepo.GetByContractID(contract.ID); err == nil {
			_ = s.notif.NotifyFundsReleased(contract.CreatorID, contract.ID, jp.CreatorCents)
		}
	}
	return released, nil
}

// OpenDispute flags a contract as disputed. Allowed from any non-terminal
// state; the prior workflow status is preserved for when the dispute
// resolves back into the normal flow.
func (s *EscrowService) OpenDispute(userID, contractID uint, reason string) (*models.Dispute, error) {
	contract, err := s.contractRepo.GetByID(contractID)
	if err != nil {
		return nil, err
	}
	if !contract.IsParty(userID) {
		return nil, ErrNotParty
	}
	if contract.Status == domain.ContractCancelled || contract.WorkflowStatus == domain.WorkflowPaymentWithdrawn {
		return nil, ErrContractTerminal
	}
	if contract.Status == domain.ContractDisputed {
		if d, err := s.disputeRepo.GetOpenByContractID(contractID); err == nil {
			return d, nil
		}
	}
	contract.Status = domain.ContractDisputed
	if err := s.contractRepo.Update(contract); err != nil {
		return nil, err
	}
	dispute := &models.Dispute{
		ContractID: contractID,
		OpenedByID: userID,
		Reason:     reason,
		Status:     domain.DisputeOpen,
	}
	if err := s.disputeRepo.Create(dispute); err != nil {
		return nil, err
	}
	_ = s.notif.NotifyDisputeOpened(contract.Counterparty(userID), contract.ID)
	return dispute, nil
}

// ResolveDispute is the admin override. Resolutions run through the ledger
// as compensating transactions rather than bare status flips:
//   - complete, or refund won by the brand: contract re-enters the normal
//     flow (completed / waiting_review).
//   - cancel, or refund won by the creator: contract is cancelled and, if
//     escrow is still held, the gateway charge is refunded to the brand and
//     a REFUND ledger entry reverses the pending amount.
func (s *EscrowService) ResolveDispute(ctx context.Context, adminID, disputeID uint, resolution, winner, reason string) (*models.Dispute, error) {
	dispute, err := s.disputeRepo.GetByID(disputeID)
	if err != nil {
		return nil, err
	}
	if dispute.Status != domain.DisputeOpen {
		return nil, ErrDisputeClosed
	}
	contract, err := s.contractRepo.GetByID(dispute.ContractID)
	if err != nil {
		return nil, err
	}

	cancel := false
	switch resolution {
	case domain.ResolutionComplete:
	case domain.ResolutionCancel:
		cancel = true
	case domain.ResolutionRefund:
		// refund won by the brand completes the contract and re-enters the
		// normal flow; won by the creator (or platform) it cancels, money
		// back to the brand
		cancel = winner != domain.WinnerBrand
	default:
		return nil, ErrInvalidResolution
	}

	now := time.Now()
	if cancel {
		if err := s.cancelWithRefund(ctx, contract, now); err != nil {
			return nil, err
		}
	} else {
		contract.Status = domain.ContractCompleted
		if contract.CompletedAt == nil {
			contract.CompletedAt = &now
		}
		if contract.Payment != nil && contract.Payment.Status == domain.PaymentPaid {
			contract.WorkflowStatus = domain.WorkflowPaymentAvailable
		} else {
			contract.WorkflowStatus = domain.WorkflowWaitingReview
		}
		if err := s.contractRepo.Update(contract); err != nil {
			return nil, err
		}
	}

	dispute.Status = domain.DisputeResolved
	dispute.Resolution = resolution
	dispute.Winner = winner
	dispute.ResolutionReason = reason
	dispute.ResolvedByID = &adminID
	dispute.ResolvedAt = &now
	if err := s.disputeRepo.Update(dispute); err != nil {
		return nil, err
	}
	_ = s.auditRepo.Log(adminID, "dispute.resolve", dispute.ID, map[string]interface{}{
		"contract_id": contract.ID,
		"resolution":  resolution,
		"winner":      winner,
		"reason":      reason,
	})
	_ = s.notif.NotifyDisputeResolved(contract.BrandID, contract.ID, resolution)
	_ = s.notif.NotifyDisputeResolved(contract.CreatorID, contract.ID, resolution)
	return dispute, nil
}

// cancelWithRefund cancels the contract and unwinds still-escrowed funds.
// Funds already released to the creator are not clawed back automatically;
// that case is logged for a manual ledger adjustment.
func (s *EscrowService) cancelWithRefund(ctx context.Context, contract *models.Contract, now time.Time) error {
	jp := contract.Payment
	if jp != nil && jp.Status == domain.PaymentPaid {
		log.Printf("[Escrow] contract %d cancelled after release; manual adjustment required", contract.ID)
	}
	var refund *payment.RefundResult
	if jp != nil && jp.Status == domain.PaymentPending {
		txn, err := s.paymentRepo.GetTransactionByID(jp.TransactionID)
		if err != nil {
			return err
		}
		refund, err = s.gateway.Refund(ctx, txn.ProviderRef, jp.TotalCents)
		if err != nil {
			return err
		}
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		contract.Status = domain.ContractCancelled
		contract.CancelledAt = &now
		if err := tx.Model(&models.Contract{}).Where("id = ?", contract.ID).
			Updates(map[string]interface{}{"status": domain.ContractCancelled, "cancelled_at": now}).Error; err != nil {
			return err
		}
		if jp == nil || jp.Status != domain.PaymentPending {
			return nil
		}
		jp.Status = domain.PaymentRefunded
		jp.RefundedAt = &now
		if err := tx.Save(jp).Error; err != nil {
			return err
		}
		if refund != nil {
			if err := tx.Model(&models.Transaction{}).Where("id = ?", jp.TransactionID).
				Updates(map[string]interface{}{"status": "refunded", "refund_ref": refund.ProviderRef}).Error; err != nil {
				return err
			}
		}
		balance, err := s.balanceRepo.GetForUpdate(tx, contract.CreatorID, contract.Currency)
		if err != nil {
			return err
		}
		balance.PendingCents -= jp.CreatorCents
		balance.TotalEarnedCents -= jp.CreatorCents
		if err := s.balanceRepo.Save(tx, balance); err != nil {
			return err
		}
		cid := contract.ID
		ref := ""
		if refund != nil {
			ref = refund.ProviderRef
		}
		return s.balanceRepo.AppendLedger(tx, &models.LedgerEntry{
			CreatorID:   contract.CreatorID,
			ContractID:  &cid,
			Type:        domain.LedgerRefund,
			AmountCents: -jp.CreatorCents,
			Reference:   ref,
		})
	})
}

// Withdraw moves released funds available->withdrawn and records a PENDING
// withdrawal against the creator's bank account on file. Contracts whose
// funds are now out advance to payment_withdrawn.
func (s *EscrowService) Withdraw(creatorID uint, amountCents int64) (*models.Withdrawal, error) {
	if amountCents <= 0 || amountCents > s.cfg.Payment.MaxWithdrawalCents {
		return nil, ErrWithdrawalLimit
	}
	bank, err := s.bankRepo.GetByCreatorID(creatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoBankAccount
		}
		return nil, err
	}
	w := &models.Withdrawal{
		CreatorID:     creatorID,
		OrderID:       fmt.Sprintf("wd-%s", uuid.New().String()),
		AmountCents:   amountCents,
		BankName:      bank.BankName,
		AccountNumber: bank.AccountNumber,
		AccountName:   bank.AccountName,
		Status:        domain.WithdrawalPending,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		balance, err := s.balanceRepo.GetForUpdate(tx, creatorID, s.cfg.Payment.Currency)
		if err != nil {
			return err
		}
		if balance.AvailableCents < amountCents {
			return repository.ErrInsufficientBalance
		}
		balance.AvailableCents -= amountCents
		balance.TotalWithdrawnCents += amountCents
		if err := s.balanceRepo.Save(tx, balance); err != nil {
			return err
		}
		if err := s.withdrawRepo.Create(tx, w); err != nil {
			return err
		}
		if err := s.balanceRepo.AppendLedger(tx, &models.LedgerEntry{
			CreatorID:   creatorID,
			Type:        domain.LedgerWithdraw,
			AmountCents: -amountCents,
			Reference:   w.OrderID,
		}); err != nil {
			return err
		}
		return s.contractRepo.MarkWithdrawn(tx, creatorID)
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// SettleWithdrawal marks a pending withdrawal COMPLETED with the payout
// rail's transaction reference. Admin only.
func (s *EscrowService) SettleWithdrawal(adminID, withdrawalID uint, providerRef string) (*models.Withdrawal, error) {
	w, err := s.withdrawRepo.GetByID(withdrawalID)
	if err != nil {
		return nil, err
	}
	if w.Status != domain.WithdrawalPending {
		return nil, fmt.Errorf("withdrawal not pending")
	}
	now := time.Now()
	w.Status = domain.WithdrawalCompleted
	w.ProviderRef = providerRef
	w.CompletedAt = &now
	if err := s.withdrawRepo.Update(nil, w); err != nil {
		return nil, err
	}
	_ = s.auditRepo.Log(adminID, "withdrawal.settle", w.ID, map[string]interface{}{
		"order_id":     w.OrderID,
		"provider_ref": providerRef,
	})
	_ = s.notif.NotifyWithdrawalSettled(w.CreatorID, w.OrderID, w.Status)
	return w, nil
}

// FailWithdrawal marks a pending withdrawal FAILED and returns the funds to
// the creator's available balance with a compensating ledger entry.
func (s *EscrowService) FailWithdrawal(adminID, withdrawalID uint, reason string) (*models.Withdrawal, error) {
	w, err := s.withdrawRepo.GetByID(withdrawalID)
	if err != nil {
		return nil, err
	}
	if w.Status != domain.WithdrawalPending {
		return nil, fmt.Errorf("withdrawal not pending")
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		w.Status = domain.WithdrawalFailed
		w.FailureReason = reason
		if err := s.withdrawRepo.Update(tx, w); err != nil {
			return err
		}
		balance, err := s.balanceRepo.GetForUpdate(tx, w.CreatorID, s.cfg.Payment.Currency)
		if err != nil {
			return err
		}
		balance.AvailableCents += w.AmountCents
		balance.TotalWithdrawnCents -= w.AmountCents
		if err := s.balanceRepo.Save(tx, balance); err != nil {
			return err
		}
		return s.balanceRepo.AppendLedger(tx, &models.LedgerEntry{
			CreatorID:   w.CreatorID,
			Type:        domain.LedgerAdjustment,
			AmountCents: w.AmountCents,
			Reference:   w.OrderID,
		})
	})
	if err != nil {
		return nil, err
	}
	_ = s.auditRepo.Log(adminID, "withdrawal.fail", w.ID, map[string]interface{}{
		"order_id": w.OrderID,
		"reason":   reason,
	})
	_ = s.notif.NotifyWithdrawalSettled(w.CreatorID, w.OrderID, w.Status)
	return w, nil
}
