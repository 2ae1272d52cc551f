package service

import (
	"context"
	"fmt"
	"testing"

	"brandlink/config"
	"brandlink/internal/database"
	"brandlink/internal/domain"
	"brandlink/internal/models"
	"brandlink/internal/repository"
	"brandlink/pkg/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type escrowFixture struct {
	db      *gorm.DB
	svc     *EscrowService
	stub    *payment.StubGateway
	cfg     *config.Config
	brand   *models.User
	creator *models.User
	pmSeq   int
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newEscrowFixture(t *testing.T) *escrowFixture {
	t.Helper()
	db := newTestDB(t)
	cfg := config.Load()
	stub := &payment.StubGateway{}

	notifSvc := NewNotificationService(repository.NewNotificationRepository(db), nil)
	svc := NewEscrowService(db, cfg, stub,
		repository.NewContractRepository(db),
		repository.NewPaymentRepository(db),
		repository.NewBalanceRepository(db),
		repository.NewReviewRepository(db),
		repository.NewWithdrawalRepository(db),
		repository.NewBankAccountRepository(db),
		repository.NewDisputeRepository(db),
		repository.NewAuditLogRepository(db),
		notifSvc)

	f := &escrowFixture{db: db, svc: svc, stub: stub, cfg: cfg}
	f.brand = f.createUser(t, "brand@test.io", domain.RoleBrand)
	f.creator = f.createUser(t, "creator@test.io", domain.RoleCreator)
	return f
}

func (f *escrowFixture) createUser(t *testing.T, email, role string) *models.User {
	t.Helper()
	u := &models.User{
		Email:             email,
		Username:          email,
		Role:              role,
		GatewayCustomerID: "cus_test",
	}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *escrowFixture) createContract(t *testing.T, budgetCents int64) *models.Contract {
	t.Helper()
	c := &models.Contract{
		BrandID:        f.brand.ID,
		CreatorID:      f.creator.ID,
		Title:          "Spring campaign",
		BudgetCents:    budgetCents,
		Currency:       "USD",
		Status:         domain.ContractActive,
		WorkflowStatus: domain.WorkflowActive,
	}
	require.NoError(t, f.db.Create(c).Error)
	return c
}

func (f *escrowFixture) paymentMethod(t *testing.T) *models.PaymentMethod {
	t.Helper()
	f.pmSeq++
	pm := &models.PaymentMethod{
		BrandID:    f.brand.ID,
		GatewayRef: fmt.Sprintf("pm_%s_%d", t.Name(), f.pmSeq),
		CardBrand:  "visa",
		Last4:      "4242",
		IsDefault:  true,
	}
	require.NoError(t, f.db.Create(pm).Error)
	return pm
}

func (f *escrowFixture) balance(t *testing.T) *models.CreatorBalance {
	t.Helper()
	var b models.CreatorBalance
	require.NoError(t, f.db.Where("creator_id = ?", f.creator.ID).First(&b).Error)
	require.True(t, b.Consistent(), "balance invariant broken: %+v", b)
	return &b
}

func (f *escrowFixture) charge(t *testing.T, contractID uint) *models.JobPayment {
	t.Helper()
	jp, err := f.svc.Charge(context.Background(), f.brand, contractID, f.paymentMethod(t))
	require.NoError(t, err)
	return jp
}

func (f *escrowFixture) complete(t *testing.T, contractID uint) {
	t.Helper()
	_, err := f.svc.Complete(f.creator.ID, contractID, "https://cdn.test/deliverable.zip")
	require.NoError(t, err)
}

func (f *escrowFixture) addBankAccount(t *testing.T) *models.BankAccount {
	t.Helper()
	b := &models.BankAccount{
		CreatorID:     f.creator.ID,
		BankName:      "First Test Bank",
		AccountNumber: "0011223344",
		AccountName:   "Creator Person",
	}
	require.NoError(t, f.db.Create(b).Error)
	return b
}

func (f *escrowFixture) ledgerEntries(t *testing.T, entryType string) []models.LedgerEntry {
	t.Helper()
	var list []models.LedgerEntry
	require.NoError(t, f.db.Where("creator_id = ? AND type = ?", f.creator.ID, entryType).Find(&list).Error)
	return list
}

func TestSplitBudget(t *testing.T) {
	f := newEscrowFixture(t)
	cases := []struct {
		total, fee, creator int64
	}{
		{100_000, 5_000, 95_000},
		{999, 50, 949},
		{10, 1, 9},
		{1, 0, 1},
	}
	for _, tc := range cases {
		fee, creator := f.svc.SplitBudget(tc.total)
		assert.Equal(t, tc.fee, fee, "total %d", tc.total)
		assert.Equal(t, tc.creator, creator, "total %d", tc.total)
		assert.Equal(t, tc.total, fee+creator, "split must be exact for %d", tc.total)
	}
}

func TestChargeEscrowsCreatorShare(t *testing.T) {
	f := newEscrowFixture(t)
	contract := f.createContract(t, 100_000)

	jp := f.charge(t, contract.ID)
	assert.Equal(t, domain.PaymentPending, jp.Status)
	assert.Equal(t, int64(5_000), jp.PlatformFeeCents)
	assert.Equal(t, int64(95_000), jp.CreatorCents)

	b := f.balance(t)
	assert.Equal(t, int64(95_000), b.PendingCents)
	assert.Equal(t, int64(95_000), b.TotalEarnedCents)
	assert.Zero(t, b.AvailableCents)

	entries := f.ledgerEntries(t, domain.LedgerCharge)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(95_000), entries[0].AmountCents)
}

func TestChargeDeclinedLeavesContractUntouched(t *testing.T) {
	f := newEscrowFixture(t)
	contract := f.createContract(t, 100_000)
	f.stub.FailWith = payment.ErrCardDeclined

	_, err := f.svc.Charge(context.Background(), f.brand, contract.ID, f.paymentMethod(t))
	require.ErrorIs(t, err, payment.ErrCardDeclined)

	var payments int64
	f.db.Model(&models.JobPayment{}).Where("contract_id = ?", contract.ID).Count(&payments)
	assert.Zero(t, payments)
	var balances int64
	f.db.Model(&models.CreatorBalance{}).Where("creator_id = ?", f.creator.ID).Count(&balances)
	assert.Zero(t, balances)
}

func TestChargeTwiceRejected(t *testing.T) {
	f := newEscrowFixture(t)
	contract := f.createContract(t, 50_000)
	f.charge(t, contract.ID)

	_, err := f.svc.Charge(context.Background(), f.brand, contract.ID, f.paymentMethod(t))
	assert.ErrorIs(t, err, ErrAlreadyCharged)
}

func TestChargeByNonBrandRejected(t *testing.T) {
	f := newEscrowFixture(t)
	contract := f.createContract(t, 50_000)
	outsider := f.createUser(t, "other@test.io", domain.RoleBrand)

	_, err := f.svc.Charge(context.Background(), outsider, contract.ID, f.paymentMethod(t))
	assert.ErrorIs(t, err, ErrNotParty)
}

func TestCompleteRequiresCharge(t *testing.T) {
	f := newEscrowFixture(t)
	contract := f.createContract(t, 50_000)

	_, err := f.svc.Complete(f.creator.ID, contract.ID, "")
	assert.ErrorIs(t, err, ErrNotCharged)
}

func TestCompleteEntersWaitingReview(t *testing.T) {
	f := newEscrowFixture(t)
	contract := f.createContract(t, 50_000)
	f.charge(t, contract.ID)

	updated, err := f.svc.Complete(f.creator.ID, contract.ID, "https://cdn.test/final.mp4")
	require.NoError(t, err)
	assert.Equal(t, domain.ContractCompleted, updated.Status)
	assert.Equal(t, domain.WorkflowWaitingReview, updated.WorkflowStatus)
	assert.NotNil(t, updated.CompletedAt)
	assert.Equal(t, "https://cdn.test/final.mp4", updated.DeliverableURL)
}

func TestReviewGateReleasesFunds(t *testing.T) {
	f := newEscrowFixture(t)
	contract := f.createContract(t, 100_000)
	f.charge(t, contract.ID)
	f.complete(t, contract.ID)

	// first review does not release
	_, released, err := f.svc.SubmitReview(f.brand.ID, contract.ID, 5, "great work")
	require.NoError(t, err)
	assert.False(t, released)
	b := f.balance(t)
	assert.Equal(t, int64(95_000), b.PendingCents)
	assert.Zero(t, b.AvailableCents)

	// second review releases
	_, released, err = f.svc.SubmitReview(f.creator.ID, contract.ID, 4, "good client")
	require.NoError(t, err)
	assert.True(t, released)

	b = f.balance(t)
	assert.Zero(t, b.PendingCents)
	assert.Equal(t, int64(95_000), b.AvailableCents)

	var jp models.JobPayment
	require.NoError(t, f.db.Where("contract_id = ?", contract.ID).First(&jp).Error)
	assert.Equal(t, domain.PaymentPaid, jp.Status)
	assert.NotNil(t, jp.PaidAt)

	var reloaded models.Contract
	require.NoError(t, f.db.First(&reloaded, contract.ID).Error)
	assert.Equal(t, domain.WorkflowPaymentAvailable, reloaded.WorkflowStatus)

	entries := f.ledgerEntries(t, domain.LedgerRelease)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(95_000), entries[0].AmountCents)
}

func TestDuplicateReviewRejected(t *testing.T) {
	f := newEscrowFixture(t)
	contract := f.createContract(t, 100_000)
	f.charge(t, contract.ID)
	f.complete(t, contract.ID)

	_, _, err := f.svc.SubmitReview(f.brand.ID, contract.ID, 5, "")
	require.NoError(t, err)
	_, _, err = f.svc.SubmitReview(f.brand.ID, contract.ID, 1, "changed my mind")
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	// funds untouched
	b := f.balance(t)
	assert.Equal(t, int64(95_000), b.PendingCents)
	assert.Zero(t, b.AvailableCents)
}

func TestReviewBeforeCompletionRejected(t *testing.T) {
	f := newEscrowFixture(t)
	contract := f.createContract(t, 100_000)
	f.charge(t, contract.ID)

	_, _, err := f.svc.SubmitReview(f.brand.ID, contract.ID, 5, "")
	assert.ErrorIs(t, err, ErrContractNotCompleted)
}

func TestReviewByOutsiderRejected(t *testing.T) {
	f := newEscrowFixture(t)
	contract := f.createContract(t, 100_000)
	f.charge(t, contract.ID)
	f.complete(t, contract.ID)
	outsider := f.createUser(t, "nobody@test.io", domain.RoleCreator)

	_, _, err := f.svc.SubmitReview(outsider.ID, contract.ID, 5, "")
	assert.ErrorIs(t, err, ErrNotParty)
}

func TestOpenDispute(t *testing.T) {
	f := newEscrowFixture(t)
	contract := f.createContract(t, 100_000)
	f.charge(t, contract.ID)

	d, err := f.svc.OpenDispute(f.creator.ID, contract.ID, "brand unreachable")
	require.NoError(t, err)
	assert.Equal(t, domain.DisputeOpen, d.Status)

	var reloaded models.Contract
	require.NoError(t, f.db.First(&reloaded, contract.ID).Error)
	assert.Equal(t, domain.ContractDisputed, reloaded.Status)

	// opening again returns the existing open dispute
	again, err := f.svc.OpenDispute(f.brand.ID, contract.ID, "me too")
	require.NoError(t, err)
	assert.Equal(t, d.ID, again.ID)
}

func TestResolveDisputeCancelRefundsEscrow(t *testing.T) {
	f := newEscrowFixture(t)
	admin := f.createUser(t, "admin@test.io", domain.RoleAdmin)
	contract := f.createContract(t, 100_000)
	f.charge(t, contract.ID)
	d, err := f.svc.OpenDispute(f.brand.ID, contract.ID, "work never delivered")
	require.NoError(t, err)

	resolved, err := f.svc.ResolveDispute(context.Background(), admin.ID, d.ID, domain.ResolutionCancel, domain.WinnerBrand, "no deliverable")
	require.NoError(t, err)
	assert.Equal(t, domain.DisputeResolved, resolved.Status)

	var reloaded models.Contract
	require.NoError(t, f.db.First(&reloaded, contract.ID).Error)
	assert.Equal(t, domain.ContractCancelled, reloaded.Status)

	var jp models.JobPayment
	require.NoError(t, f.db.Where("contract_id = ?", contract.ID).First(&jp).Error)
	assert.Equal(t, domain.PaymentRefunded, jp.Status)

	b := f.balance(t)
	assert.Zero(t, b.PendingCents)
	assert.Zero(t, b.TotalEarnedCents)

	entries := f.ledgerEntries(t, domain.LedgerRefund)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(-95_000), entries[0].AmountCents)
}

func TestResolveDisputeRefundWonByCreatorCancels(t *testing.T) {
	f := newEscrowFixture(t)
	admin := f.createUser(t, "admin@test.io", domain.RoleAdmin)
	contract := f.createContract(t, 100_000)
	f.charge(t, contract.ID)
	d, err := f.svc.OpenDispute(f.creator.ID, contract.ID, "scope blew up")
	require.NoError(t, err)

	_, err = f.svc.ResolveDispute(context.Background(), admin.ID, d.ID, domain.ResolutionRefund, domain.WinnerCreator, "mutual walk-away")
	require.NoError(t, err)

	var reloaded models.Contract
	require.NoError(t, f.db.First(&reloaded, contract.ID).Error)
	assert.Equal(t, domain.ContractCancelled, reloaded.Status)
	f.balance(t) // invariant still holds
}

func TestResolveDisputeRefundWonByBrandCompletes(t *testing.T) {
	f := newEscrowFixture(t)
	admin := f.createUser(t, "admin@test.io", domain.RoleAdmin)
	contract := f.createContract(t, 100_000)
	f.charge(t, contract.ID)
	d, err := f.svc.OpenDispute(f.brand.ID, contract.ID, "late delivery")
	require.NoError(t, err)

	_, err = f.svc.ResolveDispute(context.Background(), admin.ID, d.ID, domain.ResolutionRefund, domain.WinnerBrand, "delivered after all")
	require.NoError(t, err)

	// refund won by the brand re-enters the normal flow, no money moves
	var reloaded models.Contract
	require.NoError(t, f.db.First(&reloaded, contract.ID).Error)
	assert.Equal(t, domain.ContractCompleted, reloaded.Status)
	assert.Equal(t, domain.WorkflowWaitingReview, reloaded.WorkflowStatus)

	var jp models.JobPayment
	require.NoError(t, f.db.Where("contract_id = ?", contract.ID).First(&jp).Error)
	assert.Equal(t, domain.PaymentPending, jp.Status)

	b := f.balance(t)
	assert.Equal(t, int64(95_000), b.PendingCents)
	assert.Zero(t, b.AvailableCents)

	// the review gate still releases afterwards
	_, _, err = f.svc.SubmitReview(f.brand.ID, contract.ID, 4, "")
	require.NoError(t, err)
	_, released, err := f.svc.SubmitReview(f.creator.ID, contract.ID, 5, "")
	require.NoError(t, err)
	assert.True(t, released)
}

func TestResolveDisputeCompleteReentersFlow(t *testing.T) {
	f := newEscrowFixture(t)
	admin := f.createUser(t, "admin@test.io", domain.RoleAdmin)
	contract := f.createContract(t, 100_000)
	f.charge(t, contract.ID)
	d, err := f.svc.OpenDispute(f.brand.ID, contract.ID, "quality concerns")
	require.NoError(t, err)

	_, err = f.svc.ResolveDispute(context.Background(), admin.ID, d.ID, domain.ResolutionComplete, "", "work meets the brief")
	require.NoError(t, err)

	var reloaded models.Contract
	require.NoError(t, f.db.First(&reloaded, contract.ID).Error)
	assert.Equal(t, domain.ContractCompleted, reloaded.Status)
	assert.Equal(t, domain.WorkflowWaitingReview, reloaded.WorkflowStatus)

	// escrow untouched: still pending until both reviews land
	b := f.balance(t)
	assert.Equal(t, int64(95_000), b.PendingCents)
}

func TestReviewsAfterCompleteResolutionWithoutCharge(t *testing.T) {
	f := newEscrowFixture(t)
	admin := f.createUser(t, "admin@test.io", domain.RoleAdmin)
	contract := f.createContract(t, 100_000)
	// disputed before the brand ever charged
	d, err := f.svc.OpenDispute(f.creator.ID, contract.ID, "brand refuses to fund")
	require.NoError(t, err)
	_, err = f.svc.ResolveDispute(context.Background(), admin.ID, d.ID, domain.ResolutionComplete, "", "work was done off-platform")
	require.NoError(t, err)

	// both reviews land; with no escrow there is nothing to release and no error
	_, _, err = f.svc.SubmitReview(f.brand.ID, contract.ID, 3, "")
	require.NoError(t, err)
	_, released, err := f.svc.SubmitReview(f.creator.ID, contract.ID, 2, "")
	require.NoError(t, err)
	assert.False(t, released)

	var count int64
	f.db.Model(&models.LedgerEntry{}).Where("creator_id = ?", f.creator.ID).Count(&count)
	assert.Zero(t, count)
}

func TestResolveClosedDisputeRejected(t *testing.T) {
	f := newEscrowFixture(t)
	admin := f.createUser(t, "admin@test.io", domain.RoleAdmin)
	contract := f.createContract(t, 100_000)
	f.charge(t, contract.ID)
	d, err := f.svc.OpenDispute(f.brand.ID, contract.ID, "reason")
	require.NoError(t, err)
	_, err = f.svc.ResolveDispute(context.Background(), admin.ID, d.ID, domain.ResolutionComplete, "", "done")
	require.NoError(t, err)

	_, err = f.svc.ResolveDispute(context.Background(), admin.ID, d.ID, domain.ResolutionCancel, "", "again")
	assert.ErrorIs(t, err, ErrDisputeClosed)
}

func TestResolveDisputeInvalidResolution(t *testing.T) {
	f := newEscrowFixture(t)
	admin := f.createUser(t, "admin@test.io", domain.RoleAdmin)
	contract := f.createContract(t, 100_000)
	f.charge(t, contract.ID)
	d, err := f.svc.OpenDispute(f.brand.ID, contract.ID, "reason")
	require.NoError(t, err)

	_, err = f.svc.ResolveDispute(context.Background(), admin.ID, d.ID, "split-the-difference", "", "")
	assert.ErrorIs(t, err, ErrInvalidResolution)
}

func releaseFunds(t *testing.T, f *escrowFixture, contractID uint) {
	t.Helper()
	f.complete(t, contractID)
	_, _, err := f.svc.SubmitReview(f.brand.ID, contractID, 5, "")
	require.NoError(t, err)
	_, released, err := f.svc.SubmitReview(f.creator.ID, contractID, 5, "")
	require.NoError(t, err)
	require.True(t, released)
}

func TestWithdrawRequiresBankAccount(t *testing.T) {
	f := newEscrowFixture(t)
	contract := f.createContract(t, 100_000)
	f.charge(t, contract.ID)
	releaseFunds(t, f, contract.ID)

	_, err := f.svc.Withdraw(f.creator.ID, 10_000)
	assert.ErrorIs(t, err, ErrNoBankAccount)
}

func TestWithdrawMovesAvailableToWithdrawn(t *testing.T) {
	f := newEscrowFixture(t)
	contract := f.createContract(t, 100_000)
	f.charge(t, contract.ID)
	releaseFunds(t, f, contract.ID)
	bank := f.addBankAccount(t)

	w, err := f.svc.Withdraw(f.creator.ID, 50_000)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalPending, w.Status)
	assert.Equal(t, bank.AccountNumber, w.AccountNumber)
	assert.NotEmpty(t, w.OrderID)

	b := f.balance(t)
	assert.Equal(t, int64(45_000), b.AvailableCents)
	assert.Equal(t, int64(50_000), b.TotalWithdrawnCents)

	var reloaded models.Contract
	require.NoError(t, f.db.First(&reloaded, contract.ID).Error)
	assert.Equal(t, domain.WorkflowPaymentWithdrawn, reloaded.WorkflowStatus)

	entries := f.ledgerEntries(t, domain.LedgerWithdraw)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(-50_000), entries[0].AmountCents)
}

func TestWithdrawMoreThanAvailableRejected(t *testing.T) {
	f := newEscrowFixture(t)
	contract := f.createContract(t, 100_000)
	f.charge(t, contract.ID)
	releaseFunds(t, f, contract.ID)
	f.addBankAccount(t)

	_, err := f.svc.Withdraw(f.creator.ID, 95_001)
	assert.ErrorIs(t, err, repository.ErrInsufficientBalance)
	b := f.balance(t)
	assert.Equal(t, int64(95_000), b.AvailableCents)
}

func TestWithdrawBounds(t *testing.T) {
	f := newEscrowFixture(t)
	f.addBankAccount(t)

	_, err := f.svc.Withdraw(f.creator.ID, 0)
	assert.ErrorIs(t, err, ErrWithdrawalLimit)
	_, err = f.svc.Withdraw(f.creator.ID, f.cfg.Payment.MaxWithdrawalCents+1)
	assert.ErrorIs(t, err, ErrWithdrawalLimit)
}

func TestSettleWithdrawal(t *testing.T) {
	f := newEscrowFixture(t)
	admin := f.createUser(t, "admin@test.io", domain.RoleAdmin)
	contract := f.createContract(t, 100_000)
	f.charge(t, contract.ID)
	releaseFunds(t, f, contract.ID)
	f.addBankAccount(t)
	w, err := f.svc.Withdraw(f.creator.ID, 50_000)
	require.NoError(t, err)

	settled, err := f.svc.SettleWithdrawal(admin.ID, w.ID, "po_abc123")
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalCompleted, settled.Status)
	assert.Equal(t, "po_abc123", settled.ProviderRef)
	assert.NotNil(t, settled.CompletedAt)

	// settling twice fails
	_, err = f.svc.SettleWithdrawal(admin.ID, w.ID, "po_abc123")
	assert.Error(t, err)
}

func TestFailWithdrawalRecreditsBalance(t *testing.T) {
	f := newEscrowFixture(t)
	admin := f.createUser(t, "admin@test.io", domain.RoleAdmin)
	contract := f.createContract(t, 100_000)
	f.charge(t, contract.ID)
	releaseFunds(t, f, contract.ID)
	f.addBankAccount(t)
	w, err := f.svc.Withdraw(f.creator.ID, 50_000)
	require.NoError(t, err)

	failed, err := f.svc.FailWithdrawal(admin.ID, w.ID, "bank rejected the transfer")
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalFailed, failed.Status)
	assert.Equal(t, "bank rejected the transfer", failed.FailureReason)

	b := f.balance(t)
	assert.Equal(t, int64(95_000), b.AvailableCents)
	assert.Zero(t, b.TotalWithdrawnCents)

	entries := f.ledgerEntries(t, domain.LedgerAdjustment)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(50_000), entries[0].AmountCents)
}
