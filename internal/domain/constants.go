package domain

const (
	RoleBrand   = "BRAND"
	RoleCreator = "CREATOR"
	RoleAdmin   = "ADMIN"
)

// Contract lifecycle. Workflow statuses only advance once the contract
// itself is completed.
const (
	ContractActive    = "active"
	ContractCompleted = "completed"
	ContractCancelled = "cancelled"
	ContractDisputed  = "disputed"
)

const (
	WorkflowActive           = "active"
	WorkflowWaitingReview    = "waiting_review"
	WorkflowPaymentAvailable = "payment_available"
	WorkflowPaymentWithdrawn = "payment_withdrawn"
)

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// Ledger entry types. Amounts are signed; CHARGE and RELEASE carry the
// creator share, WITHDRAW and REFUND carry negative amounts.
const (
	LedgerCharge     = "CHARGE"
	LedgerRelease    = "RELEASE"
	LedgerWithdraw   = "WITHDRAW"
	LedgerRefund     = "REFUND"
	LedgerAdjustment = "ADJUSTMENT"
)

const (
	WithdrawalPending   = "PENDING"
	WithdrawalCompleted = "COMPLETED"
	WithdrawalFailed    = "FAILED"
)

const (
	DisputeOpen     = "open"
	DisputeResolved = "resolved"
)

const (
	ResolutionComplete = "complete"
	ResolutionCancel   = "cancel"
	ResolutionRefund   = "refund"
)

const (
	WinnerBrand    = "brand"
	WinnerCreator  = "creator"
	WinnerPlatform = "platform"
)

// Payout verification outcomes (admin-side audit, read only).
const (
	VerificationPassed  = "passed"
	VerificationFailed  = "failed"
	VerificationPending = "pending"
)

const (
	MinRating = 1
	MaxRating = 5
)
