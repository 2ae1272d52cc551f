package models

import (
	"time"

	"gorm.io/gorm"
)

// Withdrawal moves released funds out of a creator's available balance.
// Bank fields are a snapshot taken at request time; the payout auditor
// compares them against the creator's current BankAccount.
type Withdrawal struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatorID     uint           `gorm:"not null;index" json:"creator_id"`
	OrderID       string         `gorm:"size:64;uniqueIndex;not null" json:"order_id"`
	AmountCents   int64          `gorm:"not null" json:"amount_cents"`
	BankName      string         `gorm:"size:128;not null" json:"bank_name"`
	AccountNumber string         `gorm:"size:64;not null" json:"account_number"`
	AccountName   string         `gorm:"size:128;not null" json:"account_name"`
	Status        string         `gorm:"size:20;not null;index" json:"status"` // PENDING, COMPLETED, FAILED
	ProviderRef   string         `gorm:"size:128" json:"provider_ref"`
	FailureReason string         `gorm:"size:255" json:"failure_reason,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	CompletedAt   *time.Time     `json:"completed_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Creator User `gorm:"foreignKey:CreatorID" json:"-"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}
