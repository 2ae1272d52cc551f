package models

import (
	"time"

	"gorm.io/gorm"
)

// JobPayment is the escrowed payment for one contract (1:1). Created at
// charge time with status "pending"; flips to "paid" only when the review
// gate releases funds. TotalCents == PlatformFeeCents + CreatorCents always.
type JobPayment struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	ContractID       uint           `gorm:"uniqueIndex;not null" json:"contract_id"`
	TotalCents       int64          `gorm:"not null" json:"total_cents"`
	PlatformFeeCents int64          `gorm:"not null" json:"platform_fee_cents"`
	CreatorCents     int64          `gorm:"not null" json:"creator_cents"`
	Status           string         `gorm:"size:20;not null;index" json:"status"` // pending, paid, refunded
	TransactionID    uint           `gorm:"not null" json:"transaction_id"`
	PaidAt           *time.Time     `json:"paid_at"`
	RefundedAt       *time.Time     `json:"refunded_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	Contract    Contract    `gorm:"foreignKey:ContractID" json:"-"`
	Transaction Transaction `gorm:"foreignKey:TransactionID" json:"-"`
}

func (JobPayment) TableName() string {
	return "job_payments"
}
