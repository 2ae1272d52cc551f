package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction is the gateway charge record backing a JobPayment.
type Transaction struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ContractID  uint           `gorm:"not null;index" json:"contract_id"`
	BrandID     uint           `gorm:"not null;index" json:"brand_id"`
	Provider    string         `gorm:"size:50;not null" json:"provider"`
	ProviderRef string         `gorm:"size:255;uniqueIndex" json:"provider_ref"`
	AmountCents int64          `gorm:"not null" json:"amount_cents"`
	Currency    string         `gorm:"size:3;default:'USD'" json:"currency"`
	Status      string         `gorm:"size:20;not null;index" json:"status"` // succeeded, refunded
	RefundRef   string         `gorm:"size:255" json:"refund_ref,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Transaction) TableName() string {
	return "transactions"
}
