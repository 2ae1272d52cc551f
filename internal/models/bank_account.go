package models

import (
	"time"

	"gorm.io/gorm"
)

// BankAccount is the creator's payout destination on file (one per creator).
type BankAccount struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatorID     uint           `gorm:"uniqueIndex;not null" json:"creator_id"`
	BankName      string         `gorm:"size:128;not null" json:"bank_name"`
	AccountNumber string         `gorm:"size:64;not null" json:"account_number"`
	AccountName   string         `gorm:"size:128;not null" json:"account_name"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Creator User `gorm:"foreignKey:CreatorID" json:"-"`
}

func (BankAccount) TableName() string {
	return "bank_accounts"
}
