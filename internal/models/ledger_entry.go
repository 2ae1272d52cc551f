package models

import (
	"time"

	"gorm.io/gorm"
)

// LedgerEntry is an append-only record of every balance movement
// (charge, release, withdraw, refund, adjustment). Balances can be
// recomputed from the ledger; the CreatorBalance row is the cached rollup.
type LedgerEntry struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatorID   uint           `gorm:"not null;index" json:"creator_id"`
	ContractID  *uint          `gorm:"index" json:"contract_id,omitempty"`
	Type        string         `gorm:"size:20;not null;index" json:"type"` // CHARGE, RELEASE, WITHDRAW, REFUND, ADJUSTMENT
	AmountCents int64          `gorm:"not null" json:"amount_cents"`       // signed; negative for withdraw/refund
	Reference   string         `gorm:"size:128" json:"reference"`          // e.g. transaction ref, withdrawal order id
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
