package models

import (
	"time"

	"gorm.io/gorm"
)

// CreatorBalance holds per-creator escrow totals in cents.
// Invariant: AvailableCents + PendingCents + TotalWithdrawnCents ==
// TotalEarnedCents. Every mutation happens in one transaction with a row
// lock on this record, paired with a LedgerEntry.
type CreatorBalance struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	CreatorID           uint           `gorm:"uniqueIndex;not null" json:"creator_id"`
	AvailableCents      int64          `gorm:"not null;default:0" json:"available_cents"`
	PendingCents        int64          `gorm:"not null;default:0" json:"pending_cents"`
	TotalEarnedCents    int64          `gorm:"not null;default:0" json:"total_earned_cents"`
	TotalWithdrawnCents int64          `gorm:"not null;default:0" json:"total_withdrawn_cents"`
	Currency            string         `gorm:"size:3;default:'USD'" json:"currency"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`

	Creator User `gorm:"foreignKey:CreatorID" json:"-"`
}

func (CreatorBalance) TableName() string {
	return "creator_balances"
}

// Consistent reports whether the balance identity holds.
func (b *CreatorBalance) Consistent() bool {
	return b.AvailableCents+b.PendingCents+b.TotalWithdrawnCents == b.TotalEarnedCents
}
