package models

import (
	"time"

	"gorm.io/gorm"
)

// Contract is a brand/creator engagement. Status tracks the engagement
// itself; WorkflowStatus is the payment state machine layered on top and
// only advances once Status is "completed". Budget is immutable after
// activation.
type Contract struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	BrandID        uint           `gorm:"not null;index" json:"brand_id"`
	CreatorID      uint           `gorm:"not null;index" json:"creator_id"`
	Title          string         `gorm:"size:255;not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	BudgetCents    int64          `gorm:"not null" json:"budget_cents"`
	Currency       string         `gorm:"size:3;default:'USD'" json:"currency"`
	Status         string         `gorm:"size:20;not null;index" json:"status"`          // active, completed, cancelled, disputed
	WorkflowStatus string         `gorm:"size:30;not null;index" json:"workflow_status"` // active, waiting_review, payment_available, payment_withdrawn
	DeliverableURL string         `gorm:"size:512" json:"deliverable_url,omitempty"`
	StartedAt      time.Time      `json:"started_at"`
	CompletedAt    *time.Time     `json:"completed_at"`
	CancelledAt    *time.Time     `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Brand   User        `gorm:"foreignKey:BrandID" json:"-"`
	Creator User        `gorm:"foreignKey:CreatorID" json:"-"`
	Payment *JobPayment `gorm:"foreignKey:ContractID" json:"payment,omitempty"`
	Reviews []Review    `gorm:"foreignKey:ContractID" json:"reviews,omitempty"`
}

func (Contract) TableName() string {
	return "contracts"
}

// IsParty reports whether userID is the brand or creator on this contract.
func (c *Contract) IsParty(userID uint) bool {
	return c.BrandID == userID || c.CreatorID == userID
}

// Counterparty returns the other side of the contract for userID.
func (c *Contract) Counterparty(userID uint) uint {
	if c.BrandID == userID {
		return c.CreatorID
	}
	return c.BrandID
}
