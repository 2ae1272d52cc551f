package models

import (
	"time"

	"gorm.io/gorm"
)

// Dispute is an open disagreement on a contract, resolvable only by an
// admin. Resolution and Winner are set on close.
type Dispute struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	ContractID       uint           `gorm:"not null;index" json:"contract_id"`
	OpenedByID       uint           `gorm:"not null;index" json:"opened_by_id"`
	Reason           string         `gorm:"type:text;not null" json:"reason"`
	Status           string         `gorm:"size:20;not null;index" json:"status"` // open, resolved
	Resolution       string         `gorm:"size:20" json:"resolution,omitempty"`  // complete, cancel, refund
	Winner           string         `gorm:"size:20" json:"winner,omitempty"`      // brand, creator, platform
	ResolutionReason string         `gorm:"type:text" json:"resolution_reason,omitempty"`
	ResolvedByID     *uint          `json:"resolved_by_id,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	ResolvedAt       *time.Time     `json:"resolved_at,omitempty"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	Contract Contract `gorm:"foreignKey:ContractID" json:"-"`
	OpenedBy User     `gorm:"foreignKey:OpenedByID" json:"-"`
}

func (Dispute) TableName() string {
	return "disputes"
}
