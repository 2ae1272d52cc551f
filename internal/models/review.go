package models

import (
	"time"

	"gorm.io/gorm"
)

// Review is one party's rating of the other on a completed contract.
// Unique per (contract, reviewer); the presence of reviews from both the
// brand and the creator is the fund release condition.
type Review struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ContractID uint           `gorm:"not null;uniqueIndex:idx_reviews_contract_reviewer" json:"contract_id"`
	ReviewerID uint           `gorm:"not null;uniqueIndex:idx_reviews_contract_reviewer" json:"reviewer_id"`
	ReviewedID uint           `gorm:"not null;index" json:"reviewed_id"`
	Rating     int            `gorm:"not null" json:"rating"` // 1..5
	Comment    string         `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Contract Contract `gorm:"foreignKey:ContractID" json:"-"`
	Reviewer User     `gorm:"foreignKey:ReviewerID" json:"-"`
}

func (Review) TableName() string {
	return "reviews"
}
