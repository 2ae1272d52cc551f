package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentMethod is a brand's card on file, attached to their gateway
// customer. Only the gateway reference and display fields are stored.
type PaymentMethod struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	BrandID    uint           `gorm:"not null;index" json:"brand_id"`
	GatewayRef string         `gorm:"size:128;uniqueIndex;not null" json:"gateway_ref"`
	CardBrand  string         `gorm:"size:20" json:"card_brand"`
	Last4      string         `gorm:"size:4" json:"last4"`
	IsDefault  bool           `gorm:"default:false" json:"is_default"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Brand User `gorm:"foreignKey:BrandID" json:"-"`
}

func (PaymentMethod) TableName() string {
	return "payment_methods"
}
