package models

import (
	"time"

	"brandlink/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Username          string         `gorm:"uniqueIndex;size:64;not null;default:''" json:"username"`
	Email             string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash      string         `gorm:"size:255" json:"-"`
	Role              string         `gorm:"size:20;not null;index" json:"role"` // BRAND | CREATOR | ADMIN
	CompanyName       string         `gorm:"size:255" json:"company_name,omitempty"`
	GoogleID          *string        `gorm:"uniqueIndex;size:255" json:"-"` // nil for email signups (avoids duplicate '' on unique index)
	AvatarURL         string         `gorm:"size:512" json:"avatar_url"`
	GatewayCustomerID string         `gorm:"size:128" json:"-"` // card gateway customer, brands only
	EmailVerifiedAt   *time.Time     `json:"email_verified_at"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Balance     *CreatorBalance `gorm:"foreignKey:CreatorID" json:"balance,omitempty"`
	BankAccount *BankAccount    `gorm:"foreignKey:CreatorID" json:"bank_account,omitempty"`
}

func (u *User) IsBrand() bool   { return u.Role == domain.RoleBrand }
func (u *User) IsCreator() bool { return u.Role == domain.RoleCreator }
func (u *User) IsAdmin() bool   { return u.Role == domain.RoleAdmin }
