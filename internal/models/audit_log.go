package models

import (
	"time"

	"gorm.io/gorm"
)

// AuditLog records admin actions that touch money or contract state.
type AuditLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ActorID   uint           `gorm:"not null;index" json:"actor_id"`
	Action    string         `gorm:"size:64;not null;index" json:"action"`
	TargetID  uint           `gorm:"index" json:"target_id"`
	Detail    string         `gorm:"type:text" json:"detail"` // JSON payload
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
