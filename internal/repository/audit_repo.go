package repository

import (
	"encoding/json"

	"brandlink/internal/models"

	"gorm.io/gorm"
)

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Log(actorID uint, action string, targetID uint, detail map[string]interface{}) error {
	var detailJSON string
	if detail != nil {
		b, _ := json.Marshal(detail)
		detailJSON = string(b)
	}
	return r.db.Create(&models.AuditLog{
		ActorID:  actorID,
		Action:   action,
		TargetID: targetID,
		Detail:   detailJSON,
	}).Error
}

func (r *AuditLogRepository) List(limit, offset int) ([]models.AuditLog, error) {
	var list []models.AuditLog
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
