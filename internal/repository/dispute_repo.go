package repository

import (
	"brandlink/internal/domain"
	"brandlink/internal/models"

	"gorm.io/gorm"
)

type DisputeRepository struct {
	db *gorm.DB
}

func NewDisputeRepository(db *gorm.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

func (r *DisputeRepository) Create(d *models.Dispute) error {
	return r.db.Create(d).Error
}

func (r *DisputeRepository) GetByID(id uint) (*models.Dispute, error) {
	var d models.Dispute
	err := r.db.First(&d, id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DisputeRepository) GetOpenByContractID(contractID uint) (*models.Dispute, error) {
	var d models.Dispute
	err := r.db.Where("contract_id = ? AND status = ?", contractID, domain.DisputeOpen).First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DisputeRepository) List(status string, limit, offset int) ([]models.Dispute, error) {
	q := r.db.Order("created_at DESC").Limit(limit).Offset(offset)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []models.Dispute
	err := q.Find(&list).Error
	return list, err
}

func (r *DisputeRepository) Update(d *models.Dispute) error {
	return r.db.Save(d).Error
}
