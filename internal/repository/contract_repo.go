package repository

import (
	"brandlink/internal/domain"
	"brandlink/internal/models"

	"gorm.io/gorm"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Create(c *models.Contract) error {
	return r.db.Create(c).Error
}

func (r *ContractRepository) GetByID(id uint) (*models.Contract, error) {
	var c models.Contract
	err := r.db.Preload("Payment").First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContractRepository) ListByBrandID(brandID uint, limit, offset int) ([]models.Contract, error) {
	var list []models.Contract
	err := r.db.Preload("Payment").Where("brand_id = ?", brandID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *ContractRepository) ListByCreatorID(creatorID uint, limit, offset int) ([]models.Contract, error) {
	var list []models.Contract
	err := r.db.Preload("Payment").Where("creator_id = ?", creatorID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *ContractRepository) Update(c *models.Contract) error {
	return r.db.Save(c).Error
}

// MarkWithdrawn advances every released contract of a creator to
// payment_withdrawn. Called inside the withdrawal transaction.
func (r *ContractRepository) MarkWithdrawn(tx *gorm.DB, creatorID uint) error {
	return tx.Model(&models.Contract{}).
		Where("creator_id = ? AND workflow_status = ?", creatorID, domain.WorkflowPaymentAvailable).
		Update("workflow_status", domain.WorkflowPaymentWithdrawn).Error
}
