package repository

import (
	"brandlink/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) GetByContractID(contractID uint) (*models.JobPayment, error) {
	var p models.JobPayment
	err := r.db.Where("contract_id = ?", contractID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetTransactionByID(id uint) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PaymentRepository) Update(p *models.JobPayment) error {
	return r.db.Save(p).Error
}
