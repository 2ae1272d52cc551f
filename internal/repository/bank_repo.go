package repository

import (
	"errors"

	"brandlink/internal/models"

	"gorm.io/gorm"
)

type BankAccountRepository struct {
	db *gorm.DB
}

func NewBankAccountRepository(db *gorm.DB) *BankAccountRepository {
	return &BankAccountRepository{db: db}
}

func (r *BankAccountRepository) GetByCreatorID(creatorID uint) (*models.BankAccount, error) {
	var b models.BankAccount
	err := r.db.Where("creator_id = ?", creatorID).First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Upsert creates or replaces the creator's bank account on file.
func (r *BankAccountRepository) Upsert(account *models.BankAccount) error {
	existing, err := r.GetByCreatorID(account.CreatorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(account).Error
	}
	if err != nil {
		return err
	}
	account.ID = existing.ID
	account.CreatedAt = existing.CreatedAt
	return r.db.Save(account).Error
}
