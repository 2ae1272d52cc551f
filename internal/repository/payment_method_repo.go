package repository

import (
	"brandlink/internal/models"

	"gorm.io/gorm"
)

type PaymentMethodRepository struct {
	db *gorm.DB
}

func NewPaymentMethodRepository(db *gorm.DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: db}
}

func (r *PaymentMethodRepository) Create(pm *models.PaymentMethod) error {
	if pm.IsDefault {
		// a new default unsets the previous one
		if err := r.db.Model(&models.PaymentMethod{}).
			Where("brand_id = ?", pm.BrandID).Update("is_default", false).Error; err != nil {
			return err
		}
	}
	return r.db.Create(pm).Error
}

func (r *PaymentMethodRepository) GetByID(id uint) (*models.PaymentMethod, error) {
	var pm models.PaymentMethod
	err := r.db.First(&pm, id).Error
	if err != nil {
		return nil, err
	}
	return &pm, nil
}

func (r *PaymentMethodRepository) ListByBrandID(brandID uint) ([]models.PaymentMethod, error) {
	var list []models.PaymentMethod
	err := r.db.Where("brand_id = ?", brandID).Order("created_at DESC").Find(&list).Error
	return list, err
}

// GetDefault returns the brand's default card, falling back to the most
// recently added one.
func (r *PaymentMethodRepository) GetDefault(brandID uint) (*models.PaymentMethod, error) {
	var pm models.PaymentMethod
	err := r.db.Where("brand_id = ? AND is_default = ?", brandID, true).First(&pm).Error
	if err == nil {
		return &pm, nil
	}
	err = r.db.Where("brand_id = ?", brandID).Order("created_at DESC").First(&pm).Error
	if err != nil {
		return nil, err
	}
	return &pm, nil
}
