package repository

import (
	"brandlink/internal/models"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(review *models.Review) error {
	return r.db.Create(review).Error
}

func (r *ReviewRepository) GetByContractAndReviewer(contractID, reviewerID uint) (*models.Review, error) {
	var review models.Review
	err := r.db.Where("contract_id = ? AND reviewer_id = ?", contractID, reviewerID).First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) ListByContractID(contractID uint) ([]models.Review, error) {
	var list []models.Review
	err := r.db.Where("contract_id = ?", contractID).Order("created_at ASC").Find(&list).Error
	return list, err
}

// HasBothReviews reports whether both the brand and the creator have
// reviewed the contract — the fund release condition.
func (r *ReviewRepository) HasBothReviews(contractID, brandID, creatorID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Review{}).
		Where("contract_id = ? AND reviewer_id IN ?", contractID, []uint{brandID, creatorID}).
		Distinct("reviewer_id").Count(&count).Error
	return count >= 2, err
}
