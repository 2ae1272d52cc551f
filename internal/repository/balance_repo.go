package repository

import (
	"errors"

	"brandlink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInsufficientBalance = errors.New("insufficient available balance")

type BalanceRepository struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

func (r *BalanceRepository) GetByCreatorID(creatorID uint) (*models.CreatorBalance, error) {
	var b models.CreatorBalance
	err := r.db.Where("creator_id = ?", creatorID).First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BalanceRepository) GetOrCreate(creatorID uint, currency string) (*models.CreatorBalance, error) {
	b, err := r.GetByCreatorID(creatorID)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	b = &models.CreatorBalance{CreatorID: creatorID, Currency: currency}
	if err := r.db.Create(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

// GetForUpdate loads the balance row with SELECT ... FOR UPDATE inside tx,
// creating it first if missing. All balance mutations go through this so
// concurrent releases/withdrawals serialize per creator.
func (r *BalanceRepository) GetForUpdate(tx *gorm.DB, creatorID uint, currency string) (*models.CreatorBalance, error) {
	q := tx
	// sqlite has no FOR UPDATE; its single-writer model serializes anyway
	if tx.Dialector.Name() != "sqlite" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var b models.CreatorBalance
	err := q.Where("creator_id = ?", creatorID).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		b = models.CreatorBalance{CreatorID: creatorID, Currency: currency}
		if err := tx.Create(&b).Error; err != nil {
			return nil, err
		}
		err = q.Where("creator_id = ?", creatorID).First(&b).Error
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Save persists balance mutations inside the caller's transaction.
func (r *BalanceRepository) Save(tx *gorm.DB, b *models.CreatorBalance) error {
	return tx.Save(b).Error
}

// AppendLedger writes an append-only ledger entry inside the caller's transaction.
func (r *BalanceRepository) AppendLedger(tx *gorm.DB, e *models.LedgerEntry) error {
	return tx.Create(e).Error
}

func (r *BalanceRepository) ListLedger(creatorID uint, limit, offset int) ([]models.LedgerEntry, error) {
	var list []models.LedgerEntry
	err := r.db.Where("creator_id = ?", creatorID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
