package repository

import (
	"brandlink/internal/domain"
	"brandlink/internal/models"

	"gorm.io/gorm"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// DashboardStats is the admin overview payload.
type DashboardStats struct {
	TotalBrands         int64 `json:"total_brands"`
	TotalCreators       int64 `json:"total_creators"`
	ActiveContracts     int64 `json:"active_contracts"`
	CompletedContracts  int64 `json:"completed_contracts"`
	DisputedContracts   int64 `json:"disputed_contracts"`
	OpenDisputes        int64 `json:"open_disputes"`
	PendingWithdrawals  int64 `json:"pending_withdrawals"`
	EscrowedCents       int64 `json:"escrowed_cents"`
	PlatformFeeCents    int64 `json:"platform_fee_cents"`
	TotalWithdrawnCents int64 `json:"total_withdrawn_cents"`
}

func (r *AdminRepository) GetDashboardStats() (*DashboardStats, error) {
	var s DashboardStats
	r.db.Model(&models.User{}).Where("role = ?", domain.RoleBrand).Count(&s.TotalBrands)
	r.db.Model(&models.User{}).Where("role = ?", domain.RoleCreator).Count(&s.TotalCreators)
	r.db.Model(&models.Contract{}).Where("status = ?", domain.ContractActive).Count(&s.ActiveContracts)
	r.db.Model(&models.Contract{}).Where("status = ?", domain.ContractCompleted).Count(&s.CompletedContracts)
	r.db.Model(&models.Contract{}).Where("status = ?", domain.ContractDisputed).Count(&s.DisputedContracts)
	r.db.Model(&models.Dispute{}).Where("status = ?", domain.DisputeOpen).Count(&s.OpenDisputes)
	r.db.Model(&models.Withdrawal{}).Where("status = ?", domain.WithdrawalPending).Count(&s.PendingWithdrawals)
	r.db.Model(&models.CreatorBalance{}).Select("COALESCE(SUM(pending_cents),0)").Scan(&s.EscrowedCents)
	r.db.Model(&models.JobPayment{}).Where("status <> ?", domain.PaymentRefunded).
		Select("COALESCE(SUM(platform_fee_cents),0)").Scan(&s.PlatformFeeCents)
	r.db.Model(&models.CreatorBalance{}).Select("COALESCE(SUM(total_withdrawn_cents),0)").Scan(&s.TotalWithdrawnCents)
	return &s, nil
}

func (r *AdminRepository) ListUsers(search, role string, page, limit int) ([]models.User, int64, error) {
	q := r.db.Model(&models.User{})
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("email LIKE ? OR username LIKE ?", like, like)
	}
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&users).Error
	return users, total, err
}

func (r *AdminRepository) GetUserByID(id uint) (*models.User, error) {
	var u models.User
	err := r.db.First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}
