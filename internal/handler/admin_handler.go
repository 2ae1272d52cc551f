package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"brandlink/internal/middleware"
	"brandlink/internal/models"
	"brandlink/internal/repository"
	"brandlink/internal/service"
	"brandlink/pkg/payment"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AdminHandler struct {
	authSvc      *service.AuthService
	adminRepo    *repository.AdminRepository
	disputeRepo  *repository.DisputeRepository
	withdrawRepo *repository.WithdrawalRepository
	bankRepo     *repository.BankAccountRepository
	escrow       *service.EscrowService
	auditor      *service.PayoutAuditor
}

func NewAdminHandler(
	authSvc *service.AuthService,
	adminRepo *repository.AdminRepository,
	disputeRepo *repository.DisputeRepository,
	withdrawRepo *repository.WithdrawalRepository,
	bankRepo *repository.BankAccountRepository,
	escrow *service.EscrowService,
	auditor *service.PayoutAuditor,
) *AdminHandler {
	return &AdminHandler{
		authSvc:      authSvc,
		adminRepo:    adminRepo,
		disputeRepo:  disputeRepo,
		withdrawRepo: withdrawRepo,
		bankRepo:     bankRepo,
		escrow:       escrow,
		auditor:      auditor,
	}
}

// Login is the admin sign-in; same credentials flow, but non-admin accounts
// are rejected here rather than at the middleware.
func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	u, access, refresh, err := h.authSvc.Login(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !u.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":          u,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminRepo.GetDashboardStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	users, total, err := h.adminRepo.ListUsers(c.Query("search"), c.Query("role"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (h *AdminHandler) ListDisputes(c *gin.Context) {
	limit, offset := parseLimitOffset(c)
	list, err := h.disputeRepo.List(c.Query("status"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list disputes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"disputes": list})
}

// ResolveDispute applies the admin verdict: complete, cancel, or refund with
// a winner.
func (h *AdminHandler) ResolveDispute(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dispute id"})
		return
	}
	var req struct {
		Resolution string `json:"resolution" binding:"required,oneof=complete cancel refund"`
		Winner     string `json:"winner" binding:"omitempty,oneof=brand creator platform"`
		Reason     string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	dispute, err := h.escrow.ResolveDispute(c.Request.Context(), middleware.GetUserID(c), id, req.Resolution, req.Winner, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "dispute not found"})
		case errors.Is(err, service.ErrDisputeClosed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidResolution):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, payment.ErrGatewayUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve dispute"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"dispute": dispute})
}

func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	limit, offset := parseLimitOffset(c)
	list, err := h.withdrawRepo.List(c.Query("status"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list})
}

// SettleWithdrawal records the payout rail's reference and marks the
// withdrawal completed.
func (h *AdminHandler) SettleWithdrawal(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid withdrawal id"})
		return
	}
	var req struct {
		ProviderRef string `json:"provider_ref" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	w, err := h.escrow.SettleWithdrawal(middleware.GetUserID(c), id, req.ProviderRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "withdrawal not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": w})
}

// FailWithdrawal rejects a pending withdrawal and re-credits the creator.
func (h *AdminHandler) FailWithdrawal(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid withdrawal id"})
		return
	}
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	w, err := h.escrow.FailWithdrawal(middleware.GetUserID(c), id, req.Reason)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "withdrawal not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": w})
}

// VerifyPayout runs the read-only payout audit for one withdrawal.
func (h *AdminHandler) VerifyPayout(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid withdrawal id"})
		return
	}
	w, err := h.withdrawRepo.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "withdrawal not found"})
		return
	}
	var bank *models.BankAccount
	if b, err := h.bankRepo.GetByCreatorID(w.CreatorID); err == nil {
		bank = b
	}
	result := h.auditor.Verify(w, bank, time.Now())
	c.JSON(http.StatusOK, gin.H{"verification": result})
}
