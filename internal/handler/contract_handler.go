package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"brandlink/config"
	"brandlink/internal/domain"
	"brandlink/internal/middleware"
	"brandlink/internal/models"
	"brandlink/internal/repository"
	"brandlink/internal/service"
	"brandlink/pkg/payment"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ContractHandler struct {
	cfg          *config.Config
	contractRepo *repository.ContractRepository
	userRepo     *repository.UserRepository
	pmRepo       *repository.PaymentMethodRepository
	escrow       *service.EscrowService
	gateway      payment.Gateway
}

func NewContractHandler(
	cfg *config.Config,
	contractRepo *repository.ContractRepository,
	userRepo *repository.UserRepository,
	pmRepo *repository.PaymentMethodRepository,
	escrow *service.EscrowService,
	gateway payment.Gateway,
) *ContractHandler {
	return &ContractHandler{
		cfg:          cfg,
		contractRepo: contractRepo,
		userRepo:     userRepo,
		pmRepo:       pmRepo,
		escrow:       escrow,
		gateway:      gateway,
	}
}

// Create opens a new active contract between the authenticated brand and a
// creator. The budget is fixed at creation.
func (h *ContractHandler) Create(c *gin.Context) {
	brandID := middleware.GetUserID(c)
	var req struct {
		CreatorID   uint   `json:"creator_id" binding:"required"`
		Title       string `json:"title" binding:"required,max=255"`
		Description string `json:"description"`
		BudgetCents int64  `json:"budget_cents" binding:"required,gt=0"`
		Currency    string `json:"currency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	creator, err := h.userRepo.GetByID(req.CreatorID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "creator not found"})
		return
	}
	if !creator.IsCreator() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "creator_id must reference a creator account"})
		return
	}
	if req.CreatorID == brandID {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "cannot contract yourself"})
		return
	}
	// creator balances pool per creator in the platform currency, so
	// contracts must be denominated in it
	if req.Currency == "" {
		req.Currency = h.cfg.Payment.Currency
	}
	if !strings.EqualFold(req.Currency, h.cfg.Payment.Currency) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unsupported currency, use " + h.cfg.Payment.Currency})
		return
	}
	req.Currency = strings.ToUpper(req.Currency)
	contract := &models.Contract{
		BrandID:        brandID,
		CreatorID:      req.CreatorID,
		Title:          req.Title,
		Description:    req.Description,
		BudgetCents:    req.BudgetCents,
		Currency:       req.Currency,
		Status:         domain.ContractActive,
		WorkflowStatus: domain.WorkflowActive,
		StartedAt:      time.Now(),
	}
	if err := h.contractRepo.Create(contract); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create contract"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"contract": contract})
}

// ListMine returns the caller's contracts, brand or creator side.
func (h *ContractHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := parseLimitOffset(c)
	var (
		list []models.Contract
		err  error
	)
	if middleware.GetRole(c) == domain.RoleBrand {
		list, err = h.contractRepo.ListByBrandID(userID, limit, offset)
	} else {
		list, err = h.contractRepo.ListByCreatorID(userID, limit, offset)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list contracts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contracts": list})
}

func (h *ContractHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}
	contract, err := h.contractRepo.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
		return
	}
	userID := middleware.GetUserID(c)
	if !contract.IsParty(userID) && middleware.GetRole(c) != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a party to this contract"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract})
}

// Charge funds the contract escrow from the brand's card. A gateway customer
// is created lazily on first charge.
func (h *ContractHandler) Charge(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}
	// body is optional: default payment method is used when omitted
	var req struct {
		PaymentMethodID uint `json:"payment_method_id"`
	}
	_ = c.ShouldBindJSON(&req)

	brand, err := h.userRepo.GetByID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if brand.GatewayCustomerID == "" {
		custID, err := h.gateway.CreateCustomer(c.Request.Context(), brand.Email, brand.Username)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment gateway unreachable"})
			return
		}
		brand.GatewayCustomerID = custID
		if err := h.userRepo.Update(brand); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save customer"})
			return
		}
	}

	var pm *models.PaymentMethod
	if req.PaymentMethodID != 0 {
		pm, err = h.pmRepo.GetByID(req.PaymentMethodID)
		if err != nil || pm.BrandID != brand.ID {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment method not found"})
			return
		}
	} else {
		pm, err = h.pmRepo.GetDefault(brand.ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no payment method on file"})
			return
		}
	}

	jp, err := h.escrow.Charge(c.Request.Context(), brand, id, pm)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
		case errors.Is(err, service.ErrNotParty):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrContractNotActive):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrAlreadyCharged):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, payment.ErrCardDeclined), errors.Is(err, payment.ErrInsufficientFunds):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
		case errors.Is(err, payment.ErrGatewayUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "charge failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": jp})
}

// Complete is the creator submitting work; the contract enters waiting_review.
func (h *ContractHandler) Complete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}
	var req struct {
		DeliverableURL string `json:"deliverable_url"`
	}
	_ = c.ShouldBindJSON(&req)

	contract, err := h.escrow.Complete(middleware.GetUserID(c), id, req.DeliverableURL)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
		case errors.Is(err, service.ErrNotParty):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrContractNotActive), errors.Is(err, service.ErrNotCharged):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete contract"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract})
}

// OpenDispute flags the contract as disputed for admin resolution.
func (h *ContractHandler) OpenDispute(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	dispute, err := h.escrow.OpenDispute(middleware.GetUserID(c), id, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
		case errors.Is(err, service.ErrNotParty):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrContractTerminal):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open dispute"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"dispute": dispute})
}
