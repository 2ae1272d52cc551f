package handler

import (
	"errors"
	"net/http"

	"brandlink/internal/middleware"
	"brandlink/internal/repository"
	"brandlink/internal/service"

	"github.com/gin-gonic/gin"
)

type WithdrawalHandler struct {
	withdrawRepo *repository.WithdrawalRepository
	escrow       *service.EscrowService
}

func NewWithdrawalHandler(withdrawRepo *repository.WithdrawalRepository, escrow *service.EscrowService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawRepo: withdrawRepo, escrow: escrow}
}

// Create moves available funds into a pending withdrawal against the
// creator's bank account on file.
func (h *WithdrawalHandler) Create(c *gin.Context) {
	var req struct {
		AmountCents int64 `json:"amount_cents" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	w, err := h.escrow.Withdraw(middleware.GetUserID(c), req.AmountCents)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWithdrawalLimit):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNoBankAccount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "withdrawal failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"withdrawal": w})
}

func (h *WithdrawalHandler) ListMine(c *gin.Context) {
	limit, offset := parseLimitOffset(c)
	list, err := h.withdrawRepo.ListByCreatorID(middleware.GetUserID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list})
}
