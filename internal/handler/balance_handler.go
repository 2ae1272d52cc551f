package handler

import (
	"errors"
	"net/http"

	"brandlink/config"
	"brandlink/internal/middleware"
	"brandlink/internal/models"
	"brandlink/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BalanceHandler struct {
	cfg         *config.Config
	balanceRepo *repository.BalanceRepository
}

func NewBalanceHandler(cfg *config.Config, balanceRepo *repository.BalanceRepository) *BalanceHandler {
	return &BalanceHandler{cfg: cfg, balanceRepo: balanceRepo}
}

// Get returns the creator's balance rollup. Creators with no earnings yet see
// an all-zero balance rather than a 404.
func (h *BalanceHandler) Get(c *gin.Context) {
	creatorID := middleware.GetUserID(c)
	balance, err := h.balanceRepo.GetByCreatorID(creatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"balance": models.CreatorBalance{
				CreatorID: creatorID,
				Currency:  h.cfg.Payment.Currency,
			}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load balance"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// ListLedger returns the creator's ledger entries, newest first.
func (h *BalanceHandler) ListLedger(c *gin.Context) {
	limit, offset := parseLimitOffset(c)
	list, err := h.balanceRepo.ListLedger(middleware.GetUserID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list ledger"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": list})
}
