package handler

import (
	"errors"
	"net/http"

	"brandlink/internal/middleware"
	"brandlink/internal/models"
	"brandlink/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BankHandler struct {
	bankRepo *repository.BankAccountRepository
}

func NewBankHandler(bankRepo *repository.BankAccountRepository) *BankHandler {
	return &BankHandler{bankRepo: bankRepo}
}

func (h *BankHandler) Get(c *gin.Context) {
	account, err := h.bankRepo.GetByCreatorID(middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no bank account on file"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bank account"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bank_account": account})
}

// Put creates or replaces the creator's bank account on file. Withdrawals
// snapshot these details at request time.
func (h *BankHandler) Put(c *gin.Context) {
	var req struct {
		BankName      string `json:"bank_name" binding:"required,max=128"`
		AccountNumber string `json:"account_number" binding:"required,max=34"`
		AccountName   string `json:"account_name" binding:"required,max=128"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	account := &models.BankAccount{
		CreatorID:     middleware.GetUserID(c),
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
	}
	if err := h.bankRepo.Upsert(account); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save bank account"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bank_account": account})
}
