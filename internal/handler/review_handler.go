package handler

import (
	"errors"
	"net/http"

	"brandlink/internal/middleware"
	"brandlink/internal/repository"
	"brandlink/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ReviewHandler struct {
	reviewRepo *repository.ReviewRepository
	escrow     *service.EscrowService
}

func NewReviewHandler(reviewRepo *repository.ReviewRepository, escrow *service.EscrowService) *ReviewHandler {
	return &ReviewHandler{reviewRepo: reviewRepo, escrow: escrow}
}

// Create submits a review for a completed contract. When it is the second
// review, escrowed funds are released and the response says so.
func (h *ReviewHandler) Create(c *gin.Context) {
	contractID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}
	var req struct {
		Rating  int    `json:"rating" binding:"required,min=1,max=5"`
		Comment string `json:"comment" binding:"max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	review, released, err := h.escrow.SubmitReview(middleware.GetUserID(c), contractID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
		case errors.Is(err, service.ErrNotParty):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrContractNotCompleted):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrAlreadyReviewed), errors.Is(err, service.ErrReviewsClosed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit review"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"review":         review,
		"funds_released": released,
	})
}

func (h *ReviewHandler) ListByContract(c *gin.Context) {
	contractID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}
	list, err := h.reviewRepo.ListByContractID(contractID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reviews"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": list})
}
