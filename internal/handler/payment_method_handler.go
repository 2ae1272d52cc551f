package handler

import (
	"errors"
	"net/http"

	"brandlink/internal/middleware"
	"brandlink/internal/models"
	"brandlink/internal/repository"
	"brandlink/pkg/payment"

	"github.com/gin-gonic/gin"
)

type PaymentMethodHandler struct {
	userRepo *repository.UserRepository
	pmRepo   *repository.PaymentMethodRepository
	gateway  payment.Gateway
}

func NewPaymentMethodHandler(
	userRepo *repository.UserRepository,
	pmRepo *repository.PaymentMethodRepository,
	gateway payment.Gateway,
) *PaymentMethodHandler {
	return &PaymentMethodHandler{userRepo: userRepo, pmRepo: pmRepo, gateway: gateway}
}

// Attach tokenized-card flow: the client tokenizes the card with the gateway
// and sends us the payment method reference, which we attach to the brand's
// gateway customer. Raw card numbers never touch this API.
func (h *PaymentMethodHandler) Attach(c *gin.Context) {
	var req struct {
		GatewayRef string `json:"gateway_ref" binding:"required"`
		IsDefault  bool   `json:"is_default"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
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
	card, err := h.gateway.AttachPaymentMethod(c.Request.Context(), brand.GatewayCustomerID, req.GatewayRef)
	if err != nil {
		if errors.Is(err, payment.ErrGatewayUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to attach payment method"})
		return
	}
	pm := &models.PaymentMethod{
		BrandID:    brand.ID,
		GatewayRef: req.GatewayRef,
		CardBrand:  card.Brand,
		Last4:      card.Last4,
		IsDefault:  req.IsDefault,
	}
	if err := h.pmRepo.Create(pm); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "payment method already attached"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment_method": pm})
}

func (h *PaymentMethodHandler) List(c *gin.Context) {
	list, err := h.pmRepo.ListByBrandID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list payment methods"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_methods": list})
}
