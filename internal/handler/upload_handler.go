package handler

import (
	"fmt"
	"net/http"

	"brandlink/internal/middleware"
	"brandlink/internal/repository"
	"brandlink/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// 25 MB upload cap
const maxUploadBytes = 25 << 20

type UploadHandler struct {
	cld      cloudinary.Client
	userRepo *repository.UserRepository
}

func NewUploadHandler(cld cloudinary.Client, userRepo *repository.UserRepository) *UploadHandler {
	return &UploadHandler{cld: cld, userRepo: userRepo}
}

// Avatar uploads a profile image and stores the optimized URL on the user.
func (h *UploadHandler) Avatar(c *gin.Context) {
	if h.cld == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads not configured"})
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}
	defer f.Close()

	userID := middleware.GetUserID(c)
	publicID := fmt.Sprintf("user-%d-%s", userID, uuid.New().String())
	url, thumb, err := h.cld.UploadImage(c.Request.Context(), f, "avatars", publicID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	u.AvatarURL = url
	if err := h.userRepo.Update(u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save avatar"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "thumbnail_url": thumb})
}

// Deliverable uploads a contract deliverable asset and returns its URL. The
// creator then references it when completing the contract.
func (h *UploadHandler) Deliverable(c *gin.Context) {
	if h.cld == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads not configured"})
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}
	defer f.Close()

	publicID := fmt.Sprintf("deliverable-%d-%s", middleware.GetUserID(c), uuid.New().String())
	url, err := h.cld.UploadFile(c.Request.Context(), f, "deliverables", publicID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
