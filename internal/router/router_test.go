package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"brandlink/config"
	"brandlink/internal/database"
	"brandlink/internal/domain"
	"brandlink/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
}

func (c *apiClient) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func newAPITest(t *testing.T) (*apiClient, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	cfg := config.Load()
	return &apiClient{t: t, engine: Setup(cfg, db, nil)}, db
}

func (c *apiClient) register(email, role string) string {
	c.t.Helper()
	w := c.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":    email,
		"username": email,
		"password": "supersecret1",
		"role":     role,
	})
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())
	return decode(c.t, w)["access_token"].(string)
}

func TestContractLifecycleOverHTTP(t *testing.T) {
	c, db := newAPITest(t)
	brandTok := c.register("brand@test.io", domain.RoleBrand)
	creatorTok := c.register("creator@test.io", domain.RoleCreator)

	var creator models.User
	require.NoError(t, db.Where("email = ?", "creator@test.io").First(&creator).Error)

	// brand attaches a card (stub gateway)
	w := c.do(http.MethodPost, "/api/v1/payment-methods", brandTok, gin.H{
		"gateway_ref": "pm_stub_visa",
		"is_default":  true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// brand opens a contract
	w = c.do(http.MethodPost, "/api/v1/contracts", brandTok, gin.H{
		"creator_id":   creator.ID,
		"title":        "Summer campaign",
		"budget_cents": 100_000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	contractID := uint(decode(t, w)["contract"].(map[string]interface{})["id"].(float64))

	// creator cannot create contracts
	w = c.do(http.MethodPost, "/api/v1/contracts", creatorTok, gin.H{
		"creator_id":   creator.ID,
		"title":        "nope",
		"budget_cents": 1,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// balances pool in the platform currency, so other denominations are rejected
	w = c.do(http.MethodPost, "/api/v1/contracts", brandTok, gin.H{
		"creator_id":   creator.ID,
		"title":        "Euro campaign",
		"budget_cents": 100_000,
		"currency":     "EUR",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// fund escrow
	w = c.do(http.MethodPost, fmt.Sprintf("/api/v1/contracts/%d/charge", contractID), brandTok, gin.H{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	pay := decode(t, w)["payment"].(map[string]interface{})
	assert.Equal(t, domain.PaymentPending, pay["status"])
	assert.Equal(t, float64(95_000), pay["creator_cents"])

	// review before completion is rejected
	w = c.do(http.MethodPost, fmt.Sprintf("/api/v1/contracts/%d/reviews", contractID), brandTok, gin.H{
		"rating": 5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// creator submits work
	w = c.do(http.MethodPost, fmt.Sprintf("/api/v1/contracts/%d/complete", contractID), creatorTok, gin.H{
		"deliverable_url": "https://cdn.test/final.mp4",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// first review does not release funds
	w = c.do(http.MethodPost, fmt.Sprintf("/api/v1/contracts/%d/reviews", contractID), brandTok, gin.H{
		"rating":  5,
		"comment": "great work",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, false, decode(t, w)["funds_released"])

	// duplicate review rejected
	w = c.do(http.MethodPost, fmt.Sprintf("/api/v1/contracts/%d/reviews", contractID), brandTok, gin.H{
		"rating": 1,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// second review releases
	w = c.do(http.MethodPost, fmt.Sprintf("/api/v1/contracts/%d/reviews", contractID), creatorTok, gin.H{
		"rating": 4,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["funds_released"])

	// creator sees the released balance
	w = c.do(http.MethodGet, "/api/v1/balance", creatorTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	bal := decode(t, w)["balance"].(map[string]interface{})
	assert.Equal(t, float64(95_000), bal["available_cents"])
	assert.Equal(t, float64(0), bal["pending_cents"])

	// withdrawal needs a bank account first
	w = c.do(http.MethodPost, "/api/v1/withdrawals", creatorTok, gin.H{"amount_cents": 50_000})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.do(http.MethodPut, "/api/v1/bank-account", creatorTok, gin.H{
		"bank_name":      "First Test Bank",
		"account_number": "0011223344",
		"account_name":   "Creator Person",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = c.do(http.MethodPost, "/api/v1/withdrawals", creatorTok, gin.H{"amount_cents": 50_000})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	wd := decode(t, w)["withdrawal"].(map[string]interface{})
	assert.Equal(t, domain.WithdrawalPending, wd["status"])

	// both parties got notifications along the way
	w = c.do(http.MethodGet, "/api/v1/notifications", creatorTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	notifs := decode(t, w)["notifications"].([]interface{})
	assert.NotEmpty(t, notifs)
}

func TestAdminDisputeResolutionOverHTTP(t *testing.T) {
	c, db := newAPITest(t)
	brandTok := c.register("brand@test.io", domain.RoleBrand)
	creatorTok := c.register("creator@test.io", domain.RoleCreator)

	hash, _ := bcrypt.GenerateFromPassword([]byte("adminpass123"), bcrypt.DefaultCost)
	require.NoError(t, db.Create(&models.User{
		Email:        "admin@test.io",
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}).Error)

	w := c.do(http.MethodPost, "/api/v1/auth/admin/login", "", gin.H{
		"email":    "admin@test.io",
		"password": "adminpass123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	adminTok := decode(t, w)["access_token"].(string)

	// brands cannot use the admin login
	w = c.do(http.MethodPost, "/api/v1/auth/admin/login", "", gin.H{
		"email":    "brand@test.io",
		"password": "supersecret1",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var creator models.User
	require.NoError(t, db.Where("email = ?", "creator@test.io").First(&creator).Error)

	c.do(http.MethodPost, "/api/v1/payment-methods", brandTok, gin.H{"gateway_ref": "pm_stub", "is_default": true})
	w = c.do(http.MethodPost, "/api/v1/contracts", brandTok, gin.H{
		"creator_id":   creator.ID,
		"title":        "Disputed campaign",
		"budget_cents": 100_000,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	contractID := uint(decode(t, w)["contract"].(map[string]interface{})["id"].(float64))
	w = c.do(http.MethodPost, fmt.Sprintf("/api/v1/contracts/%d/charge", contractID), brandTok, gin.H{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// creator opens a dispute
	w = c.do(http.MethodPost, fmt.Sprintf("/api/v1/contracts/%d/disputes", contractID), creatorTok, gin.H{
		"reason": "brand went silent",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	disputeID := uint(decode(t, w)["dispute"].(map[string]interface{})["id"].(float64))

	// only admins can resolve
	w = c.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/disputes/%d/resolve", disputeID), brandTok, gin.H{
		"resolution": "cancel",
		"reason":     "nope",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = c.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/disputes/%d/resolve", disputeID), adminTok, gin.H{
		"resolution": "cancel",
		"winner":     "brand",
		"reason":     "work never delivered",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var contract models.Contract
	require.NoError(t, db.First(&contract, contractID).Error)
	assert.Equal(t, domain.ContractCancelled, contract.Status)

	var jp models.JobPayment
	require.NoError(t, db.Where("contract_id = ?", contractID).First(&jp).Error)
	assert.Equal(t, domain.PaymentRefunded, jp.Status)

	// resolving again is rejected
	w = c.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/disputes/%d/resolve", disputeID), adminTok, gin.H{
		"resolution": "complete",
		"reason":     "again",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// dashboard reflects the state
	w = c.do(http.MethodGet, "/api/v1/admin/dashboard", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["total_brands"])
	assert.Equal(t, float64(1), stats["total_creators"])
}

func TestPayoutVerificationOverHTTP(t *testing.T) {
	c, db := newAPITest(t)
	brandTok := c.register("brand@test.io", domain.RoleBrand)
	creatorTok := c.register("creator@test.io", domain.RoleCreator)

	hash, _ := bcrypt.GenerateFromPassword([]byte("adminpass123"), bcrypt.DefaultCost)
	require.NoError(t, db.Create(&models.User{
		Email:        "admin2@test.io",
		Username:     "admin2",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}).Error)
	w := c.do(http.MethodPost, "/api/v1/auth/admin/login", "", gin.H{
		"email":    "admin2@test.io",
		"password": "adminpass123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	adminTok := decode(t, w)["access_token"].(string)

	var creator models.User
	require.NoError(t, db.Where("email = ?", "creator@test.io").First(&creator).Error)

	// full happy path up to a withdrawal
	c.do(http.MethodPost, "/api/v1/payment-methods", brandTok, gin.H{"gateway_ref": "pm_stub", "is_default": true})
	w = c.do(http.MethodPost, "/api/v1/contracts", brandTok, gin.H{
		"creator_id":   creator.ID,
		"title":        "Audited campaign",
		"budget_cents": 100_000,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	contractID := uint(decode(t, w)["contract"].(map[string]interface{})["id"].(float64))
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, fmt.Sprintf("/api/v1/contracts/%d/charge", contractID), brandTok, gin.H{}).Code)
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, fmt.Sprintf("/api/v1/contracts/%d/complete", contractID), creatorTok, gin.H{}).Code)
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, fmt.Sprintf("/api/v1/contracts/%d/reviews", contractID), brandTok, gin.H{"rating": 5}).Code)
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, fmt.Sprintf("/api/v1/contracts/%d/reviews", contractID), creatorTok, gin.H{"rating": 5}).Code)
	require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/api/v1/bank-account", creatorTok, gin.H{
		"bank_name":      "First Test Bank",
		"account_number": "0011223344",
		"account_name":   "Creator Person",
	}).Code)
	w = c.do(http.MethodPost, "/api/v1/withdrawals", creatorTok, gin.H{"amount_cents": 50_000})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	withdrawalID := uint(decode(t, w)["withdrawal"].(map[string]interface{})["id"].(float64))

	// pending withdrawal verifies as pending
	w = c.do(http.MethodGet, fmt.Sprintf("/api/v1/admin/withdrawals/%d/verify", withdrawalID), adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	verification := decode(t, w)["verification"].(map[string]interface{})
	assert.Equal(t, domain.VerificationPending, verification["status"])

	// settle, then it verifies clean
	w = c.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/withdrawals/%d/settle", withdrawalID), adminTok, gin.H{
		"provider_ref": "po_123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = c.do(http.MethodGet, fmt.Sprintf("/api/v1/admin/withdrawals/%d/verify", withdrawalID), adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	verification = decode(t, w)["verification"].(map[string]interface{})
	assert.Equal(t, domain.VerificationPassed, verification["status"])
}
