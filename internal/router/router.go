package router

import (
	"time"

	"brandlink/config"
	"brandlink/internal/domain"
	"brandlink/internal/handler"
	"brandlink/internal/middleware"
	"brandlink/internal/repository"
	"brandlink/internal/service"
	"brandlink/internal/ws"
	"brandlink/pkg/cloudinary"
	"brandlink/pkg/payment"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers onto a gin engine.
// cld may be nil when uploads are not configured.
func Setup(cfg *config.Config, db *gorm.DB, cld cloudinary.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// repositories
	userRepo := repository.NewUserRepository(db)
	contractRepo := repository.NewContractRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	balanceRepo := repository.NewBalanceRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	withdrawRepo := repository.NewWithdrawalRepository(db)
	bankRepo := repository.NewBankAccountRepository(db)
	pmRepo := repository.NewPaymentMethodRepository(db)
	disputeRepo := repository.NewDisputeRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	// card gateway: stub in development, Stripe when a key is configured
	var gateway payment.Gateway
	if cfg.Stripe.SecretKey == "" {
		gateway = &payment.StubGateway{}
	} else {
		gateway = payment.NewStripeGateway(cfg.Stripe.BaseURL, cfg.Stripe.SecretKey)
	}

	// services
	hub := ws.NewHub()
	notifSvc := service.NewNotificationService(notifRepo, hub)
	authSvc := service.NewAuthService(cfg, userRepo)
	escrowSvc := service.NewEscrowService(db, cfg, gateway,
		contractRepo, paymentRepo, balanceRepo, reviewRepo,
		withdrawRepo, bankRepo, disputeRepo, auditRepo, notifSvc)
	auditor := service.NewPayoutAuditor(&cfg.Payment)

	// handlers
	authH := handler.NewAuthHandler(authSvc)
	googleH := handler.NewGoogleOAuthHandler(cfg, authSvc)
	userH := handler.NewUserHandler(userRepo)
	contractH := handler.NewContractHandler(cfg, contractRepo, userRepo, pmRepo, escrowSvc, gateway)
	reviewH := handler.NewReviewHandler(reviewRepo, escrowSvc)
	balanceH := handler.NewBalanceHandler(cfg, balanceRepo)
	withdrawH := handler.NewWithdrawalHandler(withdrawRepo, escrowSvc)
	bankH := handler.NewBankHandler(bankRepo)
	pmH := handler.NewPaymentMethodHandler(userRepo, pmRepo, gateway)
	notifH := handler.NewNotificationHandler(notifRepo)
	adminH := handler.NewAdminHandler(authSvc, adminRepo, disputeRepo, withdrawRepo, bankRepo, escrowSvc, auditor)
	uploadH := handler.NewUploadHandler(cld, userRepo)

	authLimiter := middleware.NewInMemoryRateLimiter(10, time.Minute)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	// public
	auth := api.Group("/auth")
	auth.Use(middleware.RateLimit(authLimiter))
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)
		auth.POST("/refresh", authH.Refresh)
		auth.GET("/google", googleH.Redirect)
		auth.GET("/google/callback", googleH.Callback)
		auth.POST("/google/token", googleH.Token)
		auth.POST("/admin/login", adminH.Login)
	}

	// authenticated
	authed := api.Group("")
	authed.Use(middleware.AuthRequired(&cfg.JWT))
	{
		authed.POST("/auth/change-password", authH.ChangePassword)
		authed.GET("/me", userH.Me)
		authed.PATCH("/me", userH.UpdateProfile)

		authed.POST("/uploads/avatar", uploadH.Avatar)

		contracts := authed.Group("/contracts")
		{
			contracts.POST("", middleware.RequireRole(domain.RoleBrand), contractH.Create)
			contracts.GET("", contractH.ListMine)
			contracts.GET("/:id", contractH.Get)
			contracts.POST("/:id/charge", middleware.RequireRole(domain.RoleBrand), contractH.Charge)
			contracts.POST("/:id/complete", middleware.RequireRole(domain.RoleCreator), contractH.Complete)
			contracts.POST("/:id/disputes", contractH.OpenDispute)
			contracts.POST("/:id/reviews", reviewH.Create)
			contracts.GET("/:id/reviews", reviewH.ListByContract)
		}

		brand := authed.Group("", middleware.RequireRole(domain.RoleBrand))
		{
			brand.POST("/payment-methods", pmH.Attach)
			brand.GET("/payment-methods", pmH.List)
		}

		creator := authed.Group("", middleware.RequireRole(domain.RoleCreator))
		{
			creator.GET("/balance", balanceH.Get)
			creator.GET("/balance/ledger", balanceH.ListLedger)
			creator.GET("/bank-account", bankH.Get)
			creator.PUT("/bank-account", bankH.Put)
			creator.POST("/withdrawals", withdrawH.Create)
			creator.GET("/withdrawals", withdrawH.ListMine)
			creator.POST("/uploads/deliverable", uploadH.Deliverable)
		}

		authed.GET("/notifications", notifH.List)
		authed.POST("/notifications/:id/read", notifH.MarkRead)
	}

	// admin
	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(&cfg.JWT), middleware.AdminRequired())
	{
		admin.GET("/dashboard", adminH.Dashboard)
		admin.GET("/users", adminH.ListUsers)
		admin.GET("/disputes", adminH.ListDisputes)
		admin.POST("/disputes/:id/resolve", adminH.ResolveDispute)
		admin.GET("/withdrawals", adminH.ListWithdrawals)
		admin.POST("/withdrawals/:id/settle", adminH.SettleWithdrawal)
		admin.POST("/withdrawals/:id/fail", adminH.FailWithdrawal)
		admin.GET("/withdrawals/:id/verify", adminH.VerifyPayout)
	}

	// websocket push for notifications
	r.GET("/ws/notifications", ws.UpgradeNotificationsWS(&cfg.JWT, hub))

	return r
}
