package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dlwnstjrzz/autobomber-website/internal/shared/middleware"
	"github.com/dlwnstjrzz/autobomber-website/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(c.Config.App.SiteURL),
	)

	api := router.Group("/api")
	{
		api.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(api, c)
		setupReferralRoutes(api, c)
		setupTrialRoutes(api, c)
		setupDiscountRoutes(api, c)
		setupLicenseRoutes(api, c)
		setupActivationRoutes(api, c)
		setupPaymentRoutes(api, c)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(api *gin.RouterGroup, c *container.Container) {
	auth := api.Group("/auth")
	{
		auth.GET("/user", middleware.OptionalUser(c.Identity), c.AuthHandler.Me)
		auth.POST("/logout", c.AuthHandler.Logout)
	}
}

// ========================================
// REFERRAL ROUTES
// ========================================
func setupReferralRoutes(api *gin.RouterGroup, c *container.Container) {
	referrals := api.Group("/referrals")
	referrals.Use(middleware.RequireUser(c.Identity))
	{
		referrals.POST("/generate", c.ReferralHandler.GenerateCode)
		referrals.POST("/validate", c.ReferralHandler.ValidateCode)
		referrals.GET("/me", c.ReferralHandler.Me)
		referrals.POST("/withdrawals", c.ReferralHandler.CreateWithdrawal)
		referrals.GET("/withdrawals", c.ReferralHandler.ListWithdrawals)

		admin := referrals.Group("")
		admin.Use(middleware.RequireAdmin(c.AdminGate))
		{
			admin.GET("/list", c.ReferralHandler.AdminList)
			admin.PATCH("/withdrawals/:id", c.ReferralHandler.SettleWithdrawal)
		}
	}
}

// ========================================
// TRIAL ROUTES
// ========================================
func setupTrialRoutes(api *gin.RouterGroup, c *container.Container) {
	trial := api.Group("/trial")
	{
		trial.POST("/create", middleware.RequireUser(c.Identity), c.TrialHandler.Create)
		trial.GET("/status", middleware.RequireUser(c.Identity), c.TrialHandler.Status)
		// Key lookup is unauthenticated: the desktop client has no session.
		trial.GET("/:code", c.TrialHandler.GetByCode)
	}
}

// ========================================
// DISCOUNT ROUTES
// ========================================
func setupDiscountRoutes(api *gin.RouterGroup, c *container.Container) {
	discount := api.Group("/discount")
	discount.Use(middleware.RequireUser(c.Identity))
	{
		discount.POST("/create", c.DiscountHandler.Create)
		discount.GET("/status", c.DiscountHandler.Status)
	}
}

// ========================================
// LICENSE ROUTES
// ========================================
func setupLicenseRoutes(api *gin.RouterGroup, c *container.Container) {
	api.GET("/licenses", middleware.RequireUser(c.Identity), c.LicenseHandler.List)
	api.GET("/license/:orderId", middleware.RequireUser(c.Identity), c.LicenseHandler.GetByOrder)
}

// ========================================
// ACTIVATION ROUTES
// ========================================
func setupActivationRoutes(api *gin.RouterGroup, c *container.Container) {
	api.GET("/activation/:code", c.ActivationHandler.Activate)
}

// ========================================
// PAYMENT ROUTES
// ========================================
func setupPaymentRoutes(api *gin.RouterGroup, c *container.Container) {
	api.POST("/payment/prepare", middleware.RequireUser(c.Identity), c.PaymentHandler.Prepare)

	payments := api.Group("/payments")
	{
		// Optional resolve: a buyer with a dead session gets redirected
		// to the fail page instead of a bare 401 JSON body.
		payments.GET("/success", middleware.OptionalUser(c.Identity), c.PaymentHandler.Success)
		payments.GET("/fail", c.PaymentHandler.Fail)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   getEnv("APP_VERSION", "1.0.0"),
			"services":  gin.H{},
		}

		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
		}

		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.HealthCheck(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
