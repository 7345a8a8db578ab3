package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"streamhub-backend-go/internal/config"
	"streamhub-backend-go/internal/core"
	"streamhub-backend-go/internal/db"
	"streamhub-backend-go/internal/middleware"
	"streamhub-backend-go/internal/models"
)

// SetupRoutes wires every endpoint. Global middleware (logging, recovery,
// CORS) is applied to the router in main before this runs.
func SetupRoutes(
	router *gin.Engine,
	appConfig *config.Config,
	logger *zap.Logger,
	tokens *core.TokenManager,
	subRepo db.SubscriptionRepository,
	authService core.AuthService,
	subscriptionService core.SubscriptionService,
	planService core.PlanService,
	catalogService core.CatalogService,
	viewerService core.ViewerService,
	reminderService core.ReminderService,
	processor core.PaymentProcessor,
) {
	authMW := middleware.NewAuthMiddleware(tokens)
	subGate := middleware.NewSubscriptionGate(subRepo, logger)

	authHandler := NewAuthHandler(authService, logger)
	adminHandler := NewAdminHandler(authService, logger)
	videoHandler := NewVideoHandler(catalogService, logger)
	seriesHandler := NewSeriesHandler(catalogService, logger)
	pricingHandler := NewPricingHandler(planService, logger)
	billingHandler := NewBillingHandler(subscriptionService, processor, appConfig.StripeWebhookSecret, logger)
	userHandler := NewUserHandler(viewerService, logger)
	reminderHandler := NewReminderHandler(reminderService, logger)

	requireAuth := authMW.RequireAuth()
	requireAdmin := middleware.RequireRole(models.RoleAdmin)

	apiGroup := router.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", requireAuth, authHandler.Logout)
			auth.GET("/profile", requireAuth, authHandler.Profile)
		}

		admin := apiGroup.Group("/admin")
		{
			admin.POST("/login", adminHandler.Login)
			admin.POST("/create", requireAuth, requireAdmin, adminHandler.CreateAdmin)
			admin.GET("/stats", requireAuth, requireAdmin, adminHandler.Stats)
			admin.GET("/users", requireAuth, requireAdmin, adminHandler.ListUsers)
		}

		video := apiGroup.Group("/video", requireAuth, requireAdmin)
		{
			video.POST("/upload-url", videoHandler.UploadURL)
			video.POST("", videoHandler.Create)
			video.GET("", videoHandler.List)
			video.GET("/:id", videoHandler.Get)
			video.PUT("/:id", videoHandler.Update)
			video.DELETE("/:id", videoHandler.Delete)
			video.POST("/:id/views", videoHandler.IncrementViews)
		}

		series := apiGroup.Group("/series", requireAuth, requireAdmin)
		{
			series.POST("", seriesHandler.Create)
			series.GET("", seriesHandler.List)
			series.GET("/:id", seriesHandler.Get)
			series.PUT("/:id", seriesHandler.Update)
			series.DELETE("/:id", seriesHandler.Delete)
		}

		pricing := apiGroup.Group("/pricing")
		{
			pricing.GET("", pricingHandler.List)
			pricing.GET("/:id", pricingHandler.Get)
			pricing.POST("", requireAuth, requireAdmin, pricingHandler.Create)
			pricing.PUT("/:id", requireAuth, requireAdmin, pricingHandler.Update)
			pricing.DELETE("/:id", requireAuth, requireAdmin, pricingHandler.Delete)
			pricing.POST("/:id/activate", requireAuth, requireAdmin, pricingHandler.Activate)
			pricing.POST("/:id/deactivate", requireAuth, requireAdmin, pricingHandler.Deactivate)
		}

		stripeGroup := apiGroup.Group("/stripe")
		{
			stripeGroup.GET("/plans", pricingHandler.List)
			// Authenticated by signature, not by token.
			stripeGroup.POST("/webhook", billingHandler.Webhook)
		}

		subscriptionGroup := apiGroup.Group("/subscription", requireAuth)
		{
			subscriptionGroup.POST("/checkout", billingHandler.CreateCheckoutSession)
			subscriptionGroup.GET("", billingHandler.GetSubscription)
			subscriptionGroup.POST("/cancel", billingHandler.CancelSubscription)
			subscriptionGroup.POST("/reactivate", billingHandler.ReactivateSubscription)
		}

		user := apiGroup.Group("/user", requireAuth)
		{
			user.GET("/videos", userHandler.ListVideos)
			user.GET("/videos/:id", userHandler.GetVideo)
			user.GET("/series", userHandler.ListSeries)
			user.GET("/series/:id", userHandler.GetSeries)
			user.GET("/videos/:id/stream", subGate.RequireSubscription(), userHandler.Stream)
			user.POST("/videos/:id/progress", userHandler.ReportProgress)
			user.GET("/continue-watching", userHandler.ContinueWatching)
			user.GET("/progress/summary", userHandler.ProgressSummary)
		}

		reminder := apiGroup.Group("/reminder", requireAuth)
		{
			reminder.POST("", reminderHandler.Create)
			reminder.GET("", reminderHandler.List)
			reminder.GET("/pending", reminderHandler.ListPending)
			reminder.PUT("/:id", reminderHandler.Update)
			reminder.DELETE("/:id", reminderHandler.Delete)
			reminder.POST("/check-notifications", reminderHandler.CheckNotifications)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	logger.Info("API routes configured")
}
