package api

import (
	"github.com/fincoach/billing/internal/config"
	"github.com/fincoach/billing/internal/logger"
	"github.com/fincoach/billing/internal/rest/middleware"
	"github.com/fincoach/billing/internal/types"
	"github.com/gin-gonic/gin"
)

func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.ErrorHandler(log))

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	router.GET("/plans", handlers.Plan.ListPlans)

	subscriptions := router.Group("/subscriptions")
	{
		subscriptions.GET("/current", handlers.Subscription.GetCurrent)
		subscriptions.POST("/upgrade", handlers.Subscription.Upgrade)
		subscriptions.POST("/cancel", handlers.Subscription.Cancel)
		subscriptions.POST("/reactivate", handlers.Subscription.Reactivate)
		subscriptions.POST("/discount", handlers.Subscription.ApplyDiscount)
	}

	payments := router.Group("/payments")
	{
		payments.GET("/history", handlers.Payment.History)
		payments.POST("/validate-discount", handlers.Payment.ValidateDiscount)
		payments.GET("/methods/:country", handlers.Payment.Methods)
		payments.GET("/:id/status", handlers.Payment.GetStatus)
		payments.POST("/:id/cancel", handlers.Payment.Cancel)
	}

	billing := router.Group("/billing")
	{
		billing.GET("/callback", handlers.Callback.HandleReturn)
	}
}
