package main

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/feedbacklens/internal/handlers"
	"github.com/huangang/feedbacklens/internal/middleware"
	"github.com/huangang/feedbacklens/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(middleware.RequestID(), logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(svc.cfg.Server.CORSOrigins))

	reviewHandler := handlers.NewReviewHandler(svc.reviewService)
	healthHandler := handlers.NewHealthHandler(svc.db, svc.taskQueue, svc.llm)
	metricsHandler := handlers.NewMetricsHandler(svc.db, svc.reviewService, svc.usageService, svc.taskQueue)
	usageHandler := handlers.NewAIUsageHandler(svc.usageService)

	r.GET("/health", healthHandler.CheckHealth)
	r.GET("/metrics", metricsHandler.Metrics)
	r.GET("/ui-config.js", handlers.UIConfig(&svc.cfg.UI))

	// Review routes are served both at the root and under /api so the pages
	// work with either API base URL.
	for _, group := range []*gin.RouterGroup{r.Group(""), r.Group("/api")} {
		group.POST("/reviews", svc.reviewLimiter.Middleware(), reviewHandler.Create)
		group.GET("/reviews", reviewHandler.List)
		group.GET("/reviews/analytics", reviewHandler.Analytics)
		group.GET("/reviews/:id", reviewHandler.GetByID)
	}

	usage := r.Group("/api/ai-usage")
	{
		usage.GET("/stats", usageHandler.GetStats)
		usage.GET("/daily", usageHandler.GetDailyTrend)
		usage.GET("/providers", usageHandler.GetProviderBreakdown)
	}

	registerStatic(r, staticFiles)
}
