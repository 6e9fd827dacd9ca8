package http

import (
	"github.com/gin-gonic/gin"
	"github.com/medilingo/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	if cfg.RateLimit.PerIP > 0 {
		router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	}

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API routes. Paths match what the web client calls; no version prefix.
	api := router.Group("/api")
	{
		api.POST("/img-analyze", handler.AnalyzeImage)
		api.POST("/confirmMed", handler.ConfirmMedicine)
		api.POST("/fda", handler.GetDrugLabel)
		api.POST("/watsonx", handler.GenerateText)

		api.POST("/lookup", handler.Lookup)
		api.POST("/upload", handler.Upload)
		api.GET("/explanation/:token", handler.GetExplanation)

		api.GET("/settings", handler.GetSettings)
		api.PUT("/settings", handler.PutSettings)
	}

	return router
}
