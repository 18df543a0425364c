package http

import (
	"github.com/foodlens/catalog/config"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("/search", handler.SearchProducts)
			products.GET("/:code", handler.GetProduct)
		}

		v1.GET("/categories", handler.ListCategories)
		v1.GET("/categories/:id/products", handler.CategoryProducts)

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handler.CreateSession)
			sessions.GET("/:id", handler.GetSession)
			sessions.DELETE("/:id", handler.DeleteSession)
			sessions.PUT("/:id/text", handler.SetSearchText)
			sessions.POST("/:id/commit", handler.CommitSearch)
			sessions.POST("/:id/more", handler.LoadMore)
			sessions.POST("/:id/browse", handler.Browse)
			sessions.PUT("/:id/category", handler.SetCategory)
			sessions.PUT("/:id/sort", handler.SetSort)
		}
	}

	return router
}
