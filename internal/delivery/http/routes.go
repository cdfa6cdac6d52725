package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/compliancelens/backend/config"
	"github.com/compliancelens/backend/internal/infrastructure/cache"
	"github.com/compliancelens/backend/internal/metrics"
)

// RouterOptions carries the optional infrastructure wired into the router
type RouterOptions struct {
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer // defaults to the global registry
	Limiter  *cache.LimiterStore // nil disables per-IP limiting
}

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, opts RouterOptions) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(MetricsMiddleware(opts.Metrics))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check and metrics endpoints
	router.GET("/health", handler.HealthCheck)

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// API v1 routes
	v1 := router.Group("/api/v1")
	if opts.Limiter != nil {
		v1.Use(RateLimitMiddleware(opts.Limiter))
	}
	{
		v1.GET("/model", handler.ModelInfo)

		compliance := v1.Group("/compliance")
		{
			compliance.POST("/classify", handler.Classify)
			compliance.POST("/classify/batch", handler.ClassifyBatch)
		}

		products := v1.Group("/products")
		{
			products.GET("", handler.Products)
			products.GET("/summary", handler.Summary)
			products.GET("/stats", handler.Stats)
		}
	}

	return router
}
