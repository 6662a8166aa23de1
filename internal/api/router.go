package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BaldrVivaldelli/thoth-trading/internal/cache"
	"github.com/BaldrVivaldelli/thoth-trading/internal/config"
	"github.com/BaldrVivaldelli/thoth-trading/internal/engine"
	"github.com/BaldrVivaldelli/thoth-trading/internal/metrics"
	"github.com/BaldrVivaldelli/thoth-trading/internal/middleware"
)

// RegisterRoutes wires all endpoints onto r. Market data reads are
// public; order entry requires an authenticated trader.
func RegisterRoutes(r *gin.Engine, eng *engine.Engine, redisCache *cache.RedisCache, cfg *config.Config, m *metrics.Metrics) {
	authMiddleware := middleware.NewAuthMiddleware(middleware.DefaultAuthConfig())
	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimitConfig())

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogging(m))

	h := NewHandler(eng, redisCache, cfg.SubmitTimeout)

	r.GET("/health", h.Health)
	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api")
	{
		api.GET("/symbols", h.ListSymbols)
		api.GET("/symbols/:symbol/book", h.GetBook)
		api.GET("/symbols/:symbol/stats", h.GetStatistics)
		api.GET("/symbols/:symbol/ticker", h.GetTicker)
		api.GET("/symbols/:symbol/trades", h.GetTrades)

		protected := api.Group("")
		protected.Use(authMiddleware.Gin())
		protected.Use(rateLimiter.Gin())
		{
			protected.POST("/orders", h.PlaceOrder)
			protected.GET("/orders/:id", h.GetOrder)
			protected.DELETE("/orders/:id", h.CancelOrder)
		}
	}
}
