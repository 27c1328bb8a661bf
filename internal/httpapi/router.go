// Package httpapi exposes terrains, analyses and market prices as a JSON API.
package httpapi

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Rinde17/investerra-app/internal/market"
	"github.com/Rinde17/investerra-app/internal/metrics"
	"github.com/Rinde17/investerra-app/internal/ratelimit"
	"github.com/Rinde17/investerra-app/internal/service"
)

type RouterConfig struct {
	Terrains service.TerrainService
	Users    service.UserService
	Prices   market.PriceEstimator

	// Limiter throttles the routes that reach the listings provider. Optional.
	Limiter *ratelimit.Limiter
	// Ready reports dependency health for /readyz. Optional.
	Ready func(ctx context.Context) error

	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(requestID())
	r.Use(recovery(cfg.Logger))
	r.Use(accessLog(cfg.Logger))
	r.Use(instrument(cfg.Metrics))

	h := &handlers{
		terrains: cfg.Terrains,
		prices:   cfg.Prices,
		logger:   cfg.Logger,
	}

	r.GET("/healthz", h.liveness)
	r.GET("/readyz", readiness(cfg.Ready))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api/v1")
	api.Use(ownerAuth(cfg.Users))

	throttled := throttle(cfg.Limiter, cfg.Metrics)

	terrains := api.Group("/terrains")
	terrains.GET("", h.listTerrains)
	terrains.POST("", throttled, h.createTerrain)
	terrains.GET("/:id", h.getTerrain)
	terrains.PUT("/:id", throttled, h.updateTerrain)
	terrains.DELETE("/:id", h.deleteTerrain)
	terrains.GET("/:id/analysis", h.getAnalysis)
	terrains.POST("/:id/analysis", throttled, h.reanalyze)

	api.GET("/market-price", throttled, h.marketPrice)

	return r
}
