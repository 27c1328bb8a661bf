package cli

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Rinde17/investerra-app/internal/cache"
	"github.com/Rinde17/investerra-app/internal/cache/memory"
	"github.com/Rinde17/investerra-app/internal/cache/redis"
	"github.com/Rinde17/investerra-app/internal/config"
	"github.com/Rinde17/investerra-app/internal/geocoding"
	"github.com/Rinde17/investerra-app/internal/market"
	"github.com/Rinde17/investerra-app/internal/market/bienici"
	"github.com/Rinde17/investerra-app/internal/metrics"
	"github.com/Rinde17/investerra-app/internal/service"
	"github.com/Rinde17/investerra-app/internal/valuation"
)

const cachePrefix = "investerra:"

func newListingsClient(cfg config.MarketConfig, m *metrics.Metrics, logger *zap.Logger) *bienici.Client {
	return bienici.New(bienici.Config{
		SearchURL:         cfg.SearchURL,
		PlaceURL:          cfg.PlaceURL,
		AccessToken:       cfg.AccessToken,
		AccountID:         cfg.AccountID,
		Timeout:           cfg.RequestTimeout,
		Attempts:          cfg.Attempts,
		Backoff:           cfg.Backoff,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	}, m, logger)
}

func (a *app) newEstimator(m *metrics.Metrics) *market.Estimator {
	client := newListingsClient(a.cfg.Market, m, a.logger)
	return market.NewEstimator(client, a.policy.NegationPhrases, m, a.logger)
}

// openCache returns the configured price cache and its release func.
func openCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, func(), error) {
	switch cfg.Type {
	case config.CacheRedis:
		c := redis.New(redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cachePrefix,
		})
		if err := c.Ping(ctx); err != nil {
			_ = c.Close()
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil
	default:
		c := memory.New(10 * time.Minute)
		return c, c.Stop, nil
	}
}

func (a *app) newGeocoder(m *metrics.Metrics) service.Geocoder {
	if !a.cfg.Geocoding.Enabled {
		return nil
	}
	return geocoding.New(geocoding.Config{
		BaseURL: a.cfg.Geocoding.BaseURL,
		Timeout: a.cfg.Geocoding.Timeout,
	}, m, a.logger)
}

// newAnalyzer builds the analysis service. A nil estimator means every
// analysis uses the regional fallback price.
func (a *app) newAnalyzer(prices market.PriceEstimator, m *metrics.Metrics) service.AnalysisService {
	return service.NewAnalysisService(service.AnalysisDeps{
		Estimator: prices,
		Fallback:  a.policy.FallbackPrices,
		Engine:    valuation.NewEngine(a.policy.Valuation),
		Metrics:   m,
		Logger:    a.logger,
		Config: service.AnalysisConfig{
			MarketTimeout: a.cfg.Market.LookupTimeout,
		},
	})
}

func requireDatabase(cfg *config.Config) error {
	if err := cfg.RequireDatabase(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
