package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Rinde17/investerra-app/internal/domain"
	"github.com/Rinde17/investerra-app/internal/market"
	"github.com/Rinde17/investerra-app/internal/metrics"
	"github.com/Rinde17/investerra-app/internal/valuation"
)

// AnalysisService computes analyses. It never writes: persisting the result
// together with the terrain is the caller's job.
type AnalysisService interface {
	// CreateOrUpdate returns a fresh analysis for the terrain. When existing is
	// not nil its identity (ID, TerrainID, CreatedAt) is kept and every computed
	// field is replaced.
	CreateOrUpdate(ctx context.Context, terrain *domain.Terrain, existing *domain.Analysis) (*domain.Analysis, error)
	// Refresh is CreateOrUpdate after dropping any cached market price for the
	// terrain's locality.
	Refresh(ctx context.Context, terrain *domain.Terrain, existing *domain.Analysis) (*domain.Analysis, error)
}

// priceInvalidator is implemented by caching estimators.
type priceInvalidator interface {
	Invalidate(ctx context.Context, city, zip string) error
}

type AnalysisConfig struct {
	MarketTimeout time.Duration
}

type AnalysisDeps struct {
	Estimator market.PriceEstimator
	Fallback  market.FallbackTable
	Engine    *valuation.Engine
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Config    AnalysisConfig
	// Now defaults to time.Now.
	Now func() time.Time
}

type analysisService struct {
	estimator market.PriceEstimator
	fallback  market.FallbackTable
	engine    *valuation.Engine
	metrics   *metrics.Metrics
	logger    *zap.Logger
	config    AnalysisConfig
	now       func() time.Time
}

func NewAnalysisService(deps AnalysisDeps) AnalysisService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Engine == nil {
		deps.Engine = valuation.NewEngine(valuation.DefaultPolicy())
	}
	if deps.Config.MarketTimeout == 0 {
		deps.Config.MarketTimeout = 15 * time.Second
	}

	return &analysisService{
		estimator: deps.Estimator,
		fallback:  deps.Fallback,
		engine:    deps.Engine,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		config:    deps.Config,
		now:       deps.Now,
	}
}

func (s *analysisService) Refresh(ctx context.Context, terrain *domain.Terrain, existing *domain.Analysis) (*domain.Analysis, error) {
	if inv, ok := s.estimator.(priceInvalidator); ok {
		if err := inv.Invalidate(ctx, terrain.City, terrain.ZipCode); err != nil {
			// a stale cache entry only costs freshness
			s.logger.Warn("market price invalidation failed",
				zap.Int64("terrain_id", terrain.ID),
				zap.Error(err),
			)
		}
	}
	return s.CreateOrUpdate(ctx, terrain, existing)
}

func (s *analysisService) CreateOrUpdate(ctx context.Context, terrain *domain.Terrain, existing *domain.Analysis) (*domain.Analysis, error) {
	start := time.Now()
	trigger := "create"
	if existing != nil {
		trigger = "update"
	}

	if err := terrain.Validate(); err != nil {
		s.metrics.RecordAnalysis(trigger, "invalid", time.Since(start))
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	price, source := s.marketPrice(ctx, terrain)
	// the caller went away during the lookup: drop the result
	if err := ctx.Err(); err != nil {
		s.metrics.RecordAnalysis(trigger, "cancelled", time.Since(start))
		return nil, err
	}

	res := s.engine.Evaluate(terrain, price)
	now := s.now()

	analysis := &domain.Analysis{
		TerrainID:          terrain.ID,
		Metrics:            res.Metrics,
		AIScore:            res.Score,
		ProfitabilityLabel: res.Label,
		Risk:               res.Risk,
		Recommendation:     res.Recommendation,
		Details:            res.Details,
		MarketPriceSource:  source,
		AnalyzedAt:         now,
		CreatedAt:          now,
	}
	if existing != nil {
		analysis.ID = existing.ID
		analysis.CreatedAt = existing.CreatedAt
		if existing.TerrainID != 0 {
			analysis.TerrainID = existing.TerrainID
		}
	}

	s.metrics.RecordAnalysis(trigger, "success", time.Since(start))
	s.metrics.ObserveScore(res.Score)

	s.logger.Info("terrain analysed",
		zap.Int64("terrain_id", terrain.ID),
		zap.String("trigger", trigger),
		zap.Float64("market_price_m2", price),
		zap.String("market_price_source", string(source)),
		zap.Float64("ai_score", res.Score),
		zap.String("recommendation", res.Recommendation.Type.String()),
		zap.String("overall_risk", res.Risk.OverallRisk.String()),
	)

	return analysis, nil
}

func (s *analysisService) marketPrice(ctx context.Context, terrain *domain.Terrain) (float64, domain.MarketPriceSource) {
	if s.estimator != nil {
		lookupCtx, cancel := context.WithTimeout(ctx, s.config.MarketTimeout)
		price, ok := s.estimator.Estimate(lookupCtx, terrain.City, terrain.ZipCode)
		cancel()
		if ok && price > 0 {
			return price, domain.MarketPriceFromListings
		}
	}

	price := s.fallback.Price(terrain.ZipCode)
	s.metrics.RecordFallback()
	s.logger.Info("using fallback market price",
		zap.String("city", terrain.City),
		zap.String("zip", terrain.ZipCode),
		zap.Float64("market_price_m2", price),
	)
	return price, domain.MarketPriceFromFallback
}
