package market

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/Rinde17/investerra-app/internal/metrics"
)

// Estimate is the detailed result of one lookup.
type Estimate struct {
	Slug       string
	ZoneID     string
	Received   int
	Kept       int
	PricePerM2 float64
	Known      bool
}

type Estimator struct {
	provider Provider
	filter   *NegationFilter
	filters  Filters
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewEstimator(provider Provider, negations []string, m *metrics.Metrics, logger *zap.Logger) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{
		provider: provider,
		filter:   NewNegationFilter(negations),
		filters:  DefaultFilters(),
		metrics:  m,
		logger:   logger,
	}
}

// Estimate never fails: provider errors are logged and reported as unknown.
func (e *Estimator) Estimate(ctx context.Context, city, zip string) (float64, bool) {
	est, err := e.Lookup(ctx, city, zip)
	if err != nil {
		e.metrics.RecordMarketLookup("error")
		e.logger.Warn("market price lookup failed",
			zap.String("slug", est.Slug),
			zap.Error(err),
		)
		return 0, false
	}
	if !est.Known {
		e.metrics.RecordMarketLookup("unknown")
		e.logger.Info("market price unknown",
			zap.String("slug", est.Slug),
			zap.String("zone_id", est.ZoneID),
			zap.Int("received", est.Received),
		)
		return 0, false
	}

	e.metrics.RecordMarketLookup("market")
	e.logger.Debug("market price estimated",
		zap.String("slug", est.Slug),
		zap.String("zone_id", est.ZoneID),
		zap.Int("received", est.Received),
		zap.Int("kept", est.Kept),
		zap.Float64("price_m2", est.PricePerM2),
	)
	return est.PricePerM2, true
}

// Lookup runs the full estimation and returns provider errors to the caller.
// A locality without zone or without usable listings is not an error.
func (e *Estimator) Lookup(ctx context.Context, city, zip string) (Estimate, error) {
	est := Estimate{Slug: Slug(city, zip)}

	zoneID, ok, err := e.provider.ResolveZone(ctx, est.Slug)
	if errors.Is(err, ErrZoneNotFound) {
		return est, nil
	}
	if err != nil {
		return est, fmt.Errorf("resolve zone: %w", err)
	}
	if !ok || zoneID == "" {
		return est, nil
	}
	est.ZoneID = zoneID

	observations, err := e.provider.Query(ctx, zoneID, e.filters)
	if err != nil {
		return est, fmt.Errorf("query listings: %w", err)
	}
	est.Received = len(observations)

	mean, kept := e.mean(observations)
	est.Kept = kept
	if kept == 0 {
		return est, nil
	}
	est.PricePerM2 = roundCents(mean)
	est.Known = true
	return est, nil
}

func (e *Estimator) mean(observations []Observation) (float64, int) {
	var sum float64
	var n int
	for _, o := range observations {
		if o.Description != nil && e.filter.Excludes(*o.Description) {
			continue
		}
		if o.PricePerM2 == nil {
			continue
		}
		v := *o.PricePerM2
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
