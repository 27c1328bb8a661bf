package valuation

import (
	"math"

	"github.com/Rinde17/investerra-app/internal/domain"
)

const (
	MinScore = 0.0
	MaxScore = 100.0
)

// Scorer implements the additive point model: start from a base and adjust
// for price against market, size, viability and profitability.
type Scorer struct {
	policy Policy
}

func NewScorer(policy Policy) *Scorer {
	return &Scorer{policy: policy}
}

func (s *Scorer) Score(t *domain.Terrain, m domain.ValuationMetrics) float64 {
	w := s.policy.Score

	score := w.Base
	score += s.priceAdjustment(m)
	score += s.sizeAdjustment(t.SurfaceM2)
	score += s.viabilityAdjustment(t, m)
	score += s.profitabilityAdjustment(t, m)

	return math.Max(MinScore, math.Min(MaxScore, score))
}

func (s *Scorer) Label(score float64) domain.Rating {
	return s.policy.ScoreLabels.Classify(score)
}

func (s *Scorer) priceAdjustment(m domain.ValuationMetrics) float64 {
	if m.MarketPricePerM2 <= 0 {
		return 0
	}
	w := s.policy.Score
	ratio := m.PricePerM2 / m.MarketPricePerM2
	switch {
	case ratio < w.UnderpricedRatio:
		return w.UnderpricedWeight * (1 - ratio)
	case ratio > w.OverpricedRatio:
		return -w.OverpricedWeight * (ratio - 1)
	}
	return 0
}

func (s *Scorer) sizeAdjustment(surface float64) float64 {
	w := s.policy.Score
	switch {
	case surface > w.LargeSurfaceM2:
		return w.LargeSurfaceBonus
	case surface > w.MediumSurfaceM2:
		return w.MediumSurfaceBonus
	}
	return 0
}

// a free terrain that still needs servicing takes the full penalty
func (s *Scorer) viabilityAdjustment(t *domain.Terrain, m domain.ValuationMetrics) float64 {
	w := s.policy.Score
	if t.Viabilised {
		return w.ViabilisedBonus
	}
	if m.ViabilityCost <= 0 {
		return 0
	}
	if t.Price <= 0 {
		return -w.ViabilityPenaltyCap
	}
	return -math.Min(w.ViabilityPenaltyCap, m.ViabilityCost/t.Price*100)
}

func (s *Scorer) profitabilityAdjustment(t *domain.Terrain, m domain.ValuationMetrics) float64 {
	w := s.policy.Score
	ratio := safeDiv(m.NetMarginEstimate, t.Price)
	for _, tier := range w.MarginTiers {
		if ratio > tier.MinRatio {
			return tier.Points
		}
	}
	if ratio < 0 {
		return -w.NegativeMarginPenalty
	}
	return 0
}
