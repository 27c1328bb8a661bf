package valuation

import (
	"math"

	"github.com/Rinde17/investerra-app/internal/domain"
)

// Calculator derives ValuationMetrics from a terrain and a market price per m².
type Calculator struct {
	policy Policy
}

func NewCalculator(policy Policy) *Calculator {
	return &Calculator{policy: policy}
}

// Compute never fails: a zero or negative denominator yields 0 for the
// affected metric. Negative inputs are the caller's problem and produce
// meaningless, but finite, numbers.
func (c *Calculator) Compute(t *domain.Terrain, marketPricePerM2 float64) domain.ValuationMetrics {
	p := c.policy

	m := domain.ValuationMetrics{
		PricePerM2:       safeDiv(t.Price, t.SurfaceM2),
		MarketPricePerM2: marketPricePerM2,
	}

	if marketPricePerM2 > 0 {
		m.PriceDifferencePercentage = (m.PricePerM2 - marketPricePerM2) / marketPricePerM2 * 100
	}

	if !t.Viabilised {
		m.ViabilityCost = p.ViabilityCost
	}

	m.LotsPossible = c.lotsPossible(t.SurfaceM2)

	resaleBase := t.SurfaceM2 * marketPricePerM2
	m.ResaleEstimateMin = resaleBase * p.ResaleLowFactor
	m.ResaleEstimateMax = resaleBase * p.ResaleHighFactor

	totalCost := t.Price + m.ViabilityCost + t.Price*p.IncidentalCostRate
	m.NetMarginEstimate = m.AverageResale() - totalCost
	m.ProfitMarginPercentage = safeDiv(m.NetMarginEstimate, t.Price) * 100

	return m
}

func (c *Calculator) lotsPossible(surface float64) int {
	lotSize := c.policy.AverageLotSizeM2
	if lotSize <= 0 || surface <= 0 {
		return 1
	}
	lots := int(math.Floor(surface / lotSize * c.policy.LotEfficiency))
	if lots < 1 {
		return 1
	}
	return lots
}

func safeDiv(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}
