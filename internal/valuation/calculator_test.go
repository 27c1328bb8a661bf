package valuation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rinde17/investerra-app/internal/domain"
)

func terrain(surface, price float64, viabilised bool) *domain.Terrain {
	return &domain.Terrain{
		Title:      "Test plot",
		City:       "Montluçon",
		ZipCode:    "03100",
		SurfaceM2:  surface,
		Price:      price,
		Viabilised: viabilised,
	}
}

func TestCalculator_Compute_ServicedUnderpricedLargeLot(t *testing.T) {
	calc := NewCalculator(DefaultPolicy())

	m := calc.Compute(terrain(3000, 150000, true), 100)

	assert.InDelta(t, 50, m.PricePerM2, 1e-9)
	assert.InDelta(t, 100, m.MarketPricePerM2, 1e-9)
	assert.InDelta(t, -50, m.PriceDifferencePercentage, 1e-9)
	assert.Zero(t, m.ViabilityCost)
	assert.Equal(t, 4, m.LotsPossible)
	assert.InDelta(t, 270000, m.ResaleEstimateMin, 1e-6)
	assert.InDelta(t, 330000, m.ResaleEstimateMax, 1e-6)
	assert.InDelta(t, 142500, m.NetMarginEstimate, 1e-6)
	assert.InDelta(t, 95, m.ProfitMarginPercentage, 1e-9)
}

func TestCalculator_Compute_NotServiced(t *testing.T) {
	calc := NewCalculator(DefaultPolicy())

	m := calc.Compute(terrain(300, 200000, false), 100)

	assert.Equal(t, 10000.0, m.ViabilityCost)
	assert.Equal(t, 1, m.LotsPossible)
	assert.InDelta(t, 666.67, m.PricePerM2, 0.01)
	// 30000 - (200000 + 10000 + 10000)
	assert.InDelta(t, -190000, m.NetMarginEstimate, 1e-6)
}

func TestCalculator_Compute_DivisionGuards(t *testing.T) {
	calc := NewCalculator(DefaultPolicy())

	tests := []struct {
		name    string
		terrain *domain.Terrain
		market  float64
		check   func(t *testing.T, m domain.ValuationMetrics)
	}{
		{
			name:    "zero surface",
			terrain: terrain(0, 100000, true),
			market:  100,
			check: func(t *testing.T, m domain.ValuationMetrics) {
				assert.Zero(t, m.PricePerM2)
				assert.Equal(t, 1, m.LotsPossible)
			},
		},
		{
			name:    "zero price",
			terrain: terrain(1000, 0, true),
			market:  100,
			check: func(t *testing.T, m domain.ValuationMetrics) {
				assert.Zero(t, m.ProfitMarginPercentage)
			},
		},
		{
			name:    "zero market price",
			terrain: terrain(1000, 100000, true),
			market:  0,
			check: func(t *testing.T, m domain.ValuationMetrics) {
				assert.Zero(t, m.PriceDifferencePercentage)
				assert.Zero(t, m.ResaleEstimateMin)
			},
		},
		{
			name:    "negative market price",
			terrain: terrain(1000, 100000, false),
			market:  -10,
			check: func(t *testing.T, m domain.ValuationMetrics) {
				assert.Zero(t, m.PriceDifferencePercentage)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := calc.Compute(tt.terrain, tt.market)
			for _, v := range []float64{
				m.PricePerM2, m.PriceDifferencePercentage, m.ResaleEstimateMin,
				m.ResaleEstimateMax, m.NetMarginEstimate, m.ProfitMarginPercentage,
			} {
				require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "non-finite metric %v", v)
			}
			tt.check(t, m)
		})
	}
}

func TestCalculator_Compute_Idempotent(t *testing.T) {
	calc := NewCalculator(DefaultPolicy())
	tr := terrain(1234.56, 98765.43, false)

	first := calc.Compute(tr, 87.21)
	second := calc.Compute(tr, 87.21)

	assert.Equal(t, first, second)
}

func TestCalculator_Compute_ResaleOrdering(t *testing.T) {
	calc := NewCalculator(DefaultPolicy())

	for _, surface := range []float64{0, 1, 250, 499.99, 500, 2000, 10000} {
		for _, market := range []float64{0, 12.5, 100, 450} {
			m := calc.Compute(terrain(surface, 50000, false), market)
			assert.LessOrEqual(t, m.ResaleEstimateMin, m.ResaleEstimateMax,
				"surface=%v market=%v", surface, market)
		}
	}
}

func TestCalculator_Compute_MarginDecreasesWithPrice(t *testing.T) {
	calc := NewCalculator(DefaultPolicy())

	prev := math.Inf(1)
	for _, price := range []float64{0, 1000, 50000, 150000, 400000} {
		m := calc.Compute(terrain(2000, price, false), 120)
		assert.Less(t, m.NetMarginEstimate, prev, "price=%v", price)
		prev = m.NetMarginEstimate
	}
}

func TestCalculator_Compute_LotsPossible(t *testing.T) {
	calc := NewCalculator(DefaultPolicy())

	tests := []struct {
		surface float64
		want    int
	}{
		{0, 1},
		{300, 1},
		{1333, 1},
		{1334, 2},
		{3000, 4},
		{3333.4, 5},
	}

	for _, tt := range tests {
		got := calc.Compute(terrain(tt.surface, 1, true), 100).LotsPossible
		if got != tt.want {
			t.Errorf("LotsPossible(%v) = %d, want %d", tt.surface, got, tt.want)
		}
	}
}
