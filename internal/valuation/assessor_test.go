package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rinde17/investerra-app/internal/domain"
)

func assess(tr *domain.Terrain, market float64) (domain.ValuationMetrics, domain.RiskAssessment, domain.Recommendation) {
	policy := DefaultPolicy()
	m := NewCalculator(policy).Compute(tr, market)
	risk, rec := NewAssessor(policy).Assess(tr, m)
	return m, risk, rec
}

func findingLevels(risk domain.RiskAssessment) map[domain.RiskType]domain.RiskLevel {
	out := make(map[domain.RiskType]domain.RiskLevel, len(risk.Findings))
	for _, f := range risk.Findings {
		out[f.Type] = f.Level
	}
	return out
}

func TestAssessor_ServicedUnderpricedLargeLot(t *testing.T) {
	_, risk, rec := assess(terrain(3000, 150000, true), 100)

	assert.Equal(t, domain.RiskLow, risk.OverallRisk)
	assert.Empty(t, risk.Findings)
	assert.Equal(t, domain.RecommendStrongBuy, rec.Type)
	assert.NotEmpty(t, rec.Comment)
	require.Len(t, rec.Suggestions, 1)
	assert.Contains(t, rec.Suggestions[0], "4 lots")
}

func TestAssessor_OverpricedSmallUnservicedLot(t *testing.T) {
	_, risk, rec := assess(terrain(300, 200000, false), 100)

	levels := findingLevels(risk)
	assert.Equal(t, domain.RiskHigh, levels[domain.RiskTypePrice])
	assert.Equal(t, domain.RiskMedium, levels[domain.RiskTypeSize])
	assert.Equal(t, domain.RiskLow, levels[domain.RiskTypeViability])
	assert.Equal(t, domain.RiskHigh, risk.OverallRisk)
	assert.Equal(t, domain.RecommendAvoid, rec.Type)

	// negotiate, servicing budget, one mitigation for the high price finding
	assert.Len(t, rec.Suggestions, 3)
	assert.Contains(t, rec.Suggestions[0], "Negotiate")
}

func TestAssessor_PriceRisk(t *testing.T) {
	tests := []struct {
		name      string
		price     float64
		market    float64
		wantLevel domain.RiskLevel
		wantFound bool
	}{
		{"well above market", 120000, 100, domain.RiskHigh, true},
		{"slightly above market", 110000, 100, domain.RiskMedium, true},
		{"at market", 100000, 100, "", false},
		{"no market reference", 500000, 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, risk, _ := assess(terrain(1000, tt.price, true), tt.market)
			level, found := findingLevels(risk)[domain.RiskTypePrice]
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantLevel, level)
		})
	}
}

func TestAssessor_ViabilityRisk(t *testing.T) {
	tests := []struct {
		name       string
		price      float64
		viabilised bool
		wantLevel  domain.RiskLevel
		wantFound  bool
	}{
		{"serviced", 10000, true, "", false},
		{"cost over 30 percent of price", 30000, false, domain.RiskHigh, true},
		{"cost over 15 percent of price", 50000, false, domain.RiskMedium, true},
		{"cost small compared to price", 200000, false, domain.RiskLow, true},
		{"free terrain", 0, false, domain.RiskHigh, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, risk, _ := assess(terrain(2000, tt.price, tt.viabilised), 100)
			level, found := findingLevels(risk)[domain.RiskTypeViability]
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantLevel, level)
		})
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name    string
		price   domain.Rating
		profit  domain.Rating
		overall domain.RiskLevel
		want    domain.RecommendationType
	}{
		{"all excellent low risk", domain.RatingExcellent, domain.RatingExcellent, domain.RiskLow, domain.RecommendStrongBuy},
		{"excellent but medium risk", domain.RatingExcellent, domain.RatingExcellent, domain.RiskMedium, domain.RecommendBuy},
		{"good and good", domain.RatingGood, domain.RatingGood, domain.RiskLow, domain.RecommendBuy},
		{"good ratings high risk", domain.RatingGood, domain.RatingExcellent, domain.RiskHigh, domain.RecommendAvoid},
		{"very poor profit", domain.RatingExcellent, domain.RatingVeryPoor, domain.RiskLow, domain.RecommendAvoid},
		{"poor price", domain.RatingPoor, domain.RatingGood, domain.RiskMedium, domain.RecommendCaution},
		{"poor profit", domain.RatingGood, domain.RatingPoor, domain.RiskLow, domain.RecommendCaution},
		{"fair everywhere", domain.RatingFair, domain.RatingFair, domain.RiskMedium, domain.RecommendNeutral},
		{"very poor price only", domain.RatingVeryPoor, domain.RatingFair, domain.RiskLow, domain.RecommendNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decide(tt.price, tt.profit, tt.overall); got != tt.want {
				t.Errorf("decide(%s, %s, %s) = %s, want %s", tt.price, tt.profit, tt.overall, got, tt.want)
			}
		})
	}
}

func TestAssessor_Ratings(t *testing.T) {
	a := NewAssessor(DefaultPolicy())

	priceTests := []struct {
		diff float64
		want domain.Rating
	}{
		{-50, domain.RatingExcellent},
		{-15, domain.RatingExcellent},
		{-14.9, domain.RatingGood},
		{-5, domain.RatingGood},
		{0, domain.RatingFair},
		{5, domain.RatingFair},
		{15, domain.RatingPoor},
		{15.01, domain.RatingVeryPoor},
	}
	for _, tt := range priceTests {
		got := a.PriceRating(domain.ValuationMetrics{PriceDifferencePercentage: tt.diff})
		assert.Equal(t, tt.want, got, "price diff %v", tt.diff)
	}

	profitTests := []struct {
		margin float64
		want   domain.Rating
	}{
		{95, domain.RatingExcellent},
		{30, domain.RatingExcellent},
		{29.99, domain.RatingGood},
		{10, domain.RatingFair},
		{0, domain.RatingPoor},
		{-0.01, domain.RatingVeryPoor},
	}
	for _, tt := range profitTests {
		got := a.ProfitabilityRating(domain.ValuationMetrics{ProfitMarginPercentage: tt.margin})
		assert.Equal(t, tt.want, got, "margin %v", tt.margin)
	}
}

func TestAssessor_DevelopmentPotential(t *testing.T) {
	a := NewAssessor(DefaultPolicy())

	tests := []struct {
		lots       int
		viabilised bool
		want       domain.Rating
		suffix     string
	}{
		{6, true, domain.RatingExcellent, "already serviced"},
		{3, false, domain.RatingGood, "not serviced"},
		{1, true, domain.RatingFair, "already serviced"},
	}

	for _, tt := range tests {
		tr := terrain(1000, 1000, tt.viabilised)
		got := a.DevelopmentPotential(tr, domain.ValuationMetrics{LotsPossible: tt.lots})
		assert.Equal(t, tt.want, got.Rating)
		assert.Equal(t, tt.lots, got.LotsPossible)
		assert.Contains(t, got.Comment, tt.suffix)
	}
}
