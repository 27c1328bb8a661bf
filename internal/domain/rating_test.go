package domain

import "testing"

func TestRiskLevel_Max(t *testing.T) {
	tests := []struct {
		a, b RiskLevel
		want RiskLevel
	}{
		{RiskLow, RiskLow, RiskLow},
		{RiskLow, RiskMedium, RiskMedium},
		{RiskMedium, RiskLow, RiskMedium},
		{RiskMedium, RiskHigh, RiskHigh},
		{RiskHigh, RiskMedium, RiskHigh},
		{"", RiskLow, RiskLow},
		{"", RiskMedium, RiskMedium},
	}

	for _, tt := range tests {
		t.Run(string(tt.a)+"_"+string(tt.b), func(t *testing.T) {
			if got := tt.a.Max(tt.b); got != tt.want {
				t.Errorf("Max() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRating_IsValid(t *testing.T) {
	for _, r := range []Rating{RatingExcellent, RatingGood, RatingFair, RatingPoor, RatingVeryPoor} {
		if !r.IsValid() {
			t.Errorf("%q should be valid", r)
		}
	}
	if Rating("average").IsValid() {
		t.Error("average is not a canonical rating")
	}
}

func TestRating_AtLeastGood(t *testing.T) {
	if !RatingExcellent.AtLeastGood() || !RatingGood.AtLeastGood() {
		t.Error("excellent and good should be at least good")
	}
	if RatingFair.AtLeastGood() {
		t.Error("fair should not be at least good")
	}
}

func TestRecommendationType_IsValid(t *testing.T) {
	for _, r := range []RecommendationType{RecommendStrongBuy, RecommendBuy, RecommendNeutral, RecommendCaution, RecommendAvoid} {
		if !r.IsValid() {
			t.Errorf("%q should be valid", r)
		}
	}
	if RecommendationType("hold").IsValid() {
		t.Error("hold should be invalid")
	}
}

func TestValuationMetrics_AverageResale(t *testing.T) {
	m := ValuationMetrics{ResaleEstimateMin: 270000, ResaleEstimateMax: 330000}
	if got := m.AverageResale(); got != 300000 {
		t.Errorf("AverageResale() = %v, want 300000", got)
	}
}

func TestAnalysis_TotalInvestmentCost(t *testing.T) {
	a := &Analysis{Metrics: ValuationMetrics{ViabilityCost: 20000}}
	if got := a.TotalInvestmentCost(150000); got != 170000 {
		t.Errorf("TotalInvestmentCost() = %v, want 170000", got)
	}
	serviced := &Analysis{}
	if got := serviced.TotalInvestmentCost(150000); got != 150000 {
		t.Errorf("TotalInvestmentCost() without servicing = %v, want 150000", got)
	}
}

func TestRiskAssessment_HighFindings(t *testing.T) {
	r := RiskAssessment{Findings: []RiskFinding{
		{Type: RiskTypePrice, Level: RiskHigh},
		{Type: RiskTypeSize, Level: RiskMedium},
		{Type: RiskTypeViability, Level: RiskHigh},
	}}

	got := r.HighFindings()
	if len(got) != 2 || got[0].Type != RiskTypePrice || got[1].Type != RiskTypeViability {
		t.Errorf("HighFindings() = %+v", got)
	}
}
