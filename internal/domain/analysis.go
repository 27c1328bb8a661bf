package domain

import "time"

// ValuationMetrics - numeric output of the metrics calculator.
type ValuationMetrics struct {
	PricePerM2                float64 `json:"price_m2"`
	MarketPricePerM2          float64 `json:"market_price_m2"`
	PriceDifferencePercentage float64 `json:"price_difference_percentage"`
	ViabilityCost             float64 `json:"viability_cost"`
	LotsPossible              int     `json:"lots_possible"`
	ResaleEstimateMin         float64 `json:"resale_estimate_min"`
	ResaleEstimateMax         float64 `json:"resale_estimate_max"`
	NetMarginEstimate         float64 `json:"net_margin_estimate"`
	ProfitMarginPercentage    float64 `json:"profit_margin_percentage"`
}

func (m ValuationMetrics) AverageResale() float64 {
	return (m.ResaleEstimateMin + m.ResaleEstimateMax) / 2
}

type RiskFinding struct {
	Type        RiskType  `json:"type"`
	Level       RiskLevel `json:"level"`
	Description string    `json:"description"`
}

type RiskAssessment struct {
	OverallRisk RiskLevel     `json:"overall_risk"`
	Findings    []RiskFinding `json:"specific_risks"`
}

// HighFindings returns findings rated high, in evaluation order.
func (r RiskAssessment) HighFindings() []RiskFinding {
	var out []RiskFinding
	for _, f := range r.Findings {
		if f.Level == RiskHigh {
			out = append(out, f)
		}
	}
	return out
}

type Recommendation struct {
	Type        RecommendationType `json:"overall_recommendation"`
	Comment     string             `json:"overall_comment"`
	Suggestions []string           `json:"specific_recommendations"`
}

type PriceAnalysis struct {
	Rating  Rating `json:"rating"`
	Comment string `json:"comment"`
}

type DevelopmentPotential struct {
	SurfaceM2    float64 `json:"surface_m2"`
	LotsPossible int     `json:"lots_possible"`
	Viabilised   bool    `json:"viabilised"`
	Rating       Rating  `json:"rating"`
	Comment      string  `json:"comment"`
}

type ProfitabilityAnalysis struct {
	Rating  Rating `json:"rating"`
	Comment string `json:"comment"`
}

// AnalysisDetails is stored as a JSON document next to the flat columns.
type AnalysisDetails struct {
	PriceAnalysis         PriceAnalysis         `json:"price_analysis"`
	DevelopmentPotential  DevelopmentPotential  `json:"development_potential"`
	ProfitabilityAnalysis ProfitabilityAnalysis `json:"profitability_analysis"`
	RiskAssessment        RiskAssessment        `json:"risk_assessment"`
	Recommendation        Recommendation        `json:"recommendations"`
}

type MarketPriceSource string

const (
	MarketPriceFromListings MarketPriceSource = "market"
	MarketPriceFromFallback MarketPriceSource = "fallback"
)

// Analysis - aggregate root, one per terrain. Always recomputed as a whole.
type Analysis struct {
	ID                 int64             `json:"id"`
	TerrainID          int64             `json:"terrain_id"`
	Metrics            ValuationMetrics  `json:"metrics"`
	AIScore            float64           `json:"ai_score"`
	ProfitabilityLabel Rating            `json:"profitability_label"`
	Risk               RiskAssessment    `json:"risk_assessment"`
	Recommendation     Recommendation    `json:"recommendation"`
	Details            AnalysisDetails   `json:"analysis_details"`
	MarketPriceSource  MarketPriceSource `json:"market_price_source"`
	AnalyzedAt         time.Time         `json:"analyzed_at"`
	CreatedAt          time.Time         `json:"created_at"`
}

func (a *Analysis) TotalInvestmentCost(purchasePrice float64) float64 {
	return purchasePrice + a.Metrics.ViabilityCost
}
