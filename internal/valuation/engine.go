package valuation

import "github.com/Rinde17/investerra-app/internal/domain"

// Result is everything the engine derives from one terrain and one market price.
type Result struct {
	Metrics        domain.ValuationMetrics
	Score          float64
	Label          domain.Rating
	Risk           domain.RiskAssessment
	Recommendation domain.Recommendation
	Details        domain.AnalysisDetails
}

type Engine struct {
	calculator *Calculator
	scorer     *Scorer
	assessor   *Assessor
}

func NewEngine(policy Policy) *Engine {
	return &Engine{
		calculator: NewCalculator(policy),
		scorer:     NewScorer(policy),
		assessor:   NewAssessor(policy),
	}
}

func (e *Engine) Evaluate(t *domain.Terrain, marketPricePerM2 float64) Result {
	metrics := e.calculator.Compute(t, marketPricePerM2)
	score := e.scorer.Score(t, metrics)
	risk, rec := e.assessor.Assess(t, metrics)

	return Result{
		Metrics:        metrics,
		Score:          score,
		Label:          e.scorer.Label(score),
		Risk:           risk,
		Recommendation: rec,
		Details: domain.AnalysisDetails{
			PriceAnalysis:         e.assessor.PriceAnalysis(metrics),
			DevelopmentPotential:  e.assessor.DevelopmentPotential(t, metrics),
			ProfitabilityAnalysis: e.assessor.ProfitabilityAnalysis(metrics),
			RiskAssessment:        risk,
			Recommendation:        rec,
		},
	}
}
