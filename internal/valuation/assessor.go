package valuation

import (
	"fmt"

	"github.com/Rinde17/investerra-app/internal/domain"
)

// Assessor rates a terrain against its metrics and derives risks and a recommendation.
type Assessor struct {
	policy Policy
}

func NewAssessor(policy Policy) *Assessor {
	return &Assessor{policy: policy}
}

func (a *Assessor) PriceRating(m domain.ValuationMetrics) domain.Rating {
	return a.policy.PriceRatings.Classify(m.PriceDifferencePercentage)
}

func (a *Assessor) ProfitabilityRating(m domain.ValuationMetrics) domain.Rating {
	return a.policy.ProfitabilityRatings.Classify(m.ProfitMarginPercentage)
}

func (a *Assessor) DevelopmentRating(m domain.ValuationMetrics) domain.Rating {
	return a.policy.DevelopmentRatings.Classify(float64(m.LotsPossible))
}

func (a *Assessor) Assess(t *domain.Terrain, m domain.ValuationMetrics) (domain.RiskAssessment, domain.Recommendation) {
	risk := a.assessRisk(t, m)
	return risk, a.recommend(t, m, risk)
}

func (a *Assessor) assessRisk(t *domain.Terrain, m domain.ValuationMetrics) domain.RiskAssessment {
	var findings []domain.RiskFinding
	if f, ok := a.priceRisk(m); ok {
		findings = append(findings, f)
	}
	if f, ok := a.viabilityRisk(t, m); ok {
		findings = append(findings, f)
	}
	if f, ok := a.sizeRisk(t); ok {
		findings = append(findings, f)
	}

	overall := domain.RiskLow
	for _, f := range findings {
		overall = overall.Max(f.Level)
	}
	return domain.RiskAssessment{OverallRisk: overall, Findings: findings}
}

// no market reference, nothing to compare against
func (a *Assessor) priceRisk(m domain.ValuationMetrics) (domain.RiskFinding, bool) {
	if m.MarketPricePerM2 <= 0 {
		return domain.RiskFinding{}, false
	}
	r := a.policy.Risk
	switch {
	case m.PricePerM2 > m.MarketPricePerM2*r.PriceHighRatio:
		return domain.RiskFinding{
			Type:  domain.RiskTypePrice,
			Level: domain.RiskHigh,
			Description: fmt.Sprintf("The price per m² (%.2f) is well above the market price (%.2f).",
				m.PricePerM2, m.MarketPricePerM2),
		}, true
	case m.PricePerM2 > m.MarketPricePerM2*r.PriceMediumRatio:
		return domain.RiskFinding{
			Type:  domain.RiskTypePrice,
			Level: domain.RiskMedium,
			Description: fmt.Sprintf("The price per m² (%.2f) is slightly above the market price (%.2f).",
				m.PricePerM2, m.MarketPricePerM2),
		}, true
	}
	return domain.RiskFinding{}, false
}

// always produces a finding for an unserviced terrain
func (a *Assessor) viabilityRisk(t *domain.Terrain, m domain.ValuationMetrics) (domain.RiskFinding, bool) {
	if t.Viabilised {
		return domain.RiskFinding{}, false
	}
	r := a.policy.Risk

	level := domain.RiskLow
	switch {
	case m.ViabilityCost > 0 && t.Price <= 0:
		level = domain.RiskHigh
	case t.Price > 0 && m.ViabilityCost/t.Price > r.ViabilityHighRatio:
		level = domain.RiskHigh
	case t.Price > 0 && m.ViabilityCost/t.Price > r.ViabilityMediumRatio:
		level = domain.RiskMedium
	}

	desc := fmt.Sprintf("The terrain is not serviced; servicing is estimated at %.0f.", m.ViabilityCost)
	if level != domain.RiskLow {
		desc = fmt.Sprintf("Servicing is estimated at %.0f, a significant share of the purchase price.", m.ViabilityCost)
	}
	return domain.RiskFinding{Type: domain.RiskTypeViability, Level: level, Description: desc}, true
}

func (a *Assessor) sizeRisk(t *domain.Terrain) (domain.RiskFinding, bool) {
	if t.SurfaceM2 >= a.policy.Risk.SmallSurfaceM2 {
		return domain.RiskFinding{}, false
	}
	return domain.RiskFinding{
		Type:  domain.RiskTypeSize,
		Level: domain.RiskMedium,
		Description: fmt.Sprintf("A surface of %.0f m² limits development and resale options.",
			t.SurfaceM2),
	}, true
}

func (a *Assessor) recommend(t *domain.Terrain, m domain.ValuationMetrics, risk domain.RiskAssessment) domain.Recommendation {
	price := a.PriceRating(m)
	profit := a.ProfitabilityRating(m)

	typ := decide(price, profit, risk.OverallRisk)
	return domain.Recommendation{
		Type:        typ,
		Comment:     recommendationComments[typ],
		Suggestions: a.suggestions(t, m, price, risk),
	}
}

// decide applies the recommendation table, first match wins.
func decide(price, profit domain.Rating, overall domain.RiskLevel) domain.RecommendationType {
	switch {
	case price == domain.RatingExcellent && profit == domain.RatingExcellent && overall == domain.RiskLow:
		return domain.RecommendStrongBuy
	case price.AtLeastGood() && profit.AtLeastGood() && overall != domain.RiskHigh:
		return domain.RecommendBuy
	case profit == domain.RatingVeryPoor || overall == domain.RiskHigh:
		return domain.RecommendAvoid
	case price == domain.RatingPoor || profit == domain.RatingPoor:
		return domain.RecommendCaution
	}
	return domain.RecommendNeutral
}

var recommendationComments = map[domain.RecommendationType]string{
	domain.RecommendStrongBuy: "Excellent opportunity: the terrain is priced below market, highly profitable and carries little risk.",
	domain.RecommendBuy:       "Good opportunity: price and profitability are favourable and the risks are manageable.",
	domain.RecommendNeutral:   "Average opportunity: weigh it against other terrains before deciding.",
	domain.RecommendCaution:   "Proceed with caution: the price or the expected profitability is weak.",
	domain.RecommendAvoid:     "Not recommended: the expected profitability is too low or the risks are too high.",
}

var mitigations = map[domain.RiskType]string{
	domain.RiskTypePrice:     "Get an independent appraisal before committing at this price.",
	domain.RiskTypeViability: "Request firm quotes for the servicing works before signing.",
	domain.RiskTypeSize:      "Check local zoning rules for what can be built on a small plot.",
}

func (a *Assessor) suggestions(t *domain.Terrain, m domain.ValuationMetrics, price domain.Rating, risk domain.RiskAssessment) []string {
	out := make([]string, 0, 4)

	if price == domain.RatingPoor || price == domain.RatingVeryPoor {
		out = append(out, fmt.Sprintf("Negotiate the price: it is %.1f%% above the local market.",
			m.PriceDifferencePercentage))
	}
	if m.LotsPossible >= a.policy.Risk.SubdivisionMinLots {
		out = append(out, fmt.Sprintf("Consider subdividing into %d lots to increase profitability.",
			m.LotsPossible))
	}
	if !t.Viabilised {
		out = append(out, fmt.Sprintf("Budget about %.0f for servicing (water, electricity, sewage).",
			m.ViabilityCost))
	}
	for _, f := range risk.HighFindings() {
		if s, ok := mitigations[f.Type]; ok {
			out = append(out, s)
		}
	}
	return out
}

func (a *Assessor) PriceAnalysis(m domain.ValuationMetrics) domain.PriceAnalysis {
	rating := a.PriceRating(m)
	return domain.PriceAnalysis{Rating: rating, Comment: priceComments[rating]}
}

func (a *Assessor) ProfitabilityAnalysis(m domain.ValuationMetrics) domain.ProfitabilityAnalysis {
	rating := a.ProfitabilityRating(m)
	return domain.ProfitabilityAnalysis{Rating: rating, Comment: profitabilityComments[rating]}
}

func (a *Assessor) DevelopmentPotential(t *domain.Terrain, m domain.ValuationMetrics) domain.DevelopmentPotential {
	rating := a.DevelopmentRating(m)
	comment := developmentComments[rating]
	if t.Viabilised {
		comment += " The terrain is already serviced, which is a real advantage."
	} else {
		comment += " The terrain is not serviced and will need additional investment."
	}
	return domain.DevelopmentPotential{
		SurfaceM2:    t.SurfaceM2,
		LotsPossible: m.LotsPossible,
		Viabilised:   t.Viabilised,
		Rating:       rating,
		Comment:      comment,
	}
}

var priceComments = map[domain.Rating]string{
	domain.RatingExcellent: "The price is well below the local market.",
	domain.RatingGood:      "The price is below the local market.",
	domain.RatingFair:      "The price is in line with the local market.",
	domain.RatingPoor:      "The price is above the local market.",
	domain.RatingVeryPoor:  "The price is well above the local market.",
}

var profitabilityComments = map[domain.Rating]string{
	domain.RatingExcellent: "Very high expected margin.",
	domain.RatingGood:      "Comfortable expected margin.",
	domain.RatingFair:      "Moderate expected margin.",
	domain.RatingPoor:      "Thin expected margin.",
	domain.RatingVeryPoor:  "The operation is expected to lose money.",
}

var developmentComments = map[domain.Rating]string{
	domain.RatingExcellent: "Large enough for a multi-lot subdivision.",
	domain.RatingGood:      "Room for a small subdivision.",
	domain.RatingFair:      "Suitable for a single build or a two-lot split.",
	domain.RatingPoor:      "Limited development potential.",
	domain.RatingVeryPoor:  "Limited development potential.",
}
