package domain

// Rating - five-level classification shared by the profitability label,
// the price, profitability and development sub-analyses.
type Rating string

const (
	RatingExcellent Rating = "excellent"
	RatingGood      Rating = "good"
	RatingFair      Rating = "fair"
	RatingPoor      Rating = "poor"
	RatingVeryPoor  Rating = "very_poor"
)

func (r Rating) IsValid() bool {
	switch r {
	case RatingExcellent, RatingGood, RatingFair, RatingPoor, RatingVeryPoor:
		return true
	}
	return false
}

func (r Rating) String() string { return string(r) }

// AtLeastGood - excellent or good.
func (r Rating) AtLeastGood() bool {
	return r == RatingExcellent || r == RatingGood
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

func (l RiskLevel) IsValid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

func (l RiskLevel) String() string { return string(l) }

func (l RiskLevel) severity() int {
	switch l {
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	default:
		return 0
	}
}

// Max returns the more severe of the two levels.
func (l RiskLevel) Max(other RiskLevel) RiskLevel {
	if other.severity() > l.severity() {
		return other
	}
	if !l.IsValid() {
		return RiskLow
	}
	return l
}

type RiskType string

const (
	RiskTypePrice     RiskType = "price"
	RiskTypeViability RiskType = "viability"
	RiskTypeSize      RiskType = "size"
)

type RecommendationType string

const (
	RecommendStrongBuy RecommendationType = "strong_buy"
	RecommendBuy       RecommendationType = "buy"
	RecommendNeutral   RecommendationType = "neutral"
	RecommendCaution   RecommendationType = "caution"
	RecommendAvoid     RecommendationType = "avoid"
)

func (r RecommendationType) IsValid() bool {
	switch r {
	case RecommendStrongBuy, RecommendBuy, RecommendNeutral, RecommendCaution, RecommendAvoid:
		return true
	}
	return false
}

func (r RecommendationType) String() string { return string(r) }
