// Package valuation turns terrain attributes and a market price per m²
// into metrics, a 0-100 score, a risk report and a recommendation.
// Everything in here is pure: no I/O, no clock, no randomness.
package valuation

import (
	"errors"
	"fmt"

	"github.com/Rinde17/investerra-app/internal/domain"
)

var (
	ErrEmptyBandTable      = errors.New("band table must have at least one band")
	ErrUnorderedBandTable  = errors.New("band thresholds must be strictly ordered")
	ErrInvalidLotSize      = errors.New("average lot size must be positive")
	ErrInvalidLotEfficency = errors.New("lot efficiency must be in (0, 1]")
	ErrInvalidResaleBand   = errors.New("resale factors must satisfy 0 <= low <= high")
	ErrNegativeCost        = errors.New("costs and rates must be non-negative")
)

// Band maps a threshold to a rating.
type Band struct {
	Threshold float64       `mapstructure:"threshold" json:"threshold"`
	Rating    domain.Rating `mapstructure:"rating" json:"rating"`
}

// BandTable is an ordered list of (threshold, rating) pairs evaluated once, first match wins.
// AtLeast=true matches value >= threshold (bands in descending order),
// AtLeast=false matches value <= threshold (bands in ascending order).
// Values matching no band get Otherwise, so the table is exhaustive.
type BandTable struct {
	AtLeast   bool          `mapstructure:"at_least" json:"at_least"`
	Bands     []Band        `mapstructure:"bands" json:"bands"`
	Otherwise domain.Rating `mapstructure:"otherwise" json:"otherwise"`
}

func (t BandTable) Classify(value float64) domain.Rating {
	for _, b := range t.Bands {
		if t.AtLeast && value >= b.Threshold {
			return b.Rating
		}
		if !t.AtLeast && value <= b.Threshold {
			return b.Rating
		}
	}
	return t.Otherwise
}

func (t BandTable) Validate() error {
	if len(t.Bands) == 0 {
		return ErrEmptyBandTable
	}
	for i, b := range t.Bands {
		if !b.Rating.IsValid() {
			return fmt.Errorf("band %d: %w", i, domain.ErrInvalidRating)
		}
		if i == 0 {
			continue
		}
		prev := t.Bands[i-1].Threshold
		if t.AtLeast && b.Threshold >= prev {
			return ErrUnorderedBandTable
		}
		if !t.AtLeast && b.Threshold <= prev {
			return ErrUnorderedBandTable
		}
	}
	if !t.Otherwise.IsValid() {
		return fmt.Errorf("otherwise: %w", domain.ErrInvalidRating)
	}
	return nil
}

// MarginTier - score bonus when net margin / price is strictly above MinRatio.
type MarginTier struct {
	MinRatio float64 `mapstructure:"min_ratio" json:"min_ratio"`
	Points   float64 `mapstructure:"points" json:"points"`
}

type ScoreWeights struct {
	Base float64 `mapstructure:"base"`

	UnderpricedRatio  float64 `mapstructure:"underpriced_ratio"`
	UnderpricedWeight float64 `mapstructure:"underpriced_weight"`
	OverpricedRatio   float64 `mapstructure:"overpriced_ratio"`
	OverpricedWeight  float64 `mapstructure:"overpriced_weight"`

	LargeSurfaceM2     float64 `mapstructure:"large_surface_m2"`
	LargeSurfaceBonus  float64 `mapstructure:"large_surface_bonus"`
	MediumSurfaceM2    float64 `mapstructure:"medium_surface_m2"`
	MediumSurfaceBonus float64 `mapstructure:"medium_surface_bonus"`

	ViabilisedBonus     float64 `mapstructure:"viabilised_bonus"`
	ViabilityPenaltyCap float64 `mapstructure:"viability_penalty_cap"`

	// tiers are checked in order, keep them by descending MinRatio
	MarginTiers           []MarginTier `mapstructure:"margin_tiers"`
	NegativeMarginPenalty float64      `mapstructure:"negative_margin_penalty"`
}

type RiskThresholds struct {
	PriceHighRatio       float64 `mapstructure:"price_high_ratio"`
	PriceMediumRatio     float64 `mapstructure:"price_medium_ratio"`
	ViabilityHighRatio   float64 `mapstructure:"viability_high_ratio"`
	ViabilityMediumRatio float64 `mapstructure:"viability_medium_ratio"`
	SmallSurfaceM2       float64 `mapstructure:"small_surface_m2"`
	SubdivisionMinLots   int     `mapstructure:"subdivision_min_lots"`
}

// Policy holds every tunable constant of the valuation model.
type Policy struct {
	// ViabilityCost is a flat placeholder estimate for connecting utilities.
	ViabilityCost      float64 `mapstructure:"viability_cost"`
	AverageLotSizeM2   float64 `mapstructure:"average_lot_size_m2"`
	LotEfficiency      float64 `mapstructure:"lot_efficiency"`
	ResaleLowFactor    float64 `mapstructure:"resale_low_factor"`
	ResaleHighFactor   float64 `mapstructure:"resale_high_factor"`
	IncidentalCostRate float64 `mapstructure:"incidental_cost_rate"`

	Score ScoreWeights   `mapstructure:"score"`
	Risk  RiskThresholds `mapstructure:"risk"`

	ScoreLabels          BandTable `mapstructure:"score_labels"`
	PriceRatings         BandTable `mapstructure:"price_ratings"`
	ProfitabilityRatings BandTable `mapstructure:"profitability_ratings"`
	DevelopmentRatings   BandTable `mapstructure:"development_ratings"`
}

func DefaultPolicy() Policy {
	return Policy{
		ViabilityCost:      10000,
		AverageLotSizeM2:   500,
		LotEfficiency:      0.75,
		ResaleLowFactor:    0.90,
		ResaleHighFactor:   1.10,
		IncidentalCostRate: 0.05,
		Score: ScoreWeights{
			Base:                50,
			UnderpricedRatio:    0.9,
			UnderpricedWeight:   15,
			OverpricedRatio:     1.1,
			OverpricedWeight:    10,
			LargeSurfaceM2:      2000,
			LargeSurfaceBonus:   10,
			MediumSurfaceM2:     1000,
			MediumSurfaceBonus:  5,
			ViabilisedBonus:     10,
			ViabilityPenaltyCap: 10,
			MarginTiers: []MarginTier{
				{MinRatio: 0.3, Points: 15},
				{MinRatio: 0.2, Points: 10},
				{MinRatio: 0.1, Points: 5},
			},
			NegativeMarginPenalty: 20,
		},
		Risk: RiskThresholds{
			PriceHighRatio:       1.15,
			PriceMediumRatio:     1.05,
			ViabilityHighRatio:   0.3,
			ViabilityMediumRatio: 0.15,
			SmallSurfaceM2:       500,
			SubdivisionMinLots:   3,
		},
		ScoreLabels: BandTable{
			AtLeast: true,
			Bands: []Band{
				{80, domain.RatingExcellent},
				{65, domain.RatingGood},
				{50, domain.RatingFair},
				{35, domain.RatingPoor},
			},
			Otherwise: domain.RatingVeryPoor,
		},
		// price difference vs market, in percent: lower is better
		PriceRatings: BandTable{
			AtLeast: false,
			Bands: []Band{
				{-15, domain.RatingExcellent},
				{-5, domain.RatingGood},
				{5, domain.RatingFair},
				{15, domain.RatingPoor},
			},
			Otherwise: domain.RatingVeryPoor,
		},
		ProfitabilityRatings: BandTable{
			AtLeast: true,
			Bands: []Band{
				{30, domain.RatingExcellent},
				{20, domain.RatingGood},
				{10, domain.RatingFair},
				{0, domain.RatingPoor},
			},
			Otherwise: domain.RatingVeryPoor,
		},
		// lots possible
		DevelopmentRatings: BandTable{
			AtLeast: true,
			Bands: []Band{
				{5, domain.RatingExcellent},
				{3, domain.RatingGood},
				{1, domain.RatingFair},
			},
			Otherwise: domain.RatingPoor,
		},
	}
}

func (p Policy) Validate() error {
	if p.AverageLotSizeM2 <= 0 {
		return ErrInvalidLotSize
	}
	if p.LotEfficiency <= 0 || p.LotEfficiency > 1 {
		return ErrInvalidLotEfficency
	}
	if p.ResaleLowFactor < 0 || p.ResaleLowFactor > p.ResaleHighFactor {
		return ErrInvalidResaleBand
	}
	if p.ViabilityCost < 0 || p.IncidentalCostRate < 0 {
		return ErrNegativeCost
	}

	tables := map[string]BandTable{
		"score_labels":          p.ScoreLabels,
		"price_ratings":         p.PriceRatings,
		"profitability_ratings": p.ProfitabilityRatings,
		"development_ratings":   p.DevelopmentRatings,
	}
	for name, t := range tables {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
