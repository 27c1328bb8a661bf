package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/Rinde17/investerra-app/internal/market"
	"github.com/Rinde17/investerra-app/internal/valuation"
)

// Policy bundles the tunable business tables of the valuation.
type Policy struct {
	Valuation       valuation.Policy     `mapstructure:"valuation"`
	FallbackPrices  market.FallbackTable `mapstructure:"fallback_prices"`
	NegationPhrases []string             `mapstructure:"negation_phrases"`
}

func DefaultPolicy() *Policy {
	return &Policy{
		Valuation:       valuation.DefaultPolicy(),
		FallbackPrices:  market.DefaultFallbackTable(),
		NegationPhrases: append([]string(nil), market.DefaultNegationPhrases...),
	}
}

// LoadPolicy overlays the YAML file at path on the defaults. Keys missing from
// the file keep their default; a list present in the file replaces the default list.
// An empty path returns the defaults.
func LoadPolicy(path string) (*Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read policy %q: %w", path, err)
	}

	if err := v.Unmarshal(p, func(dc *mapstructure.DecoderConfig) {
		dc.ZeroFields = true
	}); err != nil {
		return nil, fmt.Errorf("decode policy %q: %w", path, err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("policy %q: %w", path, err)
	}
	return p, nil
}

func (p *Policy) Validate() error {
	if err := p.Valuation.Validate(); err != nil {
		return err
	}
	if p.FallbackPrices.Default < 0 {
		return valuation.ErrNegativeCost
	}
	for _, r := range p.FallbackPrices.Ranges {
		if r.From > r.To || r.Price < 0 {
			return fmt.Errorf("fallback range %q: from/to or price out of order", r.Name)
		}
	}
	return nil
}
