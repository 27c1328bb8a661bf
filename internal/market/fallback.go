package market

import (
	"strconv"
	"strings"
)

// ZipRange maps an inclusive numeric postal code range to a price per m².
type ZipRange struct {
	Name  string  `mapstructure:"name"`
	From  int     `mapstructure:"from"`
	To    int     `mapstructure:"to"`
	Price float64 `mapstructure:"price"`
}

// FallbackTable is consulted when no market price could be estimated.
// Ranges are checked in order, first match wins.
type FallbackTable struct {
	Ranges  []ZipRange `mapstructure:"ranges"`
	Default float64    `mapstructure:"default"`
}

func DefaultFallbackTable() FallbackTable {
	return FallbackTable{
		Ranges: []ZipRange{
			{Name: "paris", From: 75000, To: 75999, Price: 500},
			{Name: "marseille", From: 13000, To: 13999, Price: 300},
		},
		Default: 100,
	}
}

// Price - zip codes that are not numeric get the default.
func (t FallbackTable) Price(zip string) float64 {
	code, err := strconv.Atoi(strings.TrimSpace(zip))
	if err != nil {
		return t.Default
	}
	for _, r := range t.Ranges {
		if code >= r.From && code <= r.To {
			return r.Price
		}
	}
	return t.Default
}
