// Package market estimates the local market price per m² of land from listings.
package market

import (
	"context"
	"errors"
)

var (
	ErrZoneNotFound        = errors.New("zone not found")
	ErrProviderUnavailable = errors.New("listings provider unavailable")
	ErrRateLimited         = errors.New("listings provider rate limit exceeded")
)

const (
	FilterTypeBuy       = "buy"
	PropertyTypeTerrain = "terrain"
	DefaultPageSize     = 24
)

// Observation - one listing as seen by the estimator. Both fields are optional.
type Observation struct {
	Description *string
	PricePerM2  *float64
}

type Filters struct {
	FilterType   string
	PropertyType string
	OnTheMarket  bool
	Size         int
}

func DefaultFilters() Filters {
	return Filters{
		FilterType:   FilterTypeBuy,
		PropertyType: PropertyTypeTerrain,
		OnTheMarket:  true,
		Size:         DefaultPageSize,
	}
}

// Provider is the listings source. ResolveZone returns ok=false when the
// locality is unknown to the provider.
type Provider interface {
	ResolveZone(ctx context.Context, slug string) (zoneID string, ok bool, err error)
	Query(ctx context.Context, zoneID string, filters Filters) ([]Observation, error)
}

// PriceEstimator returns the market price per m² for a locality, ok=false when unknown.
type PriceEstimator interface {
	Estimate(ctx context.Context, city, zip string) (float64, bool)
}
