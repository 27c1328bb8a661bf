package market_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rinde17/investerra-app/internal/market"
	"github.com/Rinde17/investerra-app/internal/market/mock"
)

const (
	slug   = "montlucon-03100"
	zoneID = "-110282"
)

func TestEstimator_Estimate(t *testing.T) {
	tests := []struct {
		name      string
		provider  *mock.Provider
		wantPrice float64
		wantOK    bool
	}{
		{
			name: "mean of serviced listings rounded",
			provider: mock.New().WithZone(slug, zoneID).WithListings(zoneID,
				mock.Listing("Terrain viabilisé, belle exposition", 40),
				mock.Listing("", 45.56),
				mock.Listing("Terrain plat", 50),
			),
			wantPrice: 45.19,
			wantOK:    true,
		},
		{
			name: "negated listing excluded even with a price",
			provider: mock.New().WithZone(slug, zoneID).WithListings(zoneID,
				mock.Listing("Beau terrain À VIABILISER proche centre", 10),
				mock.Listing("Terrain constructible", 60),
			),
			wantPrice: 60,
			wantOK:    true,
		},
		{
			name: "listings without price ignored",
			provider: mock.New().WithZone(slug, zoneID).WithListings(zoneID,
				market.Observation{},
				mock.Listing("terrain", 80),
			),
			wantPrice: 80,
			wantOK:    true,
		},
		{
			name:     "no zone",
			provider: mock.New(),
		},
		{
			name: "no qualifying listings",
			provider: mock.New().WithZone(slug, zoneID).WithListings(zoneID,
				mock.Listing("terrain non viabilisé", 30),
			),
		},
		{
			name:     "zone lookup failure",
			provider: mock.New().WithZoneError(market.ErrProviderUnavailable),
		},
		{
			name:     "query failure",
			provider: mock.New().WithZone(slug, zoneID).WithQueryError(market.ErrRateLimited),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := market.NewEstimator(tt.provider, market.DefaultNegationPhrases, nil, nil)

			price, ok := est.Estimate(context.Background(), "Montluçon", "03100")

			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.wantPrice, price, 1e-9)
		})
	}
}

func TestEstimator_QueryFilters(t *testing.T) {
	provider := mock.New().WithZone(slug, zoneID)
	est := market.NewEstimator(provider, nil, nil, nil)

	_, _ = est.Estimate(context.Background(), "Montluçon", "03100")

	assert.Equal(t, slug, provider.LastSlug)
	assert.Equal(t, market.DefaultFilters(), provider.LastFilters)
	assert.Equal(t, "buy", provider.LastFilters.FilterType)
	assert.Equal(t, "terrain", provider.LastFilters.PropertyType)
	assert.True(t, provider.LastFilters.OnTheMarket)
	assert.Equal(t, 24, provider.LastFilters.Size)
}

func TestEstimator_Lookup(t *testing.T) {
	provider := mock.New().WithZone(slug, zoneID).WithListings(zoneID,
		mock.Listing("terrain à viabiliser", 20),
		mock.Listing("terrain", 100),
		mock.Listing("terrain", 110),
	)
	est := market.NewEstimator(provider, market.DefaultNegationPhrases, nil, nil)

	got, err := est.Lookup(context.Background(), "Montluçon", "03100")
	require.NoError(t, err)

	assert.Equal(t, zoneID, got.ZoneID)
	assert.Equal(t, 3, got.Received)
	assert.Equal(t, 2, got.Kept)
	assert.True(t, got.Known)
	assert.Equal(t, 105.0, got.PricePerM2)
}

func TestEstimator_Lookup_ReturnsProviderError(t *testing.T) {
	provider := mock.New().WithZoneError(market.ErrProviderUnavailable)
	est := market.NewEstimator(provider, nil, nil, nil)

	_, err := est.Lookup(context.Background(), "Lyon", "69001")
	assert.True(t, errors.Is(err, market.ErrProviderUnavailable))
}

func TestEstimator_ZoneNotFoundIsUnknown(t *testing.T) {
	provider := mock.New().WithZoneError(market.ErrZoneNotFound)
	est := market.NewEstimator(provider, nil, nil, nil)

	got, err := est.Lookup(context.Background(), "Nowhere", "00000")
	require.NoError(t, err)
	assert.False(t, got.Known)
}

func TestEstimator_CancelledContext(t *testing.T) {
	provider := mock.New().WithZone(slug, zoneID).WithDelay(time.Second)
	est := market.NewEstimator(provider, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := est.Estimate(ctx, "Montluçon", "03100")
	assert.False(t, ok)
	_, queries := provider.Calls()
	assert.Zero(t, queries)
}

func TestNegationFilter(t *testing.T) {
	f := market.NewNegationFilter(market.DefaultNegationPhrases)

	tests := []struct {
		desc string
		want bool
	}{
		{"Terrain viabilisé de 800 m²", false},
		{"Terrain non viabilisé", true},
		{"La viabilisation du terrain est à prévoir", true},
		{"Il reste à viabiliser l'eau", true},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.Excludes(tt.desc), tt.desc)
	}

	custom := market.NewNegationFilter([]string{"To Be Serviced", "  "})
	assert.True(t, custom.Excludes("plot to be serviced by buyer"))
	assert.False(t, custom.Excludes("serviced plot"))
}
