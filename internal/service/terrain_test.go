package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Rinde17/investerra-app/internal/cache/memory"
	"github.com/Rinde17/investerra-app/internal/domain"
	"github.com/Rinde17/investerra-app/internal/market"
	"github.com/Rinde17/investerra-app/internal/market/mock"
	"github.com/Rinde17/investerra-app/internal/repository"
)

type stubGeocoder struct {
	mu    sync.Mutex
	lat   float64
	lon   float64
	ok    bool
	calls int
}

func (g *stubGeocoder) Coordinates(ctx context.Context, city, zip string) (float64, float64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.lat, g.lon, g.ok
}

func (g *stubGeocoder) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type terrainFixture struct {
	svc       TerrainService
	terrains  *repository.MockTerrainRepository
	analyses  *repository.MockAnalysisRepository
	geocoder  *stubGeocoder
	estimator *mock.Estimator
}

func newTerrainFixture(cfg TerrainConfig) *terrainFixture {
	analyses := repository.NewMockAnalysisRepository()
	terrains := repository.NewMockTerrainRepository(analyses)
	geocoder := &stubGeocoder{lat: 44.84, lon: -0.58, ok: true}
	estimator := &mock.Estimator{Price: 100, Known: true}

	var mu sync.Mutex
	tick := fixedNow
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick = tick.Add(time.Minute)
		return tick
	}

	analyzer := NewAnalysisService(AnalysisDeps{
		Estimator: estimator,
		Fallback:  market.DefaultFallbackTable(),
		Logger:    zap.NewNop(),
		Now:       clock,
	})

	return &terrainFixture{
		svc:       NewTerrainService(terrains, analyses, analyzer, geocoder, cfg, zap.NewNop()),
		terrains:  terrains,
		analyses:  analyses,
		geocoder:  geocoder,
		estimator: estimator,
	}
}

func validInput() TerrainInput {
	return TerrainInput{
		Title:      "  Terrain Bordeaux  ",
		SurfaceM2:  3000,
		Price:      150000,
		City:       "Bordeaux",
		ZipCode:    "33000",
		Viabilised: true,
	}
}

func TestTerrainService_Create(t *testing.T) {
	f := newTerrainFixture(TerrainConfig{})

	res, err := f.svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)

	assert.NotZero(t, res.Terrain.ID)
	assert.Equal(t, "Terrain Bordeaux", res.Terrain.Title)
	assert.Equal(t, int64(1), res.Terrain.OwnerID)
	require.True(t, res.Terrain.HasCoordinates())
	assert.Equal(t, 44.84, *res.Terrain.Latitude)
	assert.Equal(t, -0.58, *res.Terrain.Longitude)

	require.NotNil(t, res.Analysis)
	assert.Equal(t, res.Terrain.ID, res.Analysis.TerrainID)
	assert.Equal(t, 92.5, res.Analysis.AIScore)

	stored, err := f.analyses.GetByTerrainID(context.Background(), res.Terrain.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Analysis.ID, stored.ID)
	assert.Equal(t, 1, f.geocoder.callCount())
}

func TestTerrainService_Create_KeepsGivenCoordinates(t *testing.T) {
	f := newTerrainFixture(TerrainConfig{})
	lat, lon := 45.0, 1.0
	in := validInput()
	in.Latitude, in.Longitude = &lat, &lon

	res, err := f.svc.Create(context.Background(), 1, in)
	require.NoError(t, err)

	assert.Zero(t, f.geocoder.callCount())
	assert.Equal(t, 45.0, *res.Terrain.Latitude)
}

func TestTerrainService_Create_GeocoderMiss(t *testing.T) {
	f := newTerrainFixture(TerrainConfig{})
	f.geocoder.ok = false

	res, err := f.svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)
	assert.False(t, res.Terrain.HasCoordinates())
	assert.NotNil(t, res.Analysis)
}

func TestTerrainService_Create_Invalid(t *testing.T) {
	f := newTerrainFixture(TerrainConfig{})
	in := validInput()
	in.SurfaceM2 = -1

	_, err := f.svc.Create(context.Background(), 1, in)
	assert.ErrorIs(t, err, domain.ErrInvalidTerrain)
	assert.ErrorIs(t, err, domain.ErrInvalidSurface)

	count, _ := f.terrains.CountByOwner(context.Background(), 1)
	assert.Zero(t, count)
	assert.Zero(t, f.estimator.CallCount())
}

func TestTerrainService_Create_LimitReached(t *testing.T) {
	f := newTerrainFixture(TerrainConfig{MaxTerrainsPerOwner: 1})

	_, err := f.svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), 1, validInput())
	assert.ErrorIs(t, err, domain.ErrTerrainLimitReached)

	// another owner has its own quota
	_, err = f.svc.Create(context.Background(), 2, validInput())
	assert.NoError(t, err)
}

func TestTerrainService_Create_WriteFailureLeavesNothing(t *testing.T) {
	f := newTerrainFixture(TerrainConfig{})
	f.terrains.WriteError = errors.New("connection reset")

	_, err := f.svc.Create(context.Background(), 1, validInput())
	require.Error(t, err)

	assert.Zero(t, f.analyses.Count())
	list, err := f.svc.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTerrainService_Get_Ownership(t *testing.T) {
	f := newTerrainFixture(TerrainConfig{})
	res, err := f.svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)

	got, err := f.svc.Get(context.Background(), 1, res.Terrain.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Analysis.ID, got.Analysis.ID)

	_, err = f.svc.Get(context.Background(), 2, res.Terrain.ID)
	assert.ErrorIs(t, err, domain.ErrTerrainNotFound)

	_, err = f.svc.Get(context.Background(), 1, 9999)
	assert.ErrorIs(t, err, domain.ErrTerrainNotFound)
}

func TestTerrainService_List(t *testing.T) {
	f := newTerrainFixture(TerrainConfig{})
	first, err := f.svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)
	second, err := f.svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), 2, validInput())
	require.NoError(t, err)

	list, err := f.svc.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.Terrain.ID, list[0].Terrain.ID)
	assert.Equal(t, first.Terrain.ID, list[1].Terrain.ID)
	for _, item := range list {
		require.NotNil(t, item.Analysis)
		assert.Equal(t, item.Terrain.ID, item.Analysis.TerrainID)
	}
}

func TestTerrainService_Update_CosmeticChangeKeepsAnalysis(t *testing.T) {
	f := newTerrainFixture(TerrainConfig{})
	created, err := f.svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)
	callsBefore := f.estimator.CallCount()

	in := validInput()
	in.Title = "Renamed"
	in.Description = "near the river"

	res, err := f.svc.Update(context.Background(), 1, created.Terrain.ID, in)
	require.NoError(t, err)

	assert.Equal(t, "Renamed", res.Terrain.Title)
	assert.Equal(t, callsBefore, f.estimator.CallCount())
	assert.Equal(t, created.Analysis.AnalyzedAt, res.Analysis.AnalyzedAt)
	assert.Equal(t, 1, f.geocoder.callCount())
	require.True(t, res.Terrain.HasCoordinates())
}

func TestTerrainService_Update_ValuationChangeRecomputes(t *testing.T) {
	f := newTerrainFixture(TerrainConfig{})
	created, err := f.svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Price = 600000

	res, err := f.svc.Update(context.Background(), 1, created.Terrain.ID, in)
	require.NoError(t, err)

	assert.Equal(t, created.Analysis.ID, res.Analysis.ID)
	assert.Equal(t, created.Analysis.CreatedAt, res.Analysis.CreatedAt)
	assert.True(t, res.Analysis.AnalyzedAt.After(created.Analysis.AnalyzedAt))
	assert.Equal(t, 200.0, res.Analysis.Metrics.PricePerM2)
	assert.Less(t, res.Analysis.AIScore, created.Analysis.AIScore)

	stored, err := f.analyses.GetByTerrainID(context.Background(), created.Terrain.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Analysis.AIScore, stored.AIScore)
	assert.Equal(t, 1, f.analyses.Count())
}

func TestTerrainService_Update_LocationChangeGeocodes(t *testing.T) {
	f := newTerrainFixture(TerrainConfig{})
	created, err := f.svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)

	f.geocoder.mu.Lock()
	f.geocoder.lat, f.geocoder.lon = 43.3, 5.37
	f.geocoder.mu.Unlock()

	in := validInput()
	in.City = "Marseille"
	in.ZipCode = "13001"

	res, err := f.svc.Update(context.Background(), 1, created.Terrain.ID, in)
	require.NoError(t, err)

	assert.Equal(t, 2, f.geocoder.callCount())
	assert.Equal(t, 43.3, *res.Terrain.Latitude)
	assert.Equal(t, 5.37, *res.Terrain.Longitude)
	// location alone does not trigger a new valuation
	assert.Equal(t, created.Analysis.AnalyzedAt, res.Analysis.AnalyzedAt)
}

func TestTerrainService_Update_ForeignTerrain(t *testing.T) {
	f := newTerrainFixture(TerrainConfig{})
	created, err := f.svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), 2, created.Terrain.ID, validInput())
	assert.ErrorIs(t, err, domain.ErrTerrainNotFound)
}

func TestTerrainService_Delete_Cascades(t *testing.T) {
	f := newTerrainFixture(TerrainConfig{})
	created, err := f.svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(context.Background(), 2, created.Terrain.ID), domain.ErrTerrainNotFound)
	assert.Equal(t, 1, f.analyses.Count())

	require.NoError(t, f.svc.Delete(context.Background(), 1, created.Terrain.ID))
	assert.Zero(t, f.analyses.Count())

	_, err = f.svc.Analysis(context.Background(), 1, created.Terrain.ID)
	assert.ErrorIs(t, err, domain.ErrTerrainNotFound)
}

func TestTerrainService_Reanalyze(t *testing.T) {
	f := newTerrainFixture(TerrainConfig{})
	created, err := f.svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)

	f.estimator.Price = 50

	a, err := f.svc.Reanalyze(context.Background(), 1, created.Terrain.ID)
	require.NoError(t, err)

	assert.Equal(t, created.Analysis.ID, a.ID)
	assert.Equal(t, 50.0, a.Metrics.MarketPricePerM2)

	stored, err := f.svc.Analysis(context.Background(), 1, created.Terrain.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, stored.Metrics.MarketPricePerM2)
	assert.Equal(t, a.AnalyzedAt, stored.AnalyzedAt)
}

func TestTerrainService_Reanalyze_BypassesPriceCache(t *testing.T) {
	priceCache := memory.New(time.Minute)
	defer priceCache.Stop()

	inner := &mock.Estimator{Price: 100, Known: true}
	cached := market.NewCachedEstimator(inner, priceCache, time.Hour, nil, zap.NewNop())

	analyses := repository.NewMockAnalysisRepository()
	terrains := repository.NewMockTerrainRepository(analyses)
	analyzer := NewAnalysisService(AnalysisDeps{
		Estimator: cached,
		Fallback:  market.DefaultFallbackTable(),
		Logger:    zap.NewNop(),
	})
	svc := NewTerrainService(terrains, analyses, analyzer, nil, TerrainConfig{}, zap.NewNop())

	created, err := svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)
	assert.Equal(t, 100.0, created.Analysis.Metrics.MarketPricePerM2)

	inner.Price = 200

	// a plain read of the locality is still served from the cache
	price, ok := cached.Estimate(context.Background(), "Bordeaux", "33000")
	require.True(t, ok)
	assert.Equal(t, 100.0, price)
	assert.Equal(t, 1, inner.CallCount())

	a, err := svc.Reanalyze(context.Background(), 1, created.Terrain.ID)
	require.NoError(t, err)
	assert.Equal(t, 200.0, a.Metrics.MarketPricePerM2)
	assert.Equal(t, 2, inner.CallCount())

	// the fresh price is cached again
	price, ok = cached.Estimate(context.Background(), "Bordeaux", "33000")
	require.True(t, ok)
	assert.Equal(t, 200.0, price)
	assert.Equal(t, 2, inner.CallCount())
}
