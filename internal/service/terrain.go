package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Rinde17/investerra-app/internal/domain"
	"github.com/Rinde17/investerra-app/internal/repository"
)

// Geocoder resolves a locality to coordinates. ok is false when the locality is unknown
// or the lookup failed; both are treated the same way by the terrain service.
type Geocoder interface {
	Coordinates(ctx context.Context, city, zip string) (lat, lon float64, ok bool)
}

// TerrainInput carries the user-editable fields of a terrain.
type TerrainInput struct {
	Title          string
	Description    string
	SurfaceM2      float64
	Price          float64
	City           string
	ZipCode        string
	Latitude       *float64
	Longitude      *float64
	Viabilised     bool
	SourceURL      string
	SourcePlatform string
}

type TerrainWithAnalysis struct {
	Terrain  *domain.Terrain
	Analysis *domain.Analysis
}

type TerrainService interface {
	Create(ctx context.Context, ownerID int64, in TerrainInput) (*TerrainWithAnalysis, error)
	Get(ctx context.Context, ownerID, id int64) (*TerrainWithAnalysis, error)
	List(ctx context.Context, ownerID int64) ([]TerrainWithAnalysis, error)
	Update(ctx context.Context, ownerID, id int64, in TerrainInput) (*TerrainWithAnalysis, error)
	Delete(ctx context.Context, ownerID, id int64) error
	// Reanalyze recomputes the analysis regardless of what changed.
	Reanalyze(ctx context.Context, ownerID, id int64) (*domain.Analysis, error)
	Analysis(ctx context.Context, ownerID, id int64) (*domain.Analysis, error)
}

type TerrainConfig struct {
	// MaxTerrainsPerOwner disables the limit when 0.
	MaxTerrainsPerOwner int
}

type terrainService struct {
	terrains repository.TerrainRepository
	analyses repository.AnalysisRepository
	analyzer AnalysisService
	geocoder Geocoder
	config   TerrainConfig
	logger   *zap.Logger
}

// NewTerrainService wires the terrain workflow. geocoder may be nil.
func NewTerrainService(
	terrains repository.TerrainRepository,
	analyses repository.AnalysisRepository,
	analyzer AnalysisService,
	geocoder Geocoder,
	config TerrainConfig,
	logger *zap.Logger,
) TerrainService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &terrainService{
		terrains: terrains,
		analyses: analyses,
		analyzer: analyzer,
		geocoder: geocoder,
		config:   config,
		logger:   logger,
	}
}

func (s *terrainService) Create(ctx context.Context, ownerID int64, in TerrainInput) (*TerrainWithAnalysis, error) {
	terrain := in.toTerrain()
	terrain.OwnerID = ownerID
	terrain.Sanitize()
	if err := terrain.Validate(); err != nil {
		return nil, err
	}

	if s.config.MaxTerrainsPerOwner > 0 {
		count, err := s.terrains.CountByOwner(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("count terrains: %w", err)
		}
		if count >= s.config.MaxTerrainsPerOwner {
			return nil, domain.ErrTerrainLimitReached
		}
	}

	analysis, err := s.prepare(ctx, terrain, nil, !terrain.HasCoordinates(), true)
	if err != nil {
		return nil, err
	}

	if err := s.terrains.CreateWithAnalysis(ctx, terrain, analysis); err != nil {
		return nil, fmt.Errorf("save terrain: %w", err)
	}

	s.logger.Info("terrain created",
		zap.Int64("terrain_id", terrain.ID),
		zap.Int64("owner_id", ownerID),
		zap.Float64("ai_score", analysis.AIScore),
	)

	return &TerrainWithAnalysis{Terrain: terrain, Analysis: analysis}, nil
}

func (s *terrainService) Get(ctx context.Context, ownerID, id int64) (*TerrainWithAnalysis, error) {
	terrain, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	analysis, err := s.analyses.GetByTerrainID(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrAnalysisNotFound) {
		return nil, fmt.Errorf("get analysis: %w", err)
	}

	return &TerrainWithAnalysis{Terrain: terrain, Analysis: analysis}, nil
}

func (s *terrainService) List(ctx context.Context, ownerID int64) ([]TerrainWithAnalysis, error) {
	terrains, err := s.terrains.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list terrains: %w", err)
	}
	if len(terrains) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(terrains))
	for i := range terrains {
		ids[i] = terrains[i].ID
	}
	analyses, err := s.analyses.ListByTerrainIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}

	out := make([]TerrainWithAnalysis, len(terrains))
	for i := range terrains {
		out[i] = TerrainWithAnalysis{
			Terrain:  &terrains[i],
			Analysis: analyses[terrains[i].ID],
		}
	}
	return out, nil
}

func (s *terrainService) Update(ctx context.Context, ownerID, id int64, in TerrainInput) (*TerrainWithAnalysis, error) {
	prev, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	terrain := in.toTerrain()
	terrain.ID = prev.ID
	terrain.OwnerID = prev.OwnerID
	terrain.CreatedAt = prev.CreatedAt
	terrain.Sanitize()

	geocode := false
	if in.Latitude == nil && in.Longitude == nil {
		if terrain.LocationChanged(prev) {
			geocode = true
		} else {
			terrain.Latitude, terrain.Longitude = prev.Latitude, prev.Longitude
		}
	}

	if err := terrain.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.analyses.GetByTerrainID(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrAnalysisNotFound) {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	analyze := existing == nil || terrain.ValuationChanged(prev)

	var analysis *domain.Analysis
	if analyze || geocode {
		analysis, err = s.prepare(ctx, terrain, existing, geocode, analyze)
		if err != nil {
			return nil, err
		}
	}

	// a nil analysis leaves the stored one as is
	if err := s.terrains.UpdateWithAnalysis(ctx, terrain, analysis); err != nil {
		return nil, fmt.Errorf("update terrain: %w", err)
	}

	if analysis == nil {
		analysis = existing
	}

	s.logger.Info("terrain updated",
		zap.Int64("terrain_id", terrain.ID),
		zap.Bool("reanalysed", analyze),
		zap.Bool("geocoded", geocode),
	)

	return &TerrainWithAnalysis{Terrain: terrain, Analysis: analysis}, nil
}

func (s *terrainService) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.terrains.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, domain.ErrTerrainNotFound) {
			return err
		}
		return fmt.Errorf("delete terrain: %w", err)
	}
	s.logger.Info("terrain deleted", zap.Int64("terrain_id", id), zap.Int64("owner_id", ownerID))
	return nil
}

func (s *terrainService) Reanalyze(ctx context.Context, ownerID, id int64) (*domain.Analysis, error) {
	terrain, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	existing, err := s.analyses.GetByTerrainID(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrAnalysisNotFound) {
		return nil, fmt.Errorf("get analysis: %w", err)
	}

	analysis, err := s.analyzer.Refresh(ctx, terrain, existing)
	if err != nil {
		return nil, err
	}

	if err := s.analyses.Upsert(ctx, analysis); err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}
	return analysis, nil
}

func (s *terrainService) Analysis(ctx context.Context, ownerID, id int64) (*domain.Analysis, error) {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return nil, err
	}
	return s.analyses.GetByTerrainID(ctx, id)
}

// owned hides foreign terrains behind ErrTerrainNotFound.
func (s *terrainService) owned(ctx context.Context, ownerID, id int64) (*domain.Terrain, error) {
	terrain, err := s.terrains.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrTerrainNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get terrain: %w", err)
	}
	if terrain.OwnerID != ownerID {
		return nil, domain.ErrTerrainNotFound
	}
	return terrain, nil
}

// prepare runs geocoding and the analysis side by side. The analysis works on a
// copy so the geocoder can fill coordinates on terrain without a race.
// The returned analysis is nil when analyze is false.
func (s *terrainService) prepare(ctx context.Context, terrain *domain.Terrain, existing *domain.Analysis, geocode, analyze bool) (*domain.Analysis, error) {
	var (
		analysis *domain.Analysis
		lat, lon float64
		located  bool
	)

	g, gctx := errgroup.WithContext(ctx)

	if geocode && s.geocoder != nil {
		city, zip := terrain.City, terrain.ZipCode
		g.Go(func() error {
			lat, lon, located = s.geocoder.Coordinates(gctx, city, zip)
			return nil
		})
	}

	if analyze {
		snapshot := *terrain
		g.Go(func() error {
			a, err := s.analyzer.CreateOrUpdate(gctx, &snapshot, existing)
			if err != nil {
				return err
			}
			analysis = a
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if geocode {
		terrain.Latitude, terrain.Longitude = nil, nil
		if located {
			terrain.Latitude, terrain.Longitude = &lat, &lon
		}
	}
	return analysis, nil
}

func (in TerrainInput) toTerrain() *domain.Terrain {
	return &domain.Terrain{
		Title:          in.Title,
		Description:    in.Description,
		SurfaceM2:      in.SurfaceM2,
		Price:          in.Price,
		City:           in.City,
		ZipCode:        in.ZipCode,
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
		Viabilised:     in.Viabilised,
		SourceURL:      in.SourceURL,
		SourcePlatform: in.SourcePlatform,
	}
}
