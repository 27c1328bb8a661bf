package repository

import (
	"context"

	"github.com/Rinde17/investerra-app/internal/domain"
)

type UserRepository interface {
	GetOrCreate(ctx context.Context, telegramID int64, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Create(ctx context.Context, user *domain.User) error
}

// TerrainRepository writes a terrain and its analysis in one transaction,
// so a terrain never exists with a stale or missing analysis.
type TerrainRepository interface {
	CreateWithAnalysis(ctx context.Context, terrain *domain.Terrain, analysis *domain.Analysis) error
	// UpdateWithAnalysis leaves the stored analysis untouched when analysis is nil.
	UpdateWithAnalysis(ctx context.Context, terrain *domain.Terrain, analysis *domain.Analysis) error
	GetByID(ctx context.Context, id int64) (*domain.Terrain, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Terrain, error)
	Delete(ctx context.Context, ownerID, id int64) error
	CountByOwner(ctx context.Context, ownerID int64) (int, error)
}

type AnalysisRepository interface {
	GetByTerrainID(ctx context.Context, terrainID int64) (*domain.Analysis, error)
	ListByTerrainIDs(ctx context.Context, terrainIDs []int64) (map[int64]*domain.Analysis, error)
	// Upsert keeps the analysis identity per terrain: id and created_at survive recomputation.
	Upsert(ctx context.Context, analysis *domain.Analysis) error
}
