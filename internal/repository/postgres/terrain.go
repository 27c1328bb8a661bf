package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Rinde17/investerra-app/internal/domain"
)

type TerrainRepo struct {
	db *DB
}

func NewTerrainRepo(db *DB) *TerrainRepo {
	return &TerrainRepo{db: db}
}

const terrainColumns = `
    id, user_id, title, description, surface_m2, price, city, zip_code,
    latitude, longitude, viabilised, source_url, source_platform, created_at, updated_at`

func scanTerrain(row pgx.Row) (*domain.Terrain, error) {
	var t domain.Terrain
	err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Title,
		&t.Description,
		&t.SurfaceM2,
		&t.Price,
		&t.City,
		&t.ZipCode,
		&t.Latitude,
		&t.Longitude,
		&t.Viabilised,
		&t.SourceURL,
		&t.SourcePlatform,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TerrainRepo) CreateWithAnalysis(ctx context.Context, t *domain.Terrain, a *domain.Analysis) error {
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		query := `
            INSERT INTO terrains (user_id, title, description, surface_m2, price, city, zip_code,
                latitude, longitude, viabilised, source_url, source_platform)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
            RETURNING id, created_at, updated_at
        `
		err := tx.QueryRow(ctx, query,
			t.OwnerID,
			t.Title,
			t.Description,
			t.SurfaceM2,
			t.Price,
			t.City,
			t.ZipCode,
			t.Latitude,
			t.Longitude,
			t.Viabilised,
			t.SourceURL,
			t.SourcePlatform,
		).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return fmt.Errorf("create terrain: %w", err)
		}

		if a == nil {
			return nil
		}
		a.TerrainID = t.ID
		return upsertAnalysis(ctx, tx, a)
	})
}

func (r *TerrainRepo) UpdateWithAnalysis(ctx context.Context, t *domain.Terrain, a *domain.Analysis) error {
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		query := `
            UPDATE terrains SET
                title = $3, description = $4, surface_m2 = $5, price = $6, city = $7, zip_code = $8,
                latitude = $9, longitude = $10, viabilised = $11, source_url = $12, source_platform = $13,
                updated_at = NOW()
            WHERE id = $1 AND user_id = $2
            RETURNING created_at, updated_at
        `
		err := tx.QueryRow(ctx, query,
			t.ID,
			t.OwnerID,
			t.Title,
			t.Description,
			t.SurfaceM2,
			t.Price,
			t.City,
			t.ZipCode,
			t.Latitude,
			t.Longitude,
			t.Viabilised,
			t.SourceURL,
			t.SourcePlatform,
		).Scan(&t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrTerrainNotFound
			}
			return fmt.Errorf("update terrain: %w", err)
		}

		if a == nil {
			return nil
		}
		a.TerrainID = t.ID
		return upsertAnalysis(ctx, tx, a)
	})
}

func (r *TerrainRepo) GetByID(ctx context.Context, id int64) (*domain.Terrain, error) {
	query := `SELECT ` + terrainColumns + ` FROM terrains WHERE id = $1`

	t, err := scanTerrain(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTerrainNotFound
		}
		return nil, fmt.Errorf("get terrain: %w", err)
	}
	return t, nil
}

func (r *TerrainRepo) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Terrain, error) {
	query := `SELECT ` + terrainColumns + ` FROM terrains WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list terrains: %w", err)
	}
	defer rows.Close()

	var terrains []domain.Terrain
	for rows.Next() {
		t, err := scanTerrain(rows)
		if err != nil {
			return nil, fmt.Errorf("scan terrain: %w", err)
		}
		terrains = append(terrains, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return terrains, nil
}

// Delete removes the terrain; its analysis goes with it through the FK cascade.
func (r *TerrainRepo) Delete(ctx context.Context, ownerID, id int64) error {
	query := `DELETE FROM terrains WHERE id = $1 AND user_id = $2`

	result, err := r.db.Pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete terrain: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrTerrainNotFound
	}
	return nil
}

func (r *TerrainRepo) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	query := `SELECT COUNT(*) FROM terrains WHERE user_id = $1`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count terrains: %w", err)
	}
	return count, nil
}
