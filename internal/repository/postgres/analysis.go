package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Rinde17/investerra-app/internal/domain"
)

type AnalysisRepo struct {
	db *DB
}

func NewAnalysisRepo(db *DB) *AnalysisRepo {
	return &AnalysisRepo{db: db}
}

const analysisColumns = `
    id, terrain_id, price_m2, market_price_m2, price_difference_percentage, viability_cost,
    lots_possible, resale_estimate_min, resale_estimate_max, net_margin_estimate,
    profit_margin_percentage, ai_score, profitability_label, overall_risk,
    overall_recommendation, market_price_source, analysis_details, analyzed_at, created_at`

func scanAnalysis(row pgx.Row) (*domain.Analysis, error) {
	var (
		a       domain.Analysis
		label   string
		risk    string
		rec     string
		source  string
		details []byte
	)
	err := row.Scan(
		&a.ID,
		&a.TerrainID,
		&a.Metrics.PricePerM2,
		&a.Metrics.MarketPricePerM2,
		&a.Metrics.PriceDifferencePercentage,
		&a.Metrics.ViabilityCost,
		&a.Metrics.LotsPossible,
		&a.Metrics.ResaleEstimateMin,
		&a.Metrics.ResaleEstimateMax,
		&a.Metrics.NetMarginEstimate,
		&a.Metrics.ProfitMarginPercentage,
		&a.AIScore,
		&label,
		&risk,
		&rec,
		&source,
		&details,
		&a.AnalyzedAt,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.ProfitabilityLabel = domain.Rating(label)
	a.MarketPriceSource = domain.MarketPriceSource(source)
	if err := json.Unmarshal(details, &a.Details); err != nil {
		return nil, fmt.Errorf("unmarshal analysis details: %w", err)
	}
	a.Risk = a.Details.RiskAssessment
	a.Risk.OverallRisk = domain.RiskLevel(risk)
	a.Recommendation = a.Details.Recommendation
	a.Recommendation.Type = domain.RecommendationType(rec)
	return &a, nil
}

func (r *AnalysisRepo) GetByTerrainID(ctx context.Context, terrainID int64) (*domain.Analysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM terrain_analyses WHERE terrain_id = $1`

	a, err := scanAnalysis(r.db.Pool.QueryRow(ctx, query, terrainID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	return a, nil
}

func (r *AnalysisRepo) ListByTerrainIDs(ctx context.Context, terrainIDs []int64) (map[int64]*domain.Analysis, error) {
	out := make(map[int64]*domain.Analysis, len(terrainIDs))
	if len(terrainIDs) == 0 {
		return out, nil
	}

	query := `SELECT ` + analysisColumns + ` FROM terrain_analyses WHERE terrain_id = ANY($1)`

	rows, err := r.db.Pool.Query(ctx, query, terrainIDs)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		out[a.TerrainID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func (r *AnalysisRepo) Upsert(ctx context.Context, a *domain.Analysis) error {
	return upsertAnalysis(ctx, r.db.Pool, a)
}

func upsertAnalysis(ctx context.Context, q querier, a *domain.Analysis) error {
	details, err := json.Marshal(a.Details)
	if err != nil {
		return fmt.Errorf("marshal analysis details: %w", err)
	}

	query := `
        INSERT INTO terrain_analyses (
            terrain_id, price_m2, market_price_m2, price_difference_percentage, viability_cost,
            lots_possible, resale_estimate_min, resale_estimate_max, net_margin_estimate,
            profit_margin_percentage, ai_score, profitability_label, overall_risk,
            overall_recommendation, market_price_source, analysis_details, analyzed_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
        ON CONFLICT (terrain_id) DO UPDATE SET
            price_m2 = EXCLUDED.price_m2,
            market_price_m2 = EXCLUDED.market_price_m2,
            price_difference_percentage = EXCLUDED.price_difference_percentage,
            viability_cost = EXCLUDED.viability_cost,
            lots_possible = EXCLUDED.lots_possible,
            resale_estimate_min = EXCLUDED.resale_estimate_min,
            resale_estimate_max = EXCLUDED.resale_estimate_max,
            net_margin_estimate = EXCLUDED.net_margin_estimate,
            profit_margin_percentage = EXCLUDED.profit_margin_percentage,
            ai_score = EXCLUDED.ai_score,
            profitability_label = EXCLUDED.profitability_label,
            overall_risk = EXCLUDED.overall_risk,
            overall_recommendation = EXCLUDED.overall_recommendation,
            market_price_source = EXCLUDED.market_price_source,
            analysis_details = EXCLUDED.analysis_details,
            analyzed_at = EXCLUDED.analyzed_at
        RETURNING id, created_at
    `

	m := a.Metrics
	err = q.QueryRow(ctx, query,
		a.TerrainID,
		m.PricePerM2,
		m.MarketPricePerM2,
		m.PriceDifferencePercentage,
		m.ViabilityCost,
		m.LotsPossible,
		m.ResaleEstimateMin,
		m.ResaleEstimateMax,
		m.NetMarginEstimate,
		m.ProfitMarginPercentage,
		a.AIScore,
		a.ProfitabilityLabel.String(),
		a.Risk.OverallRisk.String(),
		a.Recommendation.Type.String(),
		string(a.MarketPriceSource),
		details,
		a.AnalyzedAt,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert analysis: %w", err)
	}
	return nil
}
