package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Rinde17/investerra-app/internal/domain"
	"github.com/Rinde17/investerra-app/internal/market"
	"github.com/Rinde17/investerra-app/internal/service"
)

type handlers struct {
	terrains service.TerrainService
	prices   market.PriceEstimator
	logger   *zap.Logger
}

type terrainRequest struct {
	Title          string   `json:"title" binding:"required,max=255"`
	Description    string   `json:"description"`
	SurfaceM2      float64  `json:"surface_m2" binding:"gt=0"`
	Price          float64  `json:"price" binding:"gte=0"`
	City           string   `json:"city" binding:"required"`
	ZipCode        string   `json:"zip_code" binding:"required,max=10"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	Viabilised     bool     `json:"viabilised"`
	SourceURL      string   `json:"source_url"`
	SourcePlatform string   `json:"source_platform"`
}

func (r terrainRequest) input() service.TerrainInput {
	return service.TerrainInput{
		Title:          r.Title,
		Description:    r.Description,
		SurfaceM2:      r.SurfaceM2,
		Price:          r.Price,
		City:           r.City,
		ZipCode:        r.ZipCode,
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
		Viabilised:     r.Viabilised,
		SourceURL:      r.SourceURL,
		SourcePlatform: r.SourcePlatform,
	}
}

type terrainResponse struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	SurfaceM2      float64   `json:"surface_m2"`
	Price          float64   `json:"price"`
	PricePerM2     float64   `json:"price_m2"`
	City           string    `json:"city"`
	ZipCode        string    `json:"zip_code"`
	Latitude       *float64  `json:"latitude"`
	Longitude      *float64  `json:"longitude"`
	Viabilised     bool      `json:"viabilised"`
	SourceURL      string    `json:"source_url,omitempty"`
	SourcePlatform string    `json:"source_platform,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type terrainWithAnalysisResponse struct {
	Terrain             terrainResponse  `json:"terrain"`
	Analysis            *domain.Analysis `json:"analysis"`
	TotalInvestmentCost *float64         `json:"total_investment_cost,omitempty"`
}

type marketPriceResponse struct {
	City       string   `json:"city"`
	ZipCode    string   `json:"zip_code"`
	PricePerM2 *float64 `json:"price_m2"`
	Known      bool     `json:"known"`
}

func toTerrainResponse(t *domain.Terrain) terrainResponse {
	return terrainResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		SurfaceM2:      t.SurfaceM2,
		Price:          t.Price,
		PricePerM2:     t.PricePerM2(),
		City:           t.City,
		ZipCode:        t.ZipCode,
		Latitude:       t.Latitude,
		Longitude:      t.Longitude,
		Viabilised:     t.Viabilised,
		SourceURL:      t.SourceURL,
		SourcePlatform: t.SourcePlatform,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func toResponse(item *service.TerrainWithAnalysis) terrainWithAnalysisResponse {
	resp := terrainWithAnalysisResponse{
		Terrain:  toTerrainResponse(item.Terrain),
		Analysis: item.Analysis,
	}
	if item.Analysis != nil {
		total := item.Analysis.TotalInvestmentCost(item.Terrain.Price)
		resp.TotalInvestmentCost = &total
	}
	return resp
}

func (h *handlers) liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func readiness(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

func (h *handlers) listTerrains(c *gin.Context) {
	items, err := h.terrains.List(c.Request.Context(), ownerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]terrainWithAnalysisResponse, 0, len(items))
	for i := range items {
		out = append(out, toResponse(&items[i]))
	}
	c.JSON(http.StatusOK, gin.H{"terrains": out, "total": len(out)})
}

func (h *handlers) createTerrain(c *gin.Context) {
	var req terrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := h.terrains.Create(c.Request.Context(), ownerID(c), req.input())
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Location", "/api/v1/terrains/"+strconv.FormatInt(res.Terrain.ID, 10))
	c.JSON(http.StatusCreated, toResponse(res))
}

func (h *handlers) getTerrain(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res, err := h.terrains.Get(c.Request.Context(), ownerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(res))
}

func (h *handlers) updateTerrain(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req terrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := h.terrains.Update(c.Request.Context(), ownerID(c), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(res))
}

func (h *handlers) deleteTerrain(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.terrains.Delete(c.Request.Context(), ownerID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) getAnalysis(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	a, err := h.terrains.Analysis(c.Request.Context(), ownerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *handlers) reanalyze(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	a, err := h.terrains.Reanalyze(c.Request.Context(), ownerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *handlers) marketPrice(c *gin.Context) {
	city := strings.TrimSpace(c.Query("city"))
	zip := strings.TrimSpace(c.Query("zip"))
	if city == "" || zip == "" {
		writeError(c, http.StatusBadRequest, "invalid_request", "city and zip query parameters are required")
		return
	}

	resp := marketPriceResponse{City: city, ZipCode: zip}
	if h.prices != nil {
		if price, known := h.prices.Estimate(c.Request.Context(), city, zip); known {
			resp.PricePerM2 = &price
			resp.Known = true
		}
	}
	c.JSON(http.StatusOK, resp)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, "invalid_request", "terrain id must be a positive integer")
		return 0, false
	}
	return id, true
}
