// Package geocoding resolves French communes to coordinates through geo.api.gouv.fr.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Rinde17/investerra-app/internal/metrics"
)

const DefaultBaseURL = "https://geo.api.gouv.fr"

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	client  *http.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func New(cfg Config, m *metrics.Metrics, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		metrics: m,
		logger:  logger,
	}
}

type commune struct {
	Nom    string `json:"nom"`
	Centre struct {
		Type string `json:"type"`
		// GeoJSON order: longitude, latitude
		Coordinates []float64 `json:"coordinates"`
	} `json:"centre"`
}

// Coordinates returns ok=false when the commune is unknown or the API fails.
func (c *Client) Coordinates(ctx context.Context, city, zip string) (lat, lon float64, ok bool) {
	lat, lon, ok, err := c.lookup(ctx, city, zip)
	if err != nil {
		c.logger.Warn("geocoding failed",
			zap.String("city", city),
			zap.String("zip", zip),
			zap.Error(err),
		)
		return 0, 0, false
	}
	if !ok {
		c.logger.Info("commune not found", zap.String("city", city), zap.String("zip", zip))
	}
	return lat, lon, ok
}

func (c *Client) lookup(ctx context.Context, city, zip string) (float64, float64, bool, error) {
	params := url.Values{}
	params.Set("nom", city)
	params.Set("codePostal", zip)
	params.Set("fields", "centre")
	params.Set("format", "json")
	params.Set("geometry", "centre")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/communes?"+params.Encode(), nil)
	if err != nil {
		return 0, 0, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordProviderRequest("geo", "communes", "error", time.Since(start))
		return 0, 0, false, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.RecordProviderRequest("geo", "communes", strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return 0, 0, false, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, 0, false, fmt.Errorf("read response: %w", err)
	}

	var communes []commune
	if err := json.Unmarshal(body, &communes); err != nil {
		return 0, 0, false, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(communes) == 0 || len(communes[0].Centre.Coordinates) < 2 {
		return 0, 0, false, nil
	}

	coords := communes[0].Centre.Coordinates
	return coords[1], coords[0], true, nil
}
