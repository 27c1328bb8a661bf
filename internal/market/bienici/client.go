// Package bienici implements market.Provider over the Bien'ici listings JSON API.
package bienici

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Rinde17/investerra-app/internal/market"
	"github.com/Rinde17/investerra-app/internal/metrics"
)

const (
	DefaultSearchURL = "https://www.bienici.com/realEstateAds.json"
	DefaultPlaceURL  = "https://res.bienici.com/place.json"
	DefaultUserAgent = "Mozilla/5.0"

	providerName = "bienici"
	placeTypes   = "city,delegated-city,department,postalCode,region"
)

type Config struct {
	SearchURL   string
	PlaceURL    string
	AccessToken string
	AccountID   string
	UserAgent   string
	Timeout     time.Duration
	Attempts    int
	Backoff     time.Duration
	// RequestsPerSecond <= 0 disables client-side throttling.
	RequestsPerSecond float64
	Burst             int
}

type Client struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func New(cfg Config, m *metrics.Metrics, logger *zap.Logger) *Client {
	if cfg.SearchURL == "" {
		cfg.SearchURL = DefaultSearchURL
	}
	if cfg.PlaceURL == "" {
		cfg.PlaceURL = DefaultPlaceURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Backoff == 0 {
		cfg.Backoff = time.Second
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limiter := rate.NewLimiter(rate.Inf, cfg.Burst)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	}

	return &Client{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		metrics: m,
		logger:  logger,
	}
}

type place struct {
	ZoneIDs []string `json:"zoneIds"`
}

type searchFilters struct {
	Size           int            `json:"size"`
	From           int            `json:"from"`
	ShowAllModels  bool           `json:"showAllModels"`
	FilterType     string         `json:"filterType"`
	PropertyType   []string       `json:"propertyType"`
	Page           int            `json:"page"`
	SortBy         string         `json:"sortBy"`
	SortOrder      string         `json:"sortOrder"`
	OnTheMarket    []bool         `json:"onTheMarket"`
	ZoneIDsByTypes zoneIDsByTypes `json:"zoneIdsByTypes"`
}

type zoneIDsByTypes struct {
	ZoneIDs []string `json:"zoneIds"`
}

type searchResponse struct {
	Total         int            `json:"total"`
	RealEstateAds []realEstateAd `json:"realEstateAds"`
}

type realEstateAd struct {
	ID                  string          `json:"id"`
	Description         *string         `json:"description"`
	PricePerSquareMeter json.RawMessage `json:"pricePerSquareMeter"`
}

func (c *Client) ResolveZone(ctx context.Context, slug string) (string, bool, error) {
	params := url.Values{}
	params.Set("q", slug)
	params.Set("type", placeTypes)
	params.Set("prefix", "no")

	body, err := c.get(ctx, "place", c.cfg.PlaceURL, params)
	if err != nil {
		return "", false, err
	}

	zoneID, ok, err := parseZone(body)
	if err != nil {
		return "", false, err
	}
	if !ok {
		c.logger.Warn("zone not found", zap.String("slug", slug))
	}
	return zoneID, ok, nil
}

func (c *Client) Query(ctx context.Context, zoneID string, filters market.Filters) ([]market.Observation, error) {
	size := filters.Size
	if size <= 0 {
		size = market.DefaultPageSize
	}
	f := searchFilters{
		Size:           size,
		From:           0,
		ShowAllModels:  false,
		FilterType:     filters.FilterType,
		PropertyType:   []string{filters.PropertyType},
		Page:           1,
		SortBy:         "relevance",
		SortOrder:      "desc",
		OnTheMarket:    []bool{filters.OnTheMarket},
		ZoneIDsByTypes: zoneIDsByTypes{ZoneIDs: []string{zoneID}},
	}
	encoded, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal filters: %w", err)
	}

	params := url.Values{}
	params.Set("filters", string(encoded))
	params.Set("extensionType", "extendedIfNoResult")
	params.Set("enableGoogleStructuredDataAggregates", "true")
	params.Set("leadingCount", "2")
	if c.cfg.AccessToken != "" {
		params.Set("access_token", c.cfg.AccessToken)
	}
	if c.cfg.AccountID != "" {
		params.Set("id", c.cfg.AccountID)
	}

	body, err := c.get(ctx, "search", c.cfg.SearchURL, params)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: unmarshal listings: %v", market.ErrProviderUnavailable, err)
	}
	return toObservations(resp.RealEstateAds), nil
}

// get performs a GET with throttling and a fixed-backoff retry on transport errors and 5xx.
func (c *Client) get(ctx context.Context, endpoint, rawURL string, params url.Values) ([]byte, error) {
	target := rawURL + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt < c.cfg.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.cfg.Backoff):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("throttle: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.client.Do(req)
		if err != nil {
			c.metrics.RecordProviderRequest(providerName, endpoint, "error", time.Since(start))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("do request: %w", err)
			c.logger.Debug("provider request failed",
				zap.String("endpoint", endpoint),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		c.metrics.RecordProviderRequest(providerName, endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, market.ErrRateLimited
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		default:
			return nil, fmt.Errorf("%w: status %d", market.ErrProviderUnavailable, resp.StatusCode)
		}
	}

	c.logger.Warn("provider request gave up",
		zap.String("endpoint", endpoint),
		zap.Int("attempts", c.cfg.Attempts),
		zap.Error(lastErr),
	)
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", market.ErrProviderUnavailable, lastErr)
	}
	return nil, market.ErrProviderUnavailable
}

// parseZone accepts either a single place object or a list of places.
func parseZone(body []byte) (string, bool, error) {
	trimmed := bytes.TrimSpace(body)

	var places []place
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &places); err != nil {
			return "", false, fmt.Errorf("%w: unmarshal places: %v", market.ErrProviderUnavailable, err)
		}
	} else {
		var p place
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return "", false, fmt.Errorf("%w: unmarshal place: %v", market.ErrProviderUnavailable, err)
		}
		places = []place{p}
	}

	for _, p := range places {
		for _, id := range p.ZoneIDs {
			if id != "" {
				return id, true, nil
			}
		}
	}
	return "", false, nil
}

func toObservations(ads []realEstateAd) []market.Observation {
	out := make([]market.Observation, 0, len(ads))
	for _, ad := range ads {
		out = append(out, market.Observation{
			Description: ad.Description,
			PricePerM2:  parsePrice(ad.PricePerSquareMeter),
		})
	}
	return out
}

// parsePrice accepts a JSON number or a numeric string, anything else is absent.
func parsePrice(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &n
}
