package mock

import (
	"context"
	"sync"
	"time"

	"github.com/Rinde17/investerra-app/internal/market"
)

// Provider is an in-memory market.Provider. Zones maps slug to zone id,
// Listings maps zone id to observations.
type Provider struct {
	Zones    map[string]string
	Listings map[string][]market.Observation

	ZoneError  error
	QueryError error
	Delay      time.Duration

	ResolveCount int
	QueryCount   int
	LastSlug     string
	LastFilters  market.Filters

	mu sync.Mutex
}

func New() *Provider {
	return &Provider{
		Zones:    make(map[string]string),
		Listings: make(map[string][]market.Observation),
	}
}

func (p *Provider) WithZone(slug, zoneID string) *Provider {
	p.Zones[slug] = zoneID
	return p
}

func (p *Provider) WithListings(zoneID string, obs ...market.Observation) *Provider {
	p.Listings[zoneID] = append(p.Listings[zoneID], obs...)
	return p
}

func (p *Provider) WithZoneError(err error) *Provider {
	p.ZoneError = err
	return p
}

func (p *Provider) WithQueryError(err error) *Provider {
	p.QueryError = err
	return p
}

func (p *Provider) WithDelay(delay time.Duration) *Provider {
	p.Delay = delay
	return p
}

func (p *Provider) ResolveZone(ctx context.Context, slug string) (string, bool, error) {
	p.mu.Lock()
	p.ResolveCount++
	p.LastSlug = slug
	zoneID, ok := p.Zones[slug]
	err := p.ZoneError
	delay := p.Delay
	p.mu.Unlock()

	if err := wait(ctx, delay); err != nil {
		return "", false, err
	}
	if err != nil {
		return "", false, err
	}
	return zoneID, ok, nil
}

func (p *Provider) Query(ctx context.Context, zoneID string, filters market.Filters) ([]market.Observation, error) {
	p.mu.Lock()
	p.QueryCount++
	p.LastFilters = filters
	obs := p.Listings[zoneID]
	err := p.QueryError
	p.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return obs, nil
}

func (p *Provider) Calls() (resolve, query int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ResolveCount, p.QueryCount
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Listing builds an observation; an empty description means none.
func Listing(description string, pricePerM2 float64) market.Observation {
	o := market.Observation{PricePerM2: &pricePerM2}
	if description != "" {
		o.Description = &description
	}
	return o
}

// Estimator is a fixed market.PriceEstimator.
type Estimator struct {
	Price float64
	Known bool
	Delay time.Duration
	Calls int

	mu sync.Mutex
}

func (e *Estimator) Estimate(ctx context.Context, city, zip string) (float64, bool) {
	e.mu.Lock()
	e.Calls++
	price, known, delay := e.Price, e.Known, e.Delay
	e.mu.Unlock()

	if err := wait(ctx, delay); err != nil {
		return 0, false
	}
	return price, known
}

func (e *Estimator) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Calls
}
