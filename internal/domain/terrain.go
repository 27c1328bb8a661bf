package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	MaxTitleLength   = 255
	MaxZipCodeLength = 10

	// Largest values the terrains table stores (NUMERIC(10,2) and NUMERIC(12,2)).
	MaxSurfaceM2 = 99_999_999.99
	MaxPrice     = 9_999_999_999.99
)

// Terrain - land parcel under investment consideration
type Terrain struct {
	ID             int64
	OwnerID        int64
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
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PricePerM2 returns 0 for a non-positive surface.
func (t *Terrain) PricePerM2() float64 {
	if t.SurfaceM2 <= 0 {
		return 0
	}
	return t.Price / t.SurfaceM2
}

func (t *Terrain) FullAddress() string {
	return t.City + ", " + t.ZipCode
}

func (t *Terrain) HasCoordinates() bool {
	return t.Latitude != nil && t.Longitude != nil
}

// Validate checks the caller contract of the valuation engine.
// Errors are wrapped with ErrInvalidTerrain.
func (t *Terrain) Validate() error {
	if err := t.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTerrain, err)
	}
	return nil
}

func (t *Terrain) validate() error {
	title := strings.TrimSpace(t.Title)
	if title == "" || len(title) > MaxTitleLength {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(t.City) == "" {
		return ErrEmptyCity
	}
	zip := strings.TrimSpace(t.ZipCode)
	if zip == "" || len(zip) > MaxZipCodeLength {
		return ErrInvalidZipCode
	}
	// written as !(in range) so NaN is rejected too
	if !(t.SurfaceM2 >= 0 && t.SurfaceM2 <= MaxSurfaceM2) {
		return ErrInvalidSurface
	}
	if !(t.Price >= 0 && t.Price <= MaxPrice) {
		return ErrInvalidPrice
	}
	if t.Latitude != nil && (*t.Latitude < -90 || *t.Latitude > 90) {
		return ErrInvalidLatitude
	}
	if t.Longitude != nil && (*t.Longitude < -180 || *t.Longitude > 180) {
		return ErrInvalidLongitude
	}
	return nil
}

func (t *Terrain) Sanitize() {
	t.Title = strings.TrimSpace(t.Title)
	t.City = strings.TrimSpace(t.City)
	t.ZipCode = strings.TrimSpace(t.ZipCode)
	t.Description = strings.TrimSpace(t.Description)
}

// ValuationChanged reports whether the fields feeding the analysis differ.
func (t *Terrain) ValuationChanged(prev *Terrain) bool {
	if prev == nil {
		return true
	}
	return t.Price != prev.Price ||
		t.SurfaceM2 != prev.SurfaceM2 ||
		t.Viabilised != prev.Viabilised
}

// LocationChanged - city or zip differs, or coordinates are still unknown.
func (t *Terrain) LocationChanged(prev *Terrain) bool {
	if prev == nil || !prev.HasCoordinates() {
		return true
	}
	return t.City != prev.City || t.ZipCode != prev.ZipCode
}
