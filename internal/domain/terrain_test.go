package domain

import (
	"errors"
	"math"
	"testing"
)

func ptr(f float64) *float64 { return &f }

func validTerrain() Terrain {
	return Terrain{
		Title:     "Terrain route de Néris",
		SurfaceM2: 1200,
		Price:     60000,
		City:      "Montluçon",
		ZipCode:   "03100",
	}
}

func TestTerrain_PricePerM2(t *testing.T) {
	tests := []struct {
		name    string
		surface float64
		price   float64
		want    float64
	}{
		{"regular", 1000, 50000, 50},
		{"zero surface", 0, 50000, 0},
		{"negative surface", -10, 50000, 0},
		{"zero price", 1000, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := Terrain{SurfaceM2: tt.surface, Price: tt.price}
			if got := tr.PricePerM2(); got != tt.want {
				t.Errorf("PricePerM2() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTerrain_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Terrain)
		wantErr error
	}{
		{"valid", func(*Terrain) {}, nil},
		{"empty title", func(tr *Terrain) { tr.Title = "  " }, ErrEmptyTitle},
		{"empty city", func(tr *Terrain) { tr.City = "" }, ErrEmptyCity},
		{"empty zip", func(tr *Terrain) { tr.ZipCode = "" }, ErrInvalidZipCode},
		{"zip too long", func(tr *Terrain) { tr.ZipCode = "12345678901" }, ErrInvalidZipCode},
		{"negative surface", func(tr *Terrain) { tr.SurfaceM2 = -1 }, ErrInvalidSurface},
		{"negative price", func(tr *Terrain) { tr.Price = -1 }, ErrInvalidPrice},
		{"zero surface allowed", func(tr *Terrain) { tr.SurfaceM2 = 0 }, nil},
		{"surface at column limit", func(tr *Terrain) { tr.SurfaceM2 = MaxSurfaceM2 }, nil},
		{"surface over column limit", func(tr *Terrain) { tr.SurfaceM2 = 1e9 }, ErrInvalidSurface},
		{"surface NaN", func(tr *Terrain) { tr.SurfaceM2 = math.NaN() }, ErrInvalidSurface},
		{"price at column limit", func(tr *Terrain) { tr.Price = MaxPrice }, nil},
		{"price over column limit", func(tr *Terrain) { tr.Price = 1e10 }, ErrInvalidPrice},
		{"price infinite", func(tr *Terrain) { tr.Price = math.Inf(1) }, ErrInvalidPrice},
		{"latitude out of range", func(tr *Terrain) { tr.Latitude = ptr(91) }, ErrInvalidLatitude},
		{"longitude out of range", func(tr *Terrain) { tr.Longitude = ptr(-181) }, ErrInvalidLongitude},
		{"coordinates ok", func(tr *Terrain) { tr.Latitude, tr.Longitude = ptr(46.34), ptr(2.60) }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := validTerrain()
			tt.mutate(&tr)

			err := tr.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidTerrain) {
				t.Errorf("Validate() error = %v, should wrap ErrInvalidTerrain", err)
			}
		})
	}
}

func TestTerrain_ValuationChanged(t *testing.T) {
	prev := validTerrain()

	same := prev
	same.Title = "renamed"
	same.Description = "new description"
	if same.ValuationChanged(&prev) {
		t.Error("title/description change should not trigger a recompute")
	}

	for _, mutate := range []func(*Terrain){
		func(tr *Terrain) { tr.Price++ },
		func(tr *Terrain) { tr.SurfaceM2++ },
		func(tr *Terrain) { tr.Viabilised = !tr.Viabilised },
	} {
		next := prev
		mutate(&next)
		if !next.ValuationChanged(&prev) {
			t.Errorf("ValuationChanged() = false for %+v", next)
		}
	}

	if !prev.ValuationChanged(nil) {
		t.Error("ValuationChanged(nil) should be true")
	}
}

func TestTerrain_LocationChanged(t *testing.T) {
	prev := validTerrain()
	next := prev

	if !next.LocationChanged(&prev) {
		t.Error("missing coordinates should require geocoding")
	}

	prev.Latitude, prev.Longitude = ptr(46.34), ptr(2.60)
	next = prev
	if next.LocationChanged(&prev) {
		t.Error("same location with coordinates should not require geocoding")
	}

	next.ZipCode = "03000"
	if !next.LocationChanged(&prev) {
		t.Error("zip change should require geocoding")
	}
}

func TestTerrain_Sanitize(t *testing.T) {
	tr := Terrain{Title: "  Lot A ", City: " Vichy ", ZipCode: " 03200 "}
	tr.Sanitize()

	if tr.Title != "Lot A" || tr.City != "Vichy" || tr.ZipCode != "03200" {
		t.Errorf("Sanitize() = %+v", tr)
	}
}
