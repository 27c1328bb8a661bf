package domain

import "errors"

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("user already exists")
)

var (
	ErrInvalidTerrain   = errors.New("invalid terrain")
	ErrEmptyTitle       = errors.New("title is required")
	ErrEmptyCity        = errors.New("city is required")
	ErrInvalidZipCode   = errors.New("zip code is required and must be at most 10 characters")
	ErrInvalidSurface   = errors.New("surface must be between 0 and 99,999,999.99 m²")
	ErrInvalidPrice     = errors.New("price must be between 0 and 9,999,999,999.99 €")
	ErrInvalidLatitude  = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude = errors.New("longitude must be between -180 and 180")
	ErrTerrainNotFound  = errors.New("terrain not found")

	ErrTerrainLimitReached = errors.New("terrain limit reached")
)

var (
	ErrAnalysisNotFound = errors.New("analysis not found")
)

var ErrInvalidRating = errors.New("invalid rating")
