package telegram

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/Rinde17/investerra-app/internal/service"
)

var (
	ErrAnalyzeUsage = errors.New("usage: /analyze surface price city zip [viabilise]")
	ErrPriceUsage   = errors.New("usage: /price city zip")
	ErrIndexUsage   = errors.New("a terrain number is required")
)

// words accepted as the optional last argument of /analyze
var servicedMarkers = map[string]bool{
	"viabilise":  true,
	"viabilisé":  true,
	"viabilisee": true,
	"viabilisée": true,
	"serviced":   true,
}

// ParseAnalyzeArgs reads "surface price city... zip [viabilise]".
// The city may contain spaces; the zip is the last token before the optional marker.
func ParseAnalyzeArgs(args string) (service.TerrainInput, error) {
	fields := strings.Fields(args)
	if len(fields) < 4 {
		return service.TerrainInput{}, ErrAnalyzeUsage
	}

	viabilised := false
	if servicedMarkers[strings.ToLower(fields[len(fields)-1])] {
		viabilised = true
		fields = fields[:len(fields)-1]
		if len(fields) < 4 {
			return service.TerrainInput{}, ErrAnalyzeUsage
		}
	}

	surface, err := parseAmount(fields[0])
	if err != nil || surface <= 0 {
		return service.TerrainInput{}, ErrAnalyzeUsage
	}
	price, err := parseAmount(fields[1])
	if err != nil || price < 0 {
		return service.TerrainInput{}, ErrAnalyzeUsage
	}

	zip := fields[len(fields)-1]
	city := strings.Join(fields[2:len(fields)-1], " ")

	return service.TerrainInput{
		Title:          "Terrain " + city + " " + zip,
		SurfaceM2:      surface,
		Price:          price,
		City:           city,
		ZipCode:        zip,
		Viabilised:     viabilised,
		SourcePlatform: "telegram",
	}, nil
}

// ParsePriceArgs reads "city... zip".
func ParsePriceArgs(args string) (city, zip string, err error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return "", "", ErrPriceUsage
	}
	return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1], nil
}

// ParseIndex reads the 1-based position shown by /terrains.
func ParseIndex(args string) (int, error) {
	s := strings.TrimSpace(args)
	if s == "" {
		return 0, ErrIndexUsage
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, ErrIndexUsage
	}
	return n, nil
}

// parseAmount accepts a decimal comma. NaN and infinities are rejected.
func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrAnalyzeUsage
	}
	return v, nil
}
