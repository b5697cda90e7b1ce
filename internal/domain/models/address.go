package models

import (
	"fmt"

	"maisoku/internal/config"
)

// PrecisionLevel is the granularity tag on a resolved address. It drives the
// radius of the surrounding-area analysis.
type PrecisionLevel string

const (
	PrecisionExact       PrecisionLevel = "exact"
	PrecisionDistrict    PrecisionLevel = "district"
	PrecisionApproximate PrecisionLevel = "approximate"
)

// Valid reports whether the precision level is one of the known values.
func (p PrecisionLevel) Valid() bool {
	switch p {
	case PrecisionExact, PrecisionDistrict, PrecisionApproximate:
		return true
	}
	return false
}

// AnalysisRadius returns the search radius in meters for this precision.
func (p PrecisionLevel) AnalysisRadius() int {
	switch p {
	case PrecisionExact:
		return config.RadiusExact
	case PrecisionDistrict:
		return config.RadiusDistrict
	default:
		return config.RadiusApproximate
	}
}

// AddressResolution is the immutable result of one geocoding resolution.
// It is created per call and never persisted.
type AddressResolution struct {
	OriginalInput     string         `json:"original_input"`
	NormalizedAddress string         `json:"normalized_address"`
	Latitude          float64        `json:"latitude"`
	Longitude         float64        `json:"longitude"`
	PrecisionLevel    PrecisionLevel `json:"precision_level"`
	Confidence        float64        `json:"confidence"`
	AnalysisRadius    int            `json:"analysis_radius"`
}

// ValidateCoordinates checks a latitude/longitude pair for structural sanity.
// (0,0) is rejected: it is the null island sentinel GPS stacks emit on failure.
func ValidateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", lat)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", lng)
	}
	if lat == 0 && lng == 0 {
		return fmt.Errorf("coordinates (0, 0) are not a valid position")
	}
	return nil
}

// Suggestion is a single autocomplete candidate for a partial address input.
type Suggestion struct {
	Description string `json:"description"`
	PlaceID     string `json:"place_id"`
}
