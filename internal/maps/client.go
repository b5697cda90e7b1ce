// Package maps wraps the Google Maps Platform clients the address services
// depend on. The Geocoder interface keeps the services testable with fakes.
package maps

import (
	"context"
	"fmt"
	"log/slog"

	gmaps "googlemaps.github.io/maps"

	"maisoku/internal/domain/models"
)

// GeocodeResult is one forward-geocoding hit with precision metadata.
type GeocodeResult struct {
	FormattedAddress string
	Latitude         float64
	Longitude        float64
	Precision        models.PrecisionLevel
	// Confidence is derived from the geocoder's location type.
	Confidence float64
}

// Geocoder defines the Maps Platform surface used by the address services.
type Geocoder interface {
	// Autocomplete returns address candidates for a partial input.
	Autocomplete(ctx context.Context, input string) ([]models.Suggestion, error)

	// Geocode resolves a free-text address to coordinates and precision.
	Geocode(ctx context.Context, address string) (*GeocodeResult, error)

	// ReverseGeocode resolves coordinates to a formatted address.
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// Client implements Geocoder on the official Google Maps client. All lookups
// are issued for Japan in Japanese.
type Client struct {
	api    *gmaps.Client
	logger *slog.Logger
}

// NewClient creates a Maps Platform client.
func NewClient(apiKey string, logger *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google maps API key cannot be empty")
	}

	api, err := gmaps.NewClient(gmaps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}

	return &Client{api: api, logger: logger}, nil
}

// Autocomplete returns address candidates for a partial input.
func (c *Client) Autocomplete(ctx context.Context, input string) ([]models.Suggestion, error) {
	resp, err := c.api.PlaceAutocomplete(ctx, &gmaps.PlaceAutocompleteRequest{
		Input:    input,
		Types:    gmaps.AutocompletePlaceTypeAddress,
		Language: "ja",
		Components: map[gmaps.Component][]string{
			gmaps.ComponentCountry: {"jp"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("place autocomplete: %w", err)
	}

	suggestions := make([]models.Suggestion, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		suggestions = append(suggestions, models.Suggestion{
			Description: p.Description,
			PlaceID:     p.PlaceID,
		})
	}

	return suggestions, nil
}

// Geocode resolves a free-text address to coordinates and precision.
func (c *Client) Geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	results, err := c.api.Geocode(ctx, &gmaps.GeocodingRequest{
		Address:  address,
		Language: "ja",
		Region:   "jp",
	})
	if err != nil {
		return nil, fmt.Errorf("geocode: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("geocode: no results for %q", address)
	}

	first := results[0]
	precision, confidence := precisionFromLocationType(first.Geometry.LocationType)

	return &GeocodeResult{
		FormattedAddress: first.FormattedAddress,
		Latitude:         first.Geometry.Location.Lat,
		Longitude:        first.Geometry.Location.Lng,
		Precision:        precision,
		Confidence:       confidence,
	}, nil
}

// ReverseGeocode resolves coordinates to a formatted address.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	results, err := c.api.ReverseGeocode(ctx, &gmaps.GeocodingRequest{
		LatLng:   &gmaps.LatLng{Lat: lat, Lng: lng},
		Language: "ja",
	})
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	if len(results) == 0 {
		return "", fmt.Errorf("reverse geocode: no results for (%v, %v)", lat, lng)
	}

	return results[0].FormattedAddress, nil
}

// precisionFromLocationType maps the geocoder's location type onto the
// precision levels that drive the analysis radius.
func precisionFromLocationType(locationType string) (models.PrecisionLevel, float64) {
	switch locationType {
	case "ROOFTOP":
		return models.PrecisionExact, 0.95
	case "RANGE_INTERPOLATED", "GEOMETRIC_CENTER":
		return models.PrecisionDistrict, 0.8
	default:
		return models.PrecisionApproximate, 0.6
	}
}
