package services

import (
	"context"

	"maisoku/internal/domain/models"
)

// AddressService resolves free-text and GPS input into normalized addresses
// with precision metadata.
type AddressService interface {
	// ResolveFromText geocodes a free-text address. Structurally invalid
	// input is rejected before any remote call.
	ResolveFromText(ctx context.Context, input string) (*models.AddressResolution, error)

	// ResolveFromCoordinates reverse-geocodes a GPS position. The result is
	// always precision "exact" with confidence 1.0.
	ResolveFromCoordinates(ctx context.Context, lat, lng float64) (*models.AddressResolution, error)

	// Suggest returns autocomplete candidates for a partial input. Lookups
	// are best-effort: remote failures yield an empty list, never an error.
	Suggest(ctx context.Context, partial string) ([]models.Suggestion, error)
}
