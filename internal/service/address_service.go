package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"maisoku/internal/config"
	"maisoku/internal/domain"
	"maisoku/internal/domain/models"
	"maisoku/internal/domain/services"
	"maisoku/internal/maps"
)

// AddressService implements the AddressService interface on a Geocoder.
type AddressService struct {
	geocoder maps.Geocoder
	logger   *slog.Logger
}

// NewAddressService creates a new address service.
func NewAddressService(geocoder maps.Geocoder, logger *slog.Logger) services.AddressService {
	return &AddressService{geocoder: geocoder, logger: logger}
}

// ResolveFromText geocodes a free-text address.
func (s *AddressService) ResolveFromText(ctx context.Context, input string) (*models.AddressResolution, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, &domain.ValidationError{Message: "address cannot be empty"}
	}
	if len([]rune(trimmed)) > config.MaxAddressLength {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("address exceeds %d characters", config.MaxAddressLength),
		}
	}

	geo, err := s.geocoder.Geocode(ctx, trimmed)
	if err != nil {
		return nil, err
	}

	return &models.AddressResolution{
		OriginalInput:     input,
		NormalizedAddress: geo.FormattedAddress,
		Latitude:          geo.Latitude,
		Longitude:         geo.Longitude,
		PrecisionLevel:    geo.Precision,
		Confidence:        geo.Confidence,
		AnalysisRadius:    geo.Precision.AnalysisRadius(),
	}, nil
}

// ResolveFromCoordinates reverse-geocodes a GPS position. A device fix is
// treated as exact regardless of how the geocoder classifies the address.
func (s *AddressService) ResolveFromCoordinates(ctx context.Context, lat, lng float64) (*models.AddressResolution, error) {
	if err := models.ValidateCoordinates(lat, lng); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	address, err := s.geocoder.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		return nil, err
	}

	return &models.AddressResolution{
		OriginalInput:     fmt.Sprintf("%.6f,%.6f", lat, lng),
		NormalizedAddress: address,
		Latitude:          lat,
		Longitude:         lng,
		PrecisionLevel:    models.PrecisionExact,
		Confidence:        1.0,
		AnalysisRadius:    models.PrecisionExact.AnalysisRadius(),
	}, nil
}

// Suggest returns autocomplete candidates. Inputs shorter than the minimum
// never hit the network, and remote failures degrade to an empty list so the
// caller's typing flow is never interrupted.
func (s *AddressService) Suggest(ctx context.Context, partial string) ([]models.Suggestion, error) {
	trimmed := strings.TrimSpace(partial)
	if len([]rune(trimmed)) < config.MinSuggestInputLength {
		return []models.Suggestion{}, nil
	}

	suggestions, err := s.geocoder.Autocomplete(ctx, trimmed)
	if err != nil {
		s.logger.Warn("address autocomplete failed", "error", err)
		return []models.Suggestion{}, nil
	}
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}
	return suggestions, nil
}
