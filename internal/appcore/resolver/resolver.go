// Package resolver is the app-side half of address resolution: local input
// guards in front of the server's geocoding endpoints.
package resolver

import (
	"context"
	"log/slog"
	"strings"

	"maisoku/internal/config"
	"maisoku/internal/domain/models"
)

// API is the slice of the analysis API client the resolver needs.
type API interface {
	Suggest(ctx context.Context, partial string) ([]models.Suggestion, error)
	Resolve(ctx context.Context, address string) (*models.AddressResolution, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (*models.AddressResolution, error)
}

// InputError reports locally-rejected input. Nothing was sent anywhere.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

// Resolver validates address input locally and delegates resolution to the
// server.
type Resolver struct {
	api    API
	logger *slog.Logger
}

// New creates a resolver.
func New(api API, logger *slog.Logger) *Resolver {
	return &Resolver{api: api, logger: logger}
}

// ResolveFromText geocodes a typed address. Structurally invalid input is
// rejected before the request goes out.
func (r *Resolver) ResolveFromText(ctx context.Context, input string) (*models.AddressResolution, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, &InputError{Message: "住所を入力してください"}
	}
	if len([]rune(trimmed)) > config.MaxAddressLength {
		return nil, &InputError{Message: "住所が長すぎます"}
	}
	return r.api.Resolve(ctx, trimmed)
}

// ResolveFromCoordinates resolves a device GPS fix. Coordinates are checked
// locally first; a fix always resolves at exact precision.
func (r *Resolver) ResolveFromCoordinates(ctx context.Context, lat, lng float64) (*models.AddressResolution, error) {
	if err := models.ValidateCoordinates(lat, lng); err != nil {
		return nil, &InputError{Message: "現在地を取得できませんでした"}
	}
	return r.api.ReverseGeocode(ctx, lat, lng)
}

// Suggest returns autocomplete candidates while the user types. Inputs below
// the minimum length skip the network, and failures degrade to an empty
// list so typing is never interrupted.
func (r *Resolver) Suggest(ctx context.Context, partial string) []models.Suggestion {
	trimmed := strings.TrimSpace(partial)
	if len([]rune(trimmed)) < config.MinSuggestInputLength {
		return nil
	}

	suggestions, err := r.api.Suggest(ctx, trimmed)
	if err != nil {
		r.logger.Warn("address suggestion lookup failed", "error", err)
		return nil
	}
	return suggestions
}
