package services

import (
	"context"

	"maisoku/internal/domain/models"
)

// PreferenceService manages user housing-priority preferences.
type PreferenceService interface {
	// GetPreferences retrieves a user's preference set. When none exists
	// yet, an empty set is returned (never nil, never an error).
	GetPreferences(ctx context.Context, userID string) (*models.UserPreference, error)

	// SavePreferences validates and fully overwrites a user's preference
	// set. Partial merges are deliberately not supported.
	SavePreferences(ctx context.Context, userID string, req *SavePreferencesRequest) (*models.UserPreference, error)
}

// SavePreferencesRequest carries one full preference set to persist.
type SavePreferencesRequest struct {
	StationAccess  bool                  `json:"station_access"`
	MultiLine      bool                  `json:"multi_line"`
	CarAccess      bool                  `json:"car_access"`
	Medical        bool                  `json:"medical"`
	Shopping       bool                  `json:"shopping"`
	Education      bool                  `json:"education"`
	Parks          bool                  `json:"parks"`
	LifestyleType  models.LifestyleType  `json:"lifestyle_type"`
	BudgetPriority models.BudgetPriority `json:"budget_priority"`
}
