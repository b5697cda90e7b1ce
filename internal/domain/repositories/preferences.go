package repositories

import (
	"context"

	"maisoku/internal/domain/models"
)

// PreferenceRepository defines the interface for user preference data access
type PreferenceRepository interface {
	// GetByUserID retrieves the preference set for a specific user.
	// Returns nil if the user has never saved preferences.
	GetByUserID(ctx context.Context, userID string) (*models.UserPreference, error)

	// Upsert creates or fully overwrites a user's preference set.
	// Last write wins; there is no partial merge.
	Upsert(ctx context.Context, prefs *models.UserPreference) error
}
