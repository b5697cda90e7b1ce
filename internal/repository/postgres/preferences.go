package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"maisoku/internal/domain/models"
	"maisoku/internal/domain/repositories"
)

// PostgresPreferenceRepository implements the PreferenceRepository interface
type PostgresPreferenceRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewPreferenceRepository creates a new PostgresPreferenceRepository
func NewPreferenceRepository(config *RepositoryConfig) repositories.PreferenceRepository {
	return &PostgresPreferenceRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetByUserID retrieves the preference set for a specific user
func (r *PostgresPreferenceRepository) GetByUserID(ctx context.Context, userID string) (*models.UserPreference, error) {
	query := fmt.Sprintf(`
		SELECT user_id, station_access, multi_line, car_access, medical,
		       shopping, education, parks, lifestyle_type, budget_priority,
		       created_at, updated_at
		FROM %s
		WHERE user_id = $1
	`, r.tables.Preferences)

	var prefs models.UserPreference
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, userID).Scan(
		&prefs.UserID,
		&prefs.StationAccess,
		&prefs.MultiLine,
		&prefs.CarAccess,
		&prefs.Medical,
		&prefs.Shopping,
		&prefs.Education,
		&prefs.Parks,
		&prefs.LifestyleType,
		&prefs.BudgetPriority,
		&prefs.CreatedAt,
		&prefs.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			// No preferences exist yet - return nil (not an error)
			return nil, nil
		}
		return nil, fmt.Errorf("get user preferences: %w", err)
	}

	return &prefs, nil
}

// Upsert creates or fully overwrites a user's preference set.
// Last write wins on concurrent saves.
func (r *PostgresPreferenceRepository) Upsert(ctx context.Context, prefs *models.UserPreference) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, station_access, multi_line, car_access,
		                medical, shopping, education, parks, lifestyle_type,
		                budget_priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id) DO UPDATE SET
			station_access = EXCLUDED.station_access,
			multi_line = EXCLUDED.multi_line,
			car_access = EXCLUDED.car_access,
			medical = EXCLUDED.medical,
			shopping = EXCLUDED.shopping,
			education = EXCLUDED.education,
			parks = EXCLUDED.parks,
			lifestyle_type = EXCLUDED.lifestyle_type,
			budget_priority = EXCLUDED.budget_priority,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`, r.tables.Preferences)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		prefs.UserID,
		prefs.StationAccess,
		prefs.MultiLine,
		prefs.CarAccess,
		prefs.Medical,
		prefs.Shopping,
		prefs.Education,
		prefs.Parks,
		prefs.LifestyleType,
		prefs.BudgetPriority,
		prefs.CreatedAt,
		prefs.UpdatedAt,
	).Scan(&prefs.CreatedAt, &prefs.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert user preferences: %w", err)
	}

	return nil
}
