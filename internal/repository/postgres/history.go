package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"maisoku/internal/domain"
	"maisoku/internal/domain/models"
	"maisoku/internal/domain/repositories"
)

// PostgresHistoryRepository implements the HistoryRepository interface
type PostgresHistoryRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewHistoryRepository creates a new PostgresHistoryRepository
func NewHistoryRepository(config *RepositoryConfig) repositories.HistoryRepository {
	return &PostgresHistoryRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new history entry
func (r *PostgresHistoryRepository) Create(ctx context.Context, entry *models.HistoryEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, summary, analysis, image_key, image_url,
		                is_personalized, preference_snapshot, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, r.tables.History)

	snapshot, err := marshalSnapshot(entry.PreferenceSnapshot)
	if err != nil {
		return fmt.Errorf("encode preference snapshot: %w", err)
	}

	executor := GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		entry.UserID,
		entry.Summary,
		entry.Analysis,
		entry.ImageKey,
		entry.ImageURL,
		entry.IsPersonalized,
		snapshot,
		entry.Timestamp,
	).Scan(&entry.ID, &entry.Timestamp)

	if err != nil {
		return fmt.Errorf("create history entry: %w", err)
	}

	return nil
}

// List retrieves a user's entries ordered by recency, newest first
func (r *PostgresHistoryRepository) List(ctx context.Context, userID string, limit int) ([]models.HistoryEntry, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, summary, analysis, image_key, image_url,
		       is_personalized, preference_snapshot, created_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, r.tables.History)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		entry, err := scanHistoryEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	return entries, nil
}

// GetByID retrieves one entry scoped to its owner
func (r *PostgresHistoryRepository) GetByID(ctx context.Context, userID string, id uuid.UUID) (*models.HistoryEntry, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, summary, analysis, image_key, image_url,
		       is_personalized, preference_snapshot, created_at
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.History)

	executor := GetExecutor(ctx, r.pool)
	row := executor.QueryRow(ctx, query, id, userID)
	entry, err := scanHistoryEntry(row.Scan)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("history entry %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get history entry: %w", err)
	}

	return entry, nil
}

// Delete removes an entry scoped to its owner. Deleting an absent entry is a
// no-op so callers can retry deletes safely.
func (r *PostgresHistoryRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.History)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete history entry: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug("history entry already deleted", "id", id, "user_id", userID)
	}

	return nil
}

// scanHistoryEntry scans one row into a HistoryEntry, decoding the JSONB
// preference snapshot.
func scanHistoryEntry(scan func(dest ...interface{}) error) (*models.HistoryEntry, error) {
	var entry models.HistoryEntry
	var snapshot []byte

	err := scan(
		&entry.ID,
		&entry.UserID,
		&entry.Summary,
		&entry.Analysis,
		&entry.ImageKey,
		&entry.ImageURL,
		&entry.IsPersonalized,
		&snapshot,
		&entry.Timestamp,
	)
	if err != nil {
		return nil, err
	}

	if len(snapshot) > 0 {
		var prefs models.UserPreference
		if err := json.Unmarshal(snapshot, &prefs); err != nil {
			return nil, fmt.Errorf("decode preference snapshot: %w", err)
		}
		entry.PreferenceSnapshot = &prefs
	}

	return &entry, nil
}

// marshalSnapshot encodes a preference snapshot for JSONB storage.
// nil stays NULL so basic analyses are distinguishable from empty sets.
func marshalSnapshot(prefs *models.UserPreference) ([]byte, error) {
	if prefs == nil {
		return nil, nil
	}
	return json.Marshal(prefs)
}
