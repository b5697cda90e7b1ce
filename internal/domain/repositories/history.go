package repositories

import (
	"context"

	"github.com/google/uuid"
	"maisoku/internal/domain/models"
)

// HistoryRepository defines the interface for analysis history data access.
// Entries are append-only: there is no update operation.
type HistoryRepository interface {
	// Create inserts a new history entry and fills in its generated ID.
	Create(ctx context.Context, entry *models.HistoryEntry) error

	// List retrieves a user's entries ordered by recency, newest first.
	List(ctx context.Context, userID string, limit int) ([]models.HistoryEntry, error)

	// GetByID retrieves one entry scoped to its owner.
	// Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*models.HistoryEntry, error)

	// Delete removes an entry scoped to its owner. Deleting an absent entry
	// is a no-op: callers must be able to retry deletes safely.
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}
