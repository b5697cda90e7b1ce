package services

import (
	"context"

	"github.com/google/uuid"
	"maisoku/internal/domain/models"
)

// HistoryService manages the per-user list of saved camera analyses.
type HistoryService interface {
	// Save stores a camera analysis result, uploading its image alongside
	// the record. Always creates a new entry.
	Save(ctx context.Context, req *SaveHistoryRequest) (*models.HistoryEntry, error)

	// List retrieves a user's history ordered by recency.
	// limit <= 0 selects the default page size.
	List(ctx context.Context, userID string, limit int) ([]models.HistoryEntry, error)

	// Delete removes an entry and best-effort deletes its stored image.
	// Image deletion failure never blocks record deletion, and deleting an
	// already-deleted entry is a no-op.
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

// SaveHistoryRequest carries one analysis result plus its source image.
type SaveHistoryRequest struct {
	UserID             string
	Analysis           string
	IsPersonalized     bool
	PreferenceSnapshot *models.UserPreference
	// Image is the compressed JPEG that was analyzed. May be nil when the
	// caller chose not to retain the photo.
	Image []byte
}
