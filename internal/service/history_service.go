package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"maisoku/internal/config"
	"maisoku/internal/domain"
	"maisoku/internal/domain/models"
	"maisoku/internal/domain/repositories"
	"maisoku/internal/domain/services"
	"maisoku/internal/storage"
)

// HistoryService implements the HistoryService interface
type HistoryService struct {
	historyRepo repositories.HistoryRepository
	images      storage.ImageStore
	txManager   repositories.TransactionManager
	logger      *slog.Logger
}

// NewHistoryService creates a new history service
func NewHistoryService(
	historyRepo repositories.HistoryRepository,
	images storage.ImageStore,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.HistoryService {
	return &HistoryService{
		historyRepo: historyRepo,
		images:      images,
		txManager:   txManager,
		logger:      logger,
	}
}

// Save stores a camera analysis as a new history entry. The image upload
// happens first so a record never points at a missing object.
func (s *HistoryService) Save(ctx context.Context, req *services.SaveHistoryRequest) (*models.HistoryEntry, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: user ID is required", domain.ErrValidation)
	}
	if req.Analysis == "" {
		return nil, fmt.Errorf("%w: analysis text is empty", domain.ErrValidation)
	}

	entry := &models.HistoryEntry{
		UserID:             req.UserID,
		Timestamp:          time.Now(),
		Summary:            models.Summarize(req.Analysis),
		Analysis:           req.Analysis,
		IsPersonalized:     req.IsPersonalized,
		PreferenceSnapshot: req.PreferenceSnapshot,
	}

	if len(req.Image) > 0 {
		key := fmt.Sprintf("users/%s/history/%s.jpg", req.UserID, uuid.NewString())
		if err := s.images.Upload(ctx, key, req.Image); err != nil {
			return nil, fmt.Errorf("upload history image: %w", err)
		}
		entry.ImageKey = key
		entry.ImageURL = s.images.PublicURL(key)
	}

	if err := s.historyRepo.Create(ctx, entry); err != nil {
		// The record failed after the image went up; remove the orphan.
		if entry.ImageKey != "" {
			if delErr := s.images.Delete(ctx, entry.ImageKey); delErr != nil {
				s.logger.Warn("failed to clean up orphaned history image",
					"key", entry.ImageKey, "error", delErr)
			}
		}
		return nil, err
	}

	s.logger.Info("history entry saved",
		"id", entry.ID,
		"user_id", entry.UserID,
		"is_personalized", entry.IsPersonalized,
	)

	return entry, nil
}

// List retrieves a user's history ordered by recency.
func (s *HistoryService) List(ctx context.Context, userID string, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = config.DefaultHistoryPageSize
	}
	if limit > config.MaxHistoryPageSize {
		limit = config.MaxHistoryPageSize
	}

	entries, err := s.historyRepo.List(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// Delete removes an entry and best-effort deletes its stored image. Deleting
// an entry that is already gone is a no-op.
func (s *HistoryService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	var entry *models.HistoryEntry

	// The read and the delete run in one transaction so the image key we
	// clean up afterwards belongs to the row we actually removed.
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		found, err := s.historyRepo.GetByID(txCtx, userID, id)
		if err != nil {
			return err
		}
		entry = found
		return s.historyRepo.Delete(txCtx, userID, id)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Already deleted - idempotent from the caller's perspective.
			s.logger.Debug("history entry already deleted", "id", id, "user_id", userID)
			return nil
		}
		return err
	}

	// Image deletion failure never blocks record deletion.
	if entry.ImageKey != "" {
		if err := s.images.Delete(ctx, entry.ImageKey); err != nil {
			s.logger.Warn("failed to delete history image",
				"key", entry.ImageKey, "error", err)
		}
	}

	s.logger.Info("history entry deleted", "id", id, "user_id", userID)

	return nil
}
