package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"maisoku/internal/domain"
	"maisoku/internal/domain/models"
	"maisoku/internal/domain/repositories"
	"maisoku/internal/domain/services"
)

// PreferenceService implements the PreferenceService interface
type PreferenceService struct {
	prefsRepo repositories.PreferenceRepository
	logger    *slog.Logger
}

// NewPreferenceService creates a new preference service
func NewPreferenceService(
	prefsRepo repositories.PreferenceRepository,
	logger *slog.Logger,
) services.PreferenceService {
	return &PreferenceService{
		prefsRepo: prefsRepo,
		logger:    logger,
	}
}

// GetPreferences retrieves a user's preference set. A user who has never
// saved preferences gets an empty set, which downstream consumers read as
// "cannot personalize".
func (s *PreferenceService) GetPreferences(ctx context.Context, userID string) (*models.UserPreference, error) {
	prefs, err := s.prefsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	if prefs == nil {
		s.logger.Debug("no preferences found, returning empty set", "user_id", userID)
		prefs = &models.UserPreference{UserID: userID}
	}

	return prefs, nil
}

// SavePreferences validates and fully overwrites a user's preference set.
// Saving an all-unset request is legal: it resets the user to the basic tier.
func (s *PreferenceService) SavePreferences(ctx context.Context, userID string, req *services.SavePreferencesRequest) (*models.UserPreference, error) {
	if err := s.validateSaveRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	prefs := &models.UserPreference{
		UserID:         userID,
		StationAccess:  req.StationAccess,
		MultiLine:      req.MultiLine,
		CarAccess:      req.CarAccess,
		Medical:        req.Medical,
		Shopping:       req.Shopping,
		Education:      req.Education,
		Parks:          req.Parks,
		LifestyleType:  req.LifestyleType,
		BudgetPriority: req.BudgetPriority,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.prefsRepo.Upsert(ctx, prefs); err != nil {
		return nil, fmt.Errorf("upsert preferences: %w", err)
	}

	s.logger.Info("user preferences saved",
		"user_id", userID,
		"is_empty", prefs.IsEmpty(),
		"lifestyle", prefs.LifestyleType,
		"budget", prefs.BudgetPriority,
	)

	return prefs, nil
}

// validateSaveRequest validates a save preferences request
func (s *PreferenceService) validateSaveRequest(req *services.SavePreferencesRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.LifestyleType, validation.By(validateLifestyle)),
		validation.Field(&req.BudgetPriority, validation.By(validateBudget)),
	)
}

func validateLifestyle(value interface{}) error {
	l, _ := value.(models.LifestyleType)
	if !l.Valid() {
		return fmt.Errorf("unknown lifestyle type %q", l)
	}
	return nil
}

func validateBudget(value interface{}) error {
	b, _ := value.(models.BudgetPriority)
	if !b.Valid() {
		return fmt.Errorf("unknown budget priority %q", b)
	}
	return nil
}
