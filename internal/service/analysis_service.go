package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"maisoku/internal/config"
	"maisoku/internal/domain"
	"maisoku/internal/domain/models"
	"maisoku/internal/domain/repositories"
	"maisoku/internal/domain/services"
	"maisoku/internal/maps"
	"maisoku/internal/metrics"
	"maisoku/internal/prompt"
)

// AnalysisService implements the AnalysisService interface.
//
// Personalization is decided here and nowhere else: a request runs
// personalized iff it belongs to an authenticated user whose stored
// preference set is non-empty. The IsPersonalized flag on the result is
// authoritative for clients.
type AnalysisService struct {
	provider  services.AnalysisProvider
	prompts   *prompt.Builder
	prefsRepo repositories.PreferenceRepository
	history   services.HistoryService
	places    maps.PlacesSearcher
	geocoder  maps.Geocoder
	exporter  *metrics.Exporter
	logger    *slog.Logger
}

// NewAnalysisService creates a new analysis service. places and geocoder may
// be nil, which disables the structured sub-data on area analyses.
func NewAnalysisService(
	provider services.AnalysisProvider,
	prompts *prompt.Builder,
	prefsRepo repositories.PreferenceRepository,
	history services.HistoryService,
	geocoder maps.Geocoder,
	places maps.PlacesSearcher,
	exporter *metrics.Exporter,
	logger *slog.Logger,
) services.AnalysisService {
	return &AnalysisService{
		provider:  provider,
		prompts:   prompts,
		prefsRepo: prefsRepo,
		history:   history,
		geocoder:  geocoder,
		places:    places,
		exporter:  exporter,
		logger:    logger,
	}
}

// AnalyzeCamera runs a flyer-photo analysis. The camera endpoint requires
// authentication, so UserID is always set here.
func (s *AnalysisService) AnalyzeCamera(ctx context.Context, req *services.CameraAnalysisRequest) (*models.AnalysisResult, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: camera analysis requires authentication", domain.ErrUnauthorized)
	}
	if len(req.Image) == 0 {
		return nil, &domain.ValidationError{Message: "image is empty"}
	}
	if len(req.Image) > config.MaxUploadBytes {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("image exceeds %d bytes", config.MaxUploadBytes),
		}
	}

	prefs, err := s.effectivePreferences(ctx, req.UserID, req.Preferences)
	if err != nil {
		return nil, err
	}
	personalized := !prefs.IsEmpty()

	cameraPrompt, err := s.prompts.Camera(prefs)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	text, err := s.provider.AnalyzeImage(ctx, req.Image, cameraPrompt)
	elapsed := time.Since(start)
	s.observe(models.AnalysisCamera, personalized, err, elapsed)
	if err != nil {
		return nil, err
	}

	result := &models.AnalysisResult{
		Variant:               models.AnalysisCamera,
		Analysis:              text,
		IsPersonalized:        personalized,
		ProcessingTimeSeconds: elapsed.Seconds(),
		Timestamp:             time.Now(),
	}

	if req.SaveHistory {
		saveReq := &services.SaveHistoryRequest{
			UserID:         req.UserID,
			Analysis:       text,
			IsPersonalized: personalized,
			Image:          req.Image,
		}
		if personalized {
			saveReq.PreferenceSnapshot = prefs
		}
		// History persistence is opt-in convenience; the analysis result is
		// already in hand and a storage failure must not discard it.
		if _, err := s.history.Save(ctx, saveReq); err != nil {
			s.logger.Error("failed to save analysis history",
				"user_id", req.UserID, "error", err)
		}
	}

	s.logger.Info("camera analysis completed",
		"user_id", req.UserID,
		"is_personalized", personalized,
		"elapsed", elapsed,
	)

	return result, nil
}

// AnalyzeArea runs a surrounding-area analysis. Staged authentication:
// UserID may be empty, which forces the basic tier.
func (s *AnalysisService) AnalyzeArea(ctx context.Context, req *services.AreaAnalysisRequest) (*models.AnalysisResult, error) {
	if err := s.validateAreaRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	prefs := &models.UserPreference{}
	if req.UserID != "" {
		var err error
		prefs, err = s.effectivePreferences(ctx, req.UserID, req.Preferences)
		if err != nil {
			return nil, err
		}
	}
	personalized := req.UserID != "" && !prefs.IsEmpty()
	if !personalized {
		prefs = &models.UserPreference{}
	}

	areaPrompt, err := s.prompts.Area(req.Address, prefs)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	text, err := s.provider.AnalyzeText(ctx, areaPrompt)
	elapsed := time.Since(start)
	s.observe(models.AnalysisArea, personalized, err, elapsed)
	if err != nil {
		return nil, err
	}

	result := &models.AnalysisResult{
		Variant:               models.AnalysisArea,
		Analysis:              text,
		IsPersonalized:        personalized,
		ProcessingTimeSeconds: elapsed.Seconds(),
		Timestamp:             time.Now(),
	}

	// Structured sub-data is best-effort garnish on top of the text
	// analysis; lookups that fail just leave it out.
	s.attachAreaData(ctx, req.Address, result)

	s.logger.Info("area analysis completed",
		"user_id", req.UserID,
		"is_personalized", personalized,
		"elapsed", elapsed,
	)

	return result, nil
}

// effectivePreferences returns the preference set an authenticated request
// analyzes with: the explicit set when the request carries one, the stored
// set otherwise.
func (s *AnalysisService) effectivePreferences(ctx context.Context, userID string, explicit *models.UserPreference) (*models.UserPreference, error) {
	if explicit != nil {
		return explicit, nil
	}

	stored, err := s.prefsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	if stored == nil {
		return &models.UserPreference{UserID: userID}, nil
	}
	return stored, nil
}

// attachAreaData resolves the address and fills in the station list and
// facility counts. Every failure is logged and swallowed.
func (s *AnalysisService) attachAreaData(ctx context.Context, address string, result *models.AnalysisResult) {
	if s.geocoder == nil || s.places == nil {
		return
	}

	geo, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		s.logger.Warn("area data: geocode failed", "error", err)
		return
	}
	radius := geo.Precision.AnalysisRadius()

	if stations, err := s.places.NearbyStations(ctx, geo.Latitude, geo.Longitude, radius); err != nil {
		s.logger.Warn("area data: station lookup failed", "error", err)
	} else {
		result.TrafficAccess = stations
	}

	if density, err := s.places.FacilityDensity(ctx, geo.Latitude, geo.Longitude, radius); err != nil {
		s.logger.Warn("area data: facility lookup failed", "error", err)
	} else {
		result.FacilityDensity = density
	}
}

func (s *AnalysisService) observe(variant models.AnalysisVariant, personalized bool, err error, elapsed time.Duration) {
	if s.exporter == nil {
		return
	}
	analysisType := string(models.AnalysisBasic)
	if personalized {
		analysisType = string(models.AnalysisPersonalized)
	}
	s.exporter.ObserveAnalysis(string(variant), analysisType, err, elapsed)
}

// validateAreaRequest validates an area analysis request
func (s *AnalysisService) validateAreaRequest(req *services.AreaAnalysisRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Address,
			validation.Required,
			validation.Length(1, config.MaxAddressLength),
			validation.By(validateAddressText),
		),
	)
}

func validateAddressText(value interface{}) error {
	addr, _ := value.(string)
	if strings.TrimSpace(addr) == "" {
		return fmt.Errorf("address is blank")
	}
	return nil
}
