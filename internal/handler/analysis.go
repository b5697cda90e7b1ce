package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"maisoku/internal/config"
	"maisoku/internal/domain/models"
	"maisoku/internal/domain/services"
	"maisoku/internal/httputil"
)

// AnalysisHandler handles camera and area analysis requests
type AnalysisHandler struct {
	service services.AnalysisService
	logger  *slog.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service services.AnalysisService, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		logger:  logger,
	}
}

// AnalyzeCamera runs a flyer-photo analysis.
// POST /api/analysis/camera (multipart/form-data: image, save_history)
func (h *AnalysisHandler) AnalyzeCamera(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	// Cap the whole request body before touching the multipart reader so an
	// oversized upload is rejected without buffering it.
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes+1<<16)

	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || r.ContentLength > config.MaxUploadBytes {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "Image exceeds the 5MB upload limit")
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, "Invalid multipart request")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Missing image field")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Failed to read image")
		return
	}
	if len(image) > config.MaxUploadBytes {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "Image exceeds the 5MB upload limit")
		return
	}

	saveHistory, _ := strconv.ParseBool(r.FormValue("save_history"))

	prefs, err := parsePreferencesField(r.FormValue("preferences"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid preferences field")
		return
	}

	result, err := h.service.AnalyzeCamera(r.Context(), &services.CameraAnalysisRequest{
		UserID:      userID,
		Image:       image,
		Preferences: prefs,
		SaveHistory: saveHistory,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// parsePreferencesField decodes the optional preferences form value carried
// alongside a camera upload. An empty value means "use the stored set".
func parsePreferencesField(raw string) (*models.UserPreference, error) {
	if raw == "" {
		return nil, nil
	}
	var prefs models.UserPreference
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// areaAnalysisBody is the JSON body for an area analysis request. Preferences
// are an optional per-request override of the caller's stored set.
type areaAnalysisBody struct {
	Address     string                 `json:"address"`
	Preferences *models.UserPreference `json:"preferences"`
}

// AnalyzeArea runs a surrounding-area analysis. Works unauthenticated,
// in which case the result is always the basic tier.
// POST /api/analysis/area
func (h *AnalysisHandler) AnalyzeArea(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var body areaAnalysisBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.AnalyzeArea(r.Context(), &services.AreaAnalysisRequest{
		UserID:      userID,
		Address:     body.Address,
		Preferences: body.Preferences,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
