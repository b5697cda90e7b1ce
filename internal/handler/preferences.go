package handler

import (
	"log/slog"
	"net/http"

	"maisoku/internal/domain/services"
	"maisoku/internal/httputil"
)

// PreferencesHandler handles preference HTTP requests
type PreferencesHandler struct {
	service services.PreferenceService
	logger  *slog.Logger
}

// NewPreferencesHandler creates a new preferences handler
func NewPreferencesHandler(service services.PreferenceService, logger *slog.Logger) *PreferencesHandler {
	return &PreferencesHandler{
		service: service,
		logger:  logger,
	}
}

// GetPreferences retrieves the caller's preference set
// GET /api/users/me/preferences
func (h *PreferencesHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	prefs, err := h.service.GetPreferences(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, prefs)
}

// SavePreferences overwrites the caller's preference set
// PUT /api/users/me/preferences
func (h *PreferencesHandler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req services.SavePreferencesRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	prefs, err := h.service.SavePreferences(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, prefs)
}
