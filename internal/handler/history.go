package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"maisoku/internal/domain/services"
	"maisoku/internal/httputil"
)

// HistoryHandler handles analysis history HTTP requests
type HistoryHandler struct {
	service services.HistoryService
	logger  *slog.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(service services.HistoryService, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		service: service,
		logger:  logger,
	}
}

// ListHistory retrieves the caller's analysis history, newest first
// GET /api/users/me/history?limit=...
func (h *HistoryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	entries, err := h.service.List(r.Context(), userID, limit)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}

// DeleteHistory removes one history entry. Deleting an entry that no longer
// exists still returns 204.
// DELETE /api/users/me/history/{id}
func (h *HistoryHandler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid history ID format")
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
