package handler

import (
	"net/http"

	"maisoku/internal/httputil"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	environment string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(environment string) *HealthHandler {
	return &HealthHandler{environment: environment}
}

// Health reports service liveness
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"status":      "ok",
		"environment": h.environment,
	})
}
