package handler

import (
	"net/http"
	"runtime"
	"time"

	"maisoku/internal/config"
	"maisoku/internal/domain/models"
	"maisoku/internal/httputil"
	"maisoku/internal/prompt"
)

// DebugHandler exposes diagnostics and prompt previews for development.
// Never registered in production.
type DebugHandler struct {
	cfg     *config.Config
	prompts *prompt.Builder
}

// NewDebugHandler creates a new debug handler
func NewDebugHandler(cfg *config.Config, prompts *prompt.Builder) *DebugHandler {
	return &DebugHandler{cfg: cfg, prompts: prompts}
}

// Diagnostics reports which backing components are configured, with secrets
// masked. The server refuses to start with a broken component, so a running
// server's availability mirrors its configuration.
// GET /debug
func (h *DebugHandler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"environment":           h.cfg.Environment,
		"vertex_ai_available":   h.cfg.GoogleCloudProject != "",
		"firebase_available":    h.cfg.FirebaseProjectID != "",
		"google_maps_available": h.cfg.GoogleMapsAPIKey != "",
		"project_id":            h.cfg.GoogleCloudProject,
		"location":              h.cfg.VertexAILocation,
		"model":                 h.cfg.GeminiModel,
		"go_version":            runtime.Version(),
		"environment_vars": map[string]interface{}{
			"GOOGLE_CLOUD_PROJECT": h.cfg.GoogleCloudProject,
			"VERTEX_AI_LOCATION":   h.cfg.VertexAILocation,
			"FIREBASE_PROJECT_ID":  h.cfg.FirebaseProjectID,
			"GOOGLE_MAPS_API_KEY":  masked(h.cfg.GoogleMapsAPIKey),
			"DATABASE_URL":         masked(h.cfg.DatabaseURL),
		},
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// masked hides a secret's value while still showing whether it is set.
func masked(secret string) interface{} {
	if secret == "" {
		return nil
	}
	return "***"
}

// promptPreviewBody selects which prompt to render.
type promptPreviewBody struct {
	Variant     string                 `json:"variant"` // camera | area
	Address     string                 `json:"address"`
	Preferences *models.UserPreference `json:"preferences"`
}

// PreviewPrompt renders the prompt an analysis request would send, without
// calling the model.
// POST /debug/api/prompt
func (h *DebugHandler) PreviewPrompt(w http.ResponseWriter, r *http.Request) {
	var body promptPreviewBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var (
		rendered string
		err      error
	)
	switch body.Variant {
	case "camera":
		rendered, err = h.prompts.Camera(body.Preferences)
	case "area":
		rendered, err = h.prompts.Area(body.Address, body.Preferences)
	default:
		httputil.RespondError(w, http.StatusBadRequest, "variant must be camera or area")
		return
	}
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"prompt": rendered})
}
