package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"maisoku/internal/domain/services"
	"maisoku/internal/httputil"
)

// AddressHandler handles address resolution HTTP requests
type AddressHandler struct {
	service services.AddressService
	logger  *slog.Logger
}

// NewAddressHandler creates a new address handler
func NewAddressHandler(service services.AddressService, logger *slog.Logger) *AddressHandler {
	return &AddressHandler{
		service: service,
		logger:  logger,
	}
}

// Suggest returns autocomplete candidates for a partial address
// GET /api/address/suggest?input=...
func (h *AddressHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("input")

	suggestions, err := h.service.Suggest(r.Context(), input)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
	})
}

// resolveBody is the JSON body for a free-text resolution request.
type resolveBody struct {
	Address string `json:"address"`
}

// Resolve geocodes a free-text address
// POST /api/address/resolve
func (h *AddressHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var body resolveBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resolution, err := h.service.ResolveFromText(r.Context(), body.Address)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resolution)
}

// ReverseGeocode resolves coordinates to an address
// GET /api/address/reverse?lat=...&lng=...
func (h *AddressHandler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid lat parameter")
		return
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid lng parameter")
		return
	}

	resolution, err := h.service.ResolveFromCoordinates(r.Context(), lat, lng)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resolution)
}
