package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/terrapulse/terrapulse/internal/api/models"
	"github.com/terrapulse/terrapulse/internal/api/response"
	"github.com/terrapulse/terrapulse/internal/provider/openaq"
)

// LocationsSource fetches monitoring station listings.
type LocationsSource interface {
	Locations(ctx context.Context, limit int) (*openaq.LocationsPage, error)
}

// OpenAQHandler handles station listing endpoints.
type OpenAQHandler struct {
	source LocationsSource
}

// NewOpenAQHandler creates a new OpenAQHandler.
func NewOpenAQHandler(source LocationsSource) *OpenAQHandler {
	return &OpenAQHandler{source: source}
}

// GetLocations handles GET /v1/openaq. Upstream failures fall back to a
// bundled station sample so the endpoint always returns data.
func (h *OpenAQHandler) GetLocations(w http.ResponseWriter, r *http.Request) {
	limit := openaq.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.BadRequest(w, r, "invalid query parameters", []models.FieldError{
				{Field: "limit", Message: "must be a positive integer", Code: "OUT_OF_RANGE"},
			})
			return
		}
		limit = parsed
	}

	if h.source == nil {
		response.JSON(w, r, http.StatusOK, openaq.FallbackLocations(limit))
		return
	}

	page, err := h.source.Locations(r.Context(), limit)
	if err != nil {
		response.JSON(w, r, http.StatusOK, openaq.FallbackLocations(limit))
		return
	}
	response.JSON(w, r, http.StatusOK, page)
}
