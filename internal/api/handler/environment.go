// Package handler provides HTTP handlers for the TerraPulse API.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/terrapulse/terrapulse/internal/aggregate"
	"github.com/terrapulse/terrapulse/internal/api/models"
	"github.com/terrapulse/terrapulse/internal/api/response"
	"github.com/terrapulse/terrapulse/internal/observation"
)

// EnvironmentService aggregates category observations and summaries.
type EnvironmentService interface {
	Observations(ctx context.Context, lat, lng float64, cat observation.Category, locationName string) []observation.Observation
	BuildSummary(ctx context.Context, lat, lng float64) aggregate.Summary
}

// EnvironmentHandler handles environmental observation endpoints.
type EnvironmentHandler struct {
	service EnvironmentService
}

// NewEnvironmentHandler creates a new EnvironmentHandler.
func NewEnvironmentHandler(service EnvironmentService) *EnvironmentHandler {
	return &EnvironmentHandler{service: service}
}

// environmentResponse wraps the merged observation list for a category.
type environmentResponse struct {
	Category observation.Category      `json:"category"`
	Location string                    `json:"location,omitempty"`
	Count    int                       `json:"count"`
	Results  []observation.Observation `json:"results"`
}

// GetObservations handles GET /v1/environment - merged observations for a
// category around a coordinate.
func (h *EnvironmentHandler) GetObservations(w http.ResponseWriter, r *http.Request) {
	lat, lng, fieldErrors := parseCoords(r, "lat", "lng")

	rawCategory := r.URL.Query().Get("category")
	cat, ok := observation.ParseCategory(rawCategory)
	if !ok {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   "category",
			Message: "must be one of heat, green, water, aqi",
			Code:    "INVALID_ENUM",
		})
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid query parameters", fieldErrors)
		return
	}

	location := r.URL.Query().Get("location")

	results := h.service.Observations(r.Context(), lat, lng, cat, location)
	response.JSON(w, r, http.StatusOK, environmentResponse{
		Category: cat,
		Location: location,
		Count:    len(results),
		Results:  results,
	})
}

// GetSummary handles GET /v1/environment/summary - urban analytics roll-up.
func (h *EnvironmentHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	lat, lng, fieldErrors := parseCoords(r, "lat", "lng")
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid query parameters", fieldErrors)
		return
	}

	summary := h.service.BuildSummary(r.Context(), lat, lng)
	response.JSON(w, r, http.StatusOK, summary)
}

// parseCoords extracts and validates latitude/longitude query parameters.
func parseCoords(r *http.Request, latKey, lngKey string) (lat, lng float64, fieldErrors []models.FieldError) {
	var err error

	lat, err = strconv.ParseFloat(r.URL.Query().Get(latKey), 64)
	if err != nil || lat < -90 || lat > 90 {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   latKey,
			Message: "must be a number between -90 and 90",
			Code:    "OUT_OF_RANGE",
		})
	}

	lng, err = strconv.ParseFloat(r.URL.Query().Get(lngKey), 64)
	if err != nil || lng < -180 || lng > 180 {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   lngKey,
			Message: "must be a number between -180 and 180",
			Code:    "OUT_OF_RANGE",
		})
	}
	return lat, lng, fieldErrors
}
