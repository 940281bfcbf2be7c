package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/terrapulse/terrapulse/internal/airquality"
	"github.com/terrapulse/terrapulse/internal/api/models"
	"github.com/terrapulse/terrapulse/internal/api/response"
)

// AirQualityService resolves air quality by city and by coordinate.
type AirQualityService interface {
	CityAirQuality(ctx context.Context, city string) (*airquality.AirQualityData, error)
	NearbyAirQuality(ctx context.Context, lat, lng float64) *airquality.NearbyAirQuality
	GlobalAirQuality(limit int) []airquality.AirQualityData
}

// AirQualityHandler handles air quality endpoints.
type AirQualityHandler struct {
	service AirQualityService
}

// NewAirQualityHandler creates a new AirQualityHandler.
func NewAirQualityHandler(service AirQualityService) *AirQualityHandler {
	return &AirQualityHandler{service: service}
}

// GetCity handles GET /v1/air-quality - air quality for a named city.
func (h *AirQualityHandler) GetCity(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		response.BadRequest(w, r, "city parameter is required", []models.FieldError{
			{Field: "city", Message: "required", Code: "REQUIRED"},
		})
		return
	}

	data, err := h.service.CityAirQuality(r.Context(), city)
	if err != nil {
		if errors.Is(err, airquality.ErrNoData) {
			response.NotFound(w, r, "no air quality data found for "+city)
			return
		}
		response.InternalError(w, r, "failed to fetch air quality")
		return
	}
	response.JSON(w, r, http.StatusOK, data)
}

// GetNearby handles GET /v1/air-quality/nearby - nearest-station conditions.
func (h *AirQualityHandler) GetNearby(w http.ResponseWriter, r *http.Request) {
	lat, lng, fieldErrors := parseCoords(r, "lat", "lng")
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid query parameters", fieldErrors)
		return
	}

	response.JSON(w, r, http.StatusOK, h.service.NearbyAirQuality(r.Context(), lat, lng))
}

// GetGlobal handles GET /v1/air-quality/global - the monitored city sample.
func (h *AirQualityHandler) GetGlobal(w http.ResponseWriter, r *http.Request) {
	limit := 60
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

	response.JSON(w, r, http.StatusOK, h.service.GlobalAirQuality(limit))
}
