package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/terrapulse/terrapulse/internal/alerts"
	"github.com/terrapulse/terrapulse/internal/api/models"
	"github.com/terrapulse/terrapulse/internal/api/response"
)

// AlertService builds disaster alert reports.
type AlertService interface {
	Report(ctx context.Context, lat, lng float64, city string, radiusKm float64) *alerts.Report
}

// AlertHandler handles disaster alert endpoints.
type AlertHandler struct {
	service AlertService
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(service AlertService) *AlertHandler {
	return &AlertHandler{service: service}
}

// GetDisasterAlerts handles GET /v1/disaster-alerts.
func (h *AlertHandler) GetDisasterAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// Delhi is the default monitored location.
	lat, lng := 28.61, 77.23
	city := "Delhi"
	radiusKm := 50.0

	var fieldErrors []models.FieldError
	if raw := q.Get("latitude"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < -90 || parsed > 90 {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field: "latitude", Message: "must be a number between -90 and 90", Code: "OUT_OF_RANGE",
			})
		} else {
			lat = parsed
		}
	}
	if raw := q.Get("longitude"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < -180 || parsed > 180 {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field: "longitude", Message: "must be a number between -180 and 180", Code: "OUT_OF_RANGE",
			})
		} else {
			lng = parsed
		}
	}
	if raw := q.Get("radius"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field: "radius", Message: "must be a positive number of kilometers", Code: "OUT_OF_RANGE",
			})
		} else {
			radiusKm = parsed
		}
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid query parameters", fieldErrors)
		return
	}
	if raw := q.Get("city"); raw != "" {
		city = raw
	}

	report := h.service.Report(r.Context(), lat, lng, city, radiusKm)
	response.JSON(w, r, http.StatusOK, report)
}
