package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"

	"github.com/terrapulse/terrapulse/internal/api/models"
	"github.com/terrapulse/terrapulse/internal/api/response"
)

var dateRangePattern = regexp.MustCompile(`^\d{8}$`)

// TemperatureSource fetches daily temperature series for a point.
type TemperatureSource interface {
	DailyTemperature(ctx context.Context, lat, lng float64, start, end string) (json.RawMessage, error)
}

// TemperatureHandler handles temperature endpoints.
type TemperatureHandler struct {
	source TemperatureSource
}

// NewTemperatureHandler creates a new TemperatureHandler.
func NewTemperatureHandler(source TemperatureSource) *TemperatureHandler {
	return &TemperatureHandler{source: source}
}

// GetDailyTemperature handles GET /v1/temperature.
func (h *TemperatureHandler) GetDailyTemperature(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, lng := 28.61, 77.23
	start, end := "20251001", "20251004"

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
	if raw := q.Get("start"); raw != "" {
		if !dateRangePattern.MatchString(raw) {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field: "start", Message: "must be a date in YYYYMMDD format", Code: "INVALID_FORMAT",
			})
		} else {
			start = raw
		}
	}
	if raw := q.Get("end"); raw != "" {
		if !dateRangePattern.MatchString(raw) {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field: "end", Message: "must be a date in YYYYMMDD format", Code: "INVALID_FORMAT",
			})
		} else {
			end = raw
		}
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid query parameters", fieldErrors)
		return
	}

	if h.source == nil {
		response.ServiceUnavailable(w, r, "temperature data is temporarily unavailable")
		return
	}

	payload, err := h.source.DailyTemperature(r.Context(), lat, lng, start, end)
	if err != nil {
		response.ServiceUnavailable(w, r, "temperature data is temporarily unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
