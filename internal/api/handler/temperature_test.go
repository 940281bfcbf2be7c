package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/terrapulse/terrapulse/internal/api/handler"
)

type stubTemperatureSource struct {
	payload json.RawMessage
	err     error

	lat, lng   float64
	start, end string
}

func (s *stubTemperatureSource) DailyTemperature(_ context.Context, lat, lng float64, start, end string) (json.RawMessage, error) {
	s.lat, s.lng, s.start, s.end = lat, lng, start, end
	return s.payload, s.err
}

func TestGetDailyTemperature_Passthrough(t *testing.T) {
	source := &stubTemperatureSource{payload: json.RawMessage(`{"properties":{"parameter":{"T2M":{"20251001":31.2}}}}`)}
	h := handler.NewTemperatureHandler(source)

	req := httptest.NewRequest(http.MethodGet, "/v1/temperature?latitude=19.07&longitude=72.87&start=20251001&end=20251002", http.NoBody)
	w := httptest.NewRecorder()

	h.GetDailyTemperature(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, string(source.payload), w.Body.String())
	assert.Equal(t, 19.07, source.lat)
	assert.Equal(t, 72.87, source.lng)
	assert.Equal(t, "20251001", source.start)
	assert.Equal(t, "20251002", source.end)
}

func TestGetDailyTemperature_Defaults(t *testing.T) {
	source := &stubTemperatureSource{payload: json.RawMessage(`{}`)}
	h := handler.NewTemperatureHandler(source)

	req := httptest.NewRequest(http.MethodGet, "/v1/temperature", http.NoBody)
	w := httptest.NewRecorder()

	h.GetDailyTemperature(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 28.61, source.lat)
	assert.Equal(t, 77.23, source.lng)
	assert.Equal(t, "20251001", source.start)
	assert.Equal(t, "20251004", source.end)
}

func TestGetDailyTemperature_BadDate(t *testing.T) {
	h := handler.NewTemperatureHandler(&stubTemperatureSource{})

	req := httptest.NewRequest(http.MethodGet, "/v1/temperature?start=2025-10-01", http.NoBody)
	w := httptest.NewRecorder()

	h.GetDailyTemperature(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDailyTemperature_UpstreamDown(t *testing.T) {
	source := &stubTemperatureSource{err: errors.New("gateway timeout")}
	h := handler.NewTemperatureHandler(source)

	req := httptest.NewRequest(http.MethodGet, "/v1/temperature", http.NoBody)
	w := httptest.NewRecorder()

	h.GetDailyTemperature(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetDailyTemperature_NoSource(t *testing.T) {
	h := handler.NewTemperatureHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/temperature", http.NoBody)
	w := httptest.NewRecorder()

	h.GetDailyTemperature(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
