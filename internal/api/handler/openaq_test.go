package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrapulse/terrapulse/internal/api/handler"
	"github.com/terrapulse/terrapulse/internal/provider/openaq"
)

type stubLocationsSource struct {
	page  *openaq.LocationsPage
	err   error
	limit int
}

func (s *stubLocationsSource) Locations(_ context.Context, limit int) (*openaq.LocationsPage, error) {
	s.limit = limit
	return s.page, s.err
}

func TestGetLocations_Upstream(t *testing.T) {
	source := &stubLocationsSource{page: &openaq.LocationsPage{
		Results: []openaq.Location{{ID: 42, Name: "Rotterdam Centrum", City: "Rotterdam", Country: "Netherlands"}},
	}}
	h := handler.NewOpenAQHandler(source)

	req := httptest.NewRequest(http.MethodGet, "/v1/openaq?limit=25", http.NoBody)
	w := httptest.NewRecorder()

	h.GetLocations(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 25, source.limit)

	var page openaq.LocationsPage
	err := json.Unmarshal(w.Body.Bytes(), &page)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Rotterdam Centrum", page.Results[0].Name)
}

func TestGetLocations_DefaultLimit(t *testing.T) {
	source := &stubLocationsSource{page: &openaq.LocationsPage{}}
	h := handler.NewOpenAQHandler(source)

	req := httptest.NewRequest(http.MethodGet, "/v1/openaq", http.NoBody)
	w := httptest.NewRecorder()

	h.GetLocations(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, openaq.DefaultLimit, source.limit)
}

func TestGetLocations_InvalidLimit(t *testing.T) {
	h := handler.NewOpenAQHandler(&stubLocationsSource{})

	req := httptest.NewRequest(http.MethodGet, "/v1/openaq?limit=-1", http.NoBody)
	w := httptest.NewRecorder()

	h.GetLocations(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetLocations_UpstreamDown_Fallback(t *testing.T) {
	source := &stubLocationsSource{err: errors.New("rate limited")}
	h := handler.NewOpenAQHandler(source)

	req := httptest.NewRequest(http.MethodGet, "/v1/openaq?limit=4", http.NoBody)
	w := httptest.NewRecorder()

	h.GetLocations(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var page openaq.LocationsPage
	err := json.Unmarshal(w.Body.Bytes(), &page)
	require.NoError(t, err)
	assert.Len(t, page.Results, 4)
	assert.Equal(t, "mock_data", page.Meta["source"])
}

func TestGetLocations_NoSource_Fallback(t *testing.T) {
	h := handler.NewOpenAQHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/openaq?limit=2", http.NoBody)
	w := httptest.NewRecorder()

	h.GetLocations(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var page openaq.LocationsPage
	err := json.Unmarshal(w.Body.Bytes(), &page)
	require.NoError(t, err)
	assert.Len(t, page.Results, 2)
}
