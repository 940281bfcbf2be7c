package openaq_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrapulse/terrapulse/internal/provider/openaq"
)

func TestLocations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/locations", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"meta": {"found": 2},
			"results": [
				{
					"id": 101,
					"name": "Anand Vihar",
					"locality": "Delhi",
					"country": {"name": "India"},
					"coordinates": {"latitude": 28.65, "longitude": 77.32},
					"sensors": [
						{
							"parameter": {"name": "pm25"},
							"unit": "µg/m³",
							"coverage": {"expectedCount": 24, "datetimeLast": {"utc": "2026-08-01T11:00:00Z"}}
						}
					]
				},
				{
					"id": 102,
					"name": "",
					"locality": "",
					"country": {},
					"coordinates": null,
					"sensors": []
				}
			]
		}`))
	}))
	defer server.Close()

	client := openaq.NewClient(openaq.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
		Logger:     zerolog.Nop(),
	})

	page, err := client.Locations(context.Background(), 25)
	require.NoError(t, err)
	require.Len(t, page.Results, 2)

	first := page.Results[0]
	assert.Equal(t, 101, first.ID)
	assert.Equal(t, "Anand Vihar", first.Name)
	assert.Equal(t, "Delhi", first.City)
	assert.Equal(t, "India", first.Country)
	require.NotNil(t, first.Coordinates)
	assert.InDelta(t, 28.65, first.Coordinates.Latitude, 0.001)
	require.Len(t, first.Measurements, 1)
	assert.Equal(t, "pm25", first.Measurements[0].Parameter)
	require.NotNil(t, first.Measurements[0].Value)
	assert.Equal(t, 24.0, *first.Measurements[0].Value)
	assert.Equal(t, "2026-08-01T11:00:00Z", first.Measurements[0].LastUpdated)

	// Missing fields normalize to Unknown placeholders.
	second := page.Results[1]
	assert.Equal(t, "Unknown Location", second.Name)
	assert.Equal(t, "Unknown", second.City)
	assert.Equal(t, "Unknown", second.Country)
	assert.Nil(t, second.Coordinates)
	assert.Empty(t, second.Measurements)
}

func TestLocationsNoAPIKey(t *testing.T) {
	client := openaq.NewClient(openaq.ClientConfig{
		HTTPClient: http.DefaultClient,
		Logger:     zerolog.Nop(),
	})

	_, err := client.Locations(context.Background(), 10)
	assert.ErrorIs(t, err, openaq.ErrNoAPIKey)
}

func TestLocationsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := openaq.NewClient(openaq.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
		Logger:     zerolog.Nop(),
	})

	_, err := client.Locations(context.Background(), 10)
	assert.ErrorContains(t, err, "unexpected status 429")
}

func TestFallbackLocations(t *testing.T) {
	page := openaq.FallbackLocations(3)
	require.Len(t, page.Results, 3)
	assert.Equal(t, "New York Central Park", page.Results[0].Name)
	assert.Equal(t, "mock_data", page.Meta["source"])

	full := openaq.FallbackLocations(0)
	assert.Len(t, full.Results, 10)

	over := openaq.FallbackLocations(50)
	assert.Len(t, over.Results, 10)
}
