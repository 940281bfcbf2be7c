package geocode_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrapulse/terrapulse/internal/airquality/geocode"
)

func TestResolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json", r.URL.Path)
		assert.Equal(t, "Delhi", r.URL.Query().Get("address"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "Delhi, India",
				"address_components": [
					{"long_name": "Delhi", "short_name": "Delhi", "types": ["locality", "political"]},
					{"long_name": "India", "short_name": "IN", "types": ["country", "political"]}
				],
				"geometry": {"location": {"lat": 28.7041, "lng": 77.1025}}
			}]
		}`))
	}))
	defer server.Close()

	client := geocode.NewClient(geocode.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
		Logger:     zerolog.Nop(),
	})

	place, err := client.Resolve(context.Background(), "Delhi")
	require.NoError(t, err)
	assert.Equal(t, "Delhi", place.City)
	assert.Equal(t, "India", place.Country)
	assert.InDelta(t, 28.7041, place.Lat, 0.0001)
	assert.InDelta(t, 77.1025, place.Lng, 0.0001)
}

func TestResolveZeroResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer server.Close()

	client := geocode.NewClient(geocode.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
		Logger:     zerolog.Nop(),
	})

	_, err := client.Resolve(context.Background(), "nowhereville")
	assert.ErrorIs(t, err, geocode.ErrNotFound)
}

func TestResolveNoAPIKey(t *testing.T) {
	client := geocode.NewClient(geocode.ClientConfig{
		HTTPClient: http.DefaultClient,
		Logger:     zerolog.Nop(),
	})

	_, err := client.Resolve(context.Background(), "Delhi")
	assert.ErrorIs(t, err, geocode.ErrNoAPIKey)
}

func TestResolveMissingLocality(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "Somewhere Remote",
				"address_components": [
					{"long_name": "Australia", "short_name": "AU", "types": ["country", "political"]}
				],
				"geometry": {"location": {"lat": -25.0, "lng": 133.0}}
			}]
		}`))
	}))
	defer server.Close()

	client := geocode.NewClient(geocode.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
		Logger:     zerolog.Nop(),
	})

	place, err := client.Resolve(context.Background(), "Somewhere Remote")
	require.NoError(t, err)
	assert.Equal(t, "Somewhere Remote", place.City)
	assert.Equal(t, "Australia", place.Country)
}
