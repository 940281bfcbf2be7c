package overpass_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrapulse/terrapulse/internal/provider/overpass"
)

func elementsResponse(tags ...map[string]string) map[string]any {
	elements := make([]map[string]any, 0, len(tags))
	for _, t := range tags {
		elements = append(elements, map[string]any{"tags": t})
	}
	return map[string]any{"elements": elements}
}

func TestClient_Infrastructure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `way["highway"]`)
		assert.Contains(t, string(body), `way["landuse"="forest"]`)

		json.NewEncoder(w).Encode(elementsResponse(
			map[string]string{"highway": "primary"},
			map[string]string{"highway": "residential"},
			map[string]string{"building": "yes"},
			map[string]string{"landuse": "industrial"},
			map[string]string{"natural": "water"},
			map[string]string{"landuse": "forest"},
			map[string]string{}, // untagged ways count toward the total only
		))
	}))
	defer server.Close()

	client := overpass.NewClient(overpass.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	infra, err := client.Infrastructure(context.Background(), 28.61, 77.23)
	require.NoError(t, err)

	assert.Equal(t, 2, infra.Roads)
	assert.Equal(t, 1, infra.Buildings)
	assert.Equal(t, 1, infra.Industrial)
	assert.Equal(t, 1, infra.WaterBodies)
	assert.Equal(t, 1, infra.Forest)
	assert.Equal(t, 7, infra.Total)
}

func TestClient_RoadDensity(t *testing.T) {
	tags := make([]map[string]string, 40)
	for i := range tags {
		tags[i] = map[string]string{"highway": "residential"}
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(elementsResponse(tags...))
	}))
	defer server.Close()

	client := overpass.NewClient(overpass.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	density, err := client.RoadDensity(context.Background(), 28.61, 77.23)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, density, 1e-9)
}

func TestClient_RoadDensity_ClampedToOne(t *testing.T) {
	tags := make([]map[string]string, 250)
	for i := range tags {
		tags[i] = map[string]string{"highway": "residential"}
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(elementsResponse(tags...))
	}))
	defer server.Close()

	client := overpass.NewClient(overpass.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	density, err := client.RoadDensity(context.Background(), 28.61, 77.23)
	require.NoError(t, err)
	assert.Equal(t, 1.0, density)
}

func TestClient_Infrastructure_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := overpass.NewClient(overpass.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	_, err := client.Infrastructure(context.Background(), 28.61, 77.23)
	assert.Error(t, err)
}
