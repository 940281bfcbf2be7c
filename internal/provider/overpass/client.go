// Package overpass provides a client for the OpenStreetMap Overpass API,
// backing urban infrastructure analysis (road, building, land-use counts).
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/terrapulse/terrapulse/internal/observation"
	"github.com/terrapulse/terrapulse/internal/provider/resilience"
)

const (
	// ProviderName identifies this provider.
	ProviderName = "OpenStreetMap Overpass"

	// DefaultBaseURL is the public Overpass interpreter.
	DefaultBaseURL = "https://overpass-api.de/api/interpreter"

	// infrastructureBox is the half-width in degrees of the analysis window.
	infrastructureBox = 0.05
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Overpass client.
type ClientConfig struct {
	// BaseURL overrides the interpreter endpoint (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use. Nil creates a resilient default.
	HTTPClient HTTPDoer

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Overpass QL client. The Overpass API needs no credentials.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates an Overpass client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("overpass"))
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// element is one Overpass result way; only its tags matter for
// classification. Tags are parsed at the boundary instead of shape-probed
// downstream.
type element struct {
	Tags map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []element `json:"elements"`
}

// Infrastructure queries classified way counts within a bounding box around
// (lat, lng).
func (c *Client) Infrastructure(ctx context.Context, lat, lng float64) (observation.Infrastructure, error) {
	bbox := fmt.Sprintf("%f,%f,%f,%f",
		lat-infrastructureBox, lng-infrastructureBox, lat+infrastructureBox, lng+infrastructureBox)

	query := fmt.Sprintf(`[out:json];
(
  way["highway"](%[1]s);
  way["building"](%[1]s);
  way["landuse"="industrial"](%[1]s);
  way["natural"="water"](%[1]s);
  way["landuse"="forest"](%[1]s);
);
out tags;`, bbox)

	elements, err := c.run(ctx, query)
	if err != nil {
		return observation.Infrastructure{}, err
	}

	var infra observation.Infrastructure
	infra.Total = len(elements)
	for _, e := range elements {
		switch {
		case e.Tags["highway"] != "":
			infra.Roads++
		case e.Tags["building"] != "":
			infra.Buildings++
		case e.Tags["landuse"] == "industrial":
			infra.Industrial++
		case e.Tags["natural"] == "water":
			infra.WaterBodies++
		case e.Tags["landuse"] == "forest":
			infra.Forest++
		}
	}
	return infra, nil
}

// RoadDensity queries highway/industrial ways in a tight window around
// (lat, lng) and normalizes the count onto [0,1]. Used to bias the estimated
// air-quality observations for the aqi category.
func (c *Client) RoadDensity(ctx context.Context, lat, lng float64) (float64, error) {
	bbox := fmt.Sprintf("%f,%f,%f,%f", lat-0.02, lng-0.02, lat+0.02, lng+0.02)

	query := fmt.Sprintf(`[out:json];
(
  way["highway"](%[1]s);
  way["industrial"](%[1]s);
  way["building"="industrial"](%[1]s);
);
out tags;`, bbox)

	elements, err := c.run(ctx, query)
	if err != nil {
		return 0, err
	}

	density := float64(len(elements)) / 100
	if density > 1 {
		density = 1
	}
	return density, nil
}

// run POSTs an Overpass QL query and decodes the element list.
func (c *Client) run(ctx context.Context, query string) ([]element, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("run overpass query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from overpass", resp.StatusCode)
	}

	var result overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}
	return result.Elements, nil
}
