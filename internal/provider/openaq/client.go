// Package openaq provides a client for the OpenAQ v3 locations API.
package openaq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/terrapulse/terrapulse/internal/provider/resilience"
)

const (
	// ProviderName identifies this provider.
	ProviderName = "OpenAQ"

	// DefaultBaseURL is the OpenAQ v3 API endpoint.
	DefaultBaseURL = "https://api.openaq.org/v3"

	// DefaultLimit bounds a locations query when none is given.
	DefaultLimit = 1000
)

// ErrNoAPIKey is returned when the client has no credentials.
var ErrNoAPIKey = errors.New("openaq: api key not configured")

// Coordinates is a geographic point attached to a monitoring location.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SensorReading is a flattened sensor summary for a location.
type SensorReading struct {
	Parameter   string   `json:"parameter"`
	Value       *float64 `json:"value,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	LastUpdated string   `json:"lastUpdated,omitempty"`
}

// Location is a monitoring station with its sensor summaries.
type Location struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	City         string          `json:"city"`
	Country      string          `json:"country"`
	Coordinates  *Coordinates    `json:"coordinates"`
	Measurements []SensorReading `json:"measurements"`
}

// LocationsPage is a page of locations with query metadata.
type LocationsPage struct {
	Results []Location     `json:"results"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the OpenAQ client.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient HTTPDoer
	Logger     zerolog.Logger
}

// Client is an OpenAQ v3 API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates an OpenAQ client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("openaq"))
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// upstream v3 shapes; only the fields the transform needs.

type locationsResponse struct {
	Results []locationEntry `json:"results"`
	Meta    map[string]any  `json:"meta"`
}

type locationEntry struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Locality string `json:"locality"`
	Country  struct {
		Name string `json:"name"`
	} `json:"country"`
	Coordinates *Coordinates `json:"coordinates"`
	Sensors     []struct {
		Parameter struct {
			Name string `json:"name"`
		} `json:"parameter"`
		Unit     string `json:"unit"`
		Coverage struct {
			ExpectedCount *float64 `json:"expectedCount"`
			DatetimeLast  struct {
				UTC string `json:"utc"`
			} `json:"datetimeLast"`
		} `json:"coverage"`
	} `json:"sensors"`
}

// Locations fetches up to limit monitoring locations and flattens the
// nested v3 shape into Location records.
func (c *Client) Locations(ctx context.Context, limit int) (*LocationsPage, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", limit))

	reqURL := fmt.Sprintf("%s/locations?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch locations: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from locations query", resp.StatusCode)
	}

	var payload locationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode locations: %w", err)
	}

	page := &LocationsPage{Meta: payload.Meta}
	for _, entry := range payload.Results {
		loc := Location{
			ID:          entry.ID,
			Name:        entry.Name,
			City:        entry.Locality,
			Country:     entry.Country.Name,
			Coordinates: entry.Coordinates,
		}
		if loc.Name == "" {
			loc.Name = "Unknown Location"
		}
		if loc.City == "" {
			loc.City = "Unknown"
		}
		if loc.Country == "" {
			loc.Country = "Unknown"
		}
		for _, sensor := range entry.Sensors {
			loc.Measurements = append(loc.Measurements, SensorReading{
				Parameter:   sensor.Parameter.Name,
				Value:       sensor.Coverage.ExpectedCount,
				Unit:        sensor.Unit,
				LastUpdated: sensor.Coverage.DatetimeLast.UTC,
			})
		}
		page.Results = append(page.Results, loc)
	}
	return page, nil
}

// FallbackLocations is the fixed station sample served when the upstream
// API is unavailable.
func FallbackLocations(limit int) *LocationsPage {
	stations := []Location{
		{ID: 1, Name: "New York Central Park", City: "New York", Country: "United States", Coordinates: &Coordinates{40.7829, -73.9654}},
		{ID: 2, Name: "London Westminster", City: "London", Country: "United Kingdom", Coordinates: &Coordinates{51.4994, -0.1244}},
		{ID: 3, Name: "Tokyo Shibuya", City: "Tokyo", Country: "Japan", Coordinates: &Coordinates{35.6762, 139.6503}},
		{ID: 4, Name: "Paris Centre", City: "Paris", Country: "France", Coordinates: &Coordinates{48.8566, 2.3522}},
		{ID: 5, Name: "Beijing Central", City: "Beijing", Country: "China", Coordinates: &Coordinates{39.9042, 116.4074}},
		{ID: 6, Name: "Mumbai Downtown", City: "Mumbai", Country: "India", Coordinates: &Coordinates{19.0760, 72.8777}},
		{ID: 7, Name: "São Paulo Centro", City: "São Paulo", Country: "Brazil", Coordinates: &Coordinates{-23.5505, -46.6333}},
		{ID: 8, Name: "Mexico City Centro", City: "Mexico City", Country: "Mexico", Coordinates: &Coordinates{19.4326, -99.1332}},
		{ID: 9, Name: "Sydney Harbour", City: "Sydney", Country: "Australia", Coordinates: &Coordinates{-33.8688, 151.2093}},
		{ID: 10, Name: "Cairo Downtown", City: "Cairo", Country: "Egypt", Coordinates: &Coordinates{30.0444, 31.2357}},
	}
	if limit <= 0 || limit > len(stations) {
		limit = len(stations)
	}
	return &LocationsPage{
		Results: stations[:limit],
		Meta: map[string]any{
			"total":  len(stations),
			"limit":  limit,
			"source": "mock_data",
		},
	}
}
