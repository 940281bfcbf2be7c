// Package googleaq provides a client for the Google Air Quality API
// currentConditions lookup.
package googleaq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/terrapulse/terrapulse/internal/airquality"
	"github.com/terrapulse/terrapulse/internal/provider/resilience"
)

const (
	// ProviderName identifies this provider.
	ProviderName = "Google Air Quality"

	// DefaultBaseURL is the Air Quality API endpoint.
	DefaultBaseURL = "https://airquality.googleapis.com/v1"
)

// ErrNoAPIKey is returned when the client has no credentials.
var ErrNoAPIKey = errors.New("googleaq: api key not configured")

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Google Air Quality client.
type ClientConfig struct {
	// APIKey is the Google Maps Platform key. Empty means unavailable.
	APIKey string

	// BaseURL overrides the API endpoint (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use. Nil creates a resilient default.
	HTTPClient HTTPDoer

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Google Air Quality API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a Google Air Quality client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("googleaq"))
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

// request/response types for currentConditions:lookup.

type lookupRequest struct {
	Location          lookupLocation `json:"location"`
	ExtraComputations []string       `json:"extraComputations"`
	LanguageCode      string         `json:"languageCode"`
}

type lookupLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type lookupResponse struct {
	DateTime   string           `json:"dateTime"`
	Indexes    []indexEntry     `json:"indexes"`
	Pollutants []pollutantEntry `json:"pollutants"`
}

type indexEntry struct {
	AQI *int `json:"aqi"`
}

type pollutantEntry struct {
	Code          string `json:"code"`
	DisplayName   string `json:"displayName"`
	Concentration struct {
		Value *float64 `json:"value"`
		Units string   `json:"units"`
	} `json:"concentration"`
}

// Current fetches current air-quality conditions for a coordinate and
// normalizes the defensive, loosely-shaped payload into PointConditions.
func (c *Client) Current(ctx context.Context, lat, lng float64) (*airquality.PointConditions, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	body, err := json.Marshal(lookupRequest{
		Location: lookupLocation{Latitude: lat, Longitude: lng},
		ExtraComputations: []string{
			"HEALTH_RECOMMENDATIONS",
			"DOMINANT_POLLUTANT_CONCENTRATION",
			"POLLUTANT_CONCENTRATION",
		},
		LanguageCode: "en",
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/currentConditions:lookup?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup conditions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from air quality lookup", resp.StatusCode)
	}

	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode conditions: %w", err)
	}

	return c.toConditions(&payload), nil
}

// toConditions converts the API payload to the domain record.
func (c *Client) toConditions(payload *lookupResponse) *airquality.PointConditions {
	conditions := &airquality.PointConditions{}

	if len(payload.Indexes) > 0 {
		conditions.AQI = payload.Indexes[0].AQI
	}

	updated := payload.DateTime
	if updated == "" {
		updated = time.Now().UTC().Format(time.RFC3339)
	}

	for _, p := range payload.Pollutants {
		value := 0.0
		if p.Concentration.Value != nil {
			value = *p.Concentration.Value
		}
		unit := p.Concentration.Units
		if unit == "" {
			unit = "µg/m³"
		}
		conditions.Measurements = append(conditions.Measurements, airquality.Measurement{
			Parameter:       mapPollutantCode(p.Code, p.DisplayName),
			Value:           value,
			LastUpdated:     updated,
			Unit:            unit,
			SourceName:      ProviderName,
			AveragingPeriod: airquality.AveragingPeriod{Value: 1, Unit: "hours"},
		})
	}
	return conditions
}

// mapPollutantCode normalizes provider pollutant codes onto canonical
// parameter names.
func mapPollutantCode(code, displayName string) string {
	s := strings.ToLower(code)
	if s == "" {
		s = strings.ToLower(displayName)
	}
	switch {
	case strings.Contains(s, "pm2") || strings.Contains(s, "pm25"):
		return "pm25"
	case strings.Contains(s, "pm10"):
		return "pm10"
	case strings.Contains(s, "o3"):
		return "o3"
	case strings.Contains(s, "no2"):
		return "no2"
	case strings.Contains(s, "so2"):
		return "so2"
	case strings.Contains(s, "co"):
		return "co"
	case s == "":
		return "unknown"
	}
	return s
}
