// Package power provides a client for the NASA POWER temporal daily
// point API. The payload is served back to callers unmodified, so the
// client keeps it as raw JSON rather than decoding into a schema.
package power

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/terrapulse/terrapulse/internal/provider/resilience"
)

const (
	// ProviderName identifies this provider.
	ProviderName = "NASA POWER"

	// DefaultBaseURL is the POWER temporal API endpoint.
	DefaultBaseURL = "https://power.larc.nasa.gov/api/temporal"
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the POWER client. The API
// requires no credentials.
type ClientConfig struct {
	BaseURL    string
	HTTPClient HTTPDoer
	Logger     zerolog.Logger
}

// Client is a NASA POWER API client.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a POWER client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("power"))
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// DailyTemperature fetches daily T2M readings for a point over the
// YYYYMMDD range [start, end] and returns the upstream JSON verbatim.
func (c *Client) DailyTemperature(ctx context.Context, lat, lng float64, start, end string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("parameters", "T2M")
	params.Set("start", start)
	params.Set("end", end)
	params.Set("latitude", fmt.Sprintf("%g", lat))
	params.Set("longitude", fmt.Sprintf("%g", lng))
	params.Set("format", "JSON")
	params.Set("community", "RE")

	reqURL := fmt.Sprintf("%s/daily/point?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch daily temperature: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from daily temperature query", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read daily temperature response: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("invalid JSON in daily temperature response")
	}
	return json.RawMessage(body), nil
}
