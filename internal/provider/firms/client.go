// Package firms provides a client for the NASA FIRMS active-fire feed, which
// serves satellite fire detections as CSV area downloads.
package firms

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/terrapulse/terrapulse/internal/observation"
	"github.com/terrapulse/terrapulse/internal/provider/resilience"
)

const (
	// ProviderName tags observations produced by this client.
	ProviderName = "NASA FIRMS"

	// DefaultBaseURL is the FIRMS area-CSV endpoint.
	DefaultBaseURL = "https://firms.modaps.eosdis.nasa.gov/api/area/csv"

	// DefaultSource is the satellite source collection queried.
	DefaultSource = "VIIRS_SNPP_NRT"

	// kmPerDegree approximates one degree of latitude in kilometres, used to
	// turn a radius into a bounding box.
	kmPerDegree = 111.0
)

// ErrNoAPIKey is returned when the client has no credentials; the caller
// routes straight to fallback instead of attempting an unauthenticated call.
var ErrNoAPIKey = errors.New("firms: api key not configured")

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the FIRMS client.
type ClientConfig struct {
	// APIKey is the FIRMS map key. Empty means the provider is unavailable.
	APIKey string

	// BaseURL overrides the area-CSV endpoint (defaults to DefaultBaseURL).
	BaseURL string

	// Source is the satellite collection (defaults to DefaultSource).
	Source string

	// HTTPClient is the HTTP client to use. Nil creates a resilient default.
	HTTPClient HTTPDoer

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a NASA FIRMS area-CSV client.
type Client struct {
	apiKey     string
	baseURL    string
	source     string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a FIRMS client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	source := cfg.Source
	if source == "" {
		source = DefaultSource
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("firms"))
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		source:     source,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Fires fetches fire detections within radiusKm of (lat, lng) over the last
// daysBack days. Missing credentials short-circuit with ErrNoAPIKey.
func (c *Client) Fires(ctx context.Context, lat, lng, radiusKm float64, daysBack int) ([]observation.FireObservation, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if daysBack < 1 {
		daysBack = 1
	}

	latOffset := radiusKm / kmPerDegree
	lngOffset := radiusKm / (kmPerDegree * math.Cos(lat*math.Pi/180))
	area := fmt.Sprintf("%f,%f,%f,%f", lat-latOffset, lng-lngOffset, lat+latOffset, lng+lngOffset)

	url := fmt.Sprintf("%s/%s/%s/%s/%d", c.baseURL, c.apiKey, c.source, area, daysBack)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch fire detections: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from fire feed", resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read fire csv: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	// First line is a header row providing field names; remaining lines are
	// indexed against it so MODIS and VIIRS column layouts both parse.
	cols := columnIndex(records[0])
	fires := make([]observation.FireObservation, 0, len(records)-1)
	for _, row := range records[1:] {
		fire, ok := c.parseRow(cols, row)
		if !ok {
			continue
		}
		fires = append(fires, fire)
	}
	return fires, nil
}

// Observations fetches fire detections normalized into canonical records, for
// the heat category fan-out.
func (c *Client) Observations(ctx context.Context, lat, lng float64, start, end time.Time) ([]observation.Observation, error) {
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		days = 1
	}
	if days > 10 {
		days = 10
	}

	fires, err := c.Fires(ctx, lat, lng, 55, days)
	if err != nil {
		return nil, err
	}

	out := make([]observation.Observation, 0, len(fires))
	for _, f := range fires {
		out = append(out, f.Observation(ProviderName))
	}
	return out, nil
}

// columnIndex maps trimmed header names to their positions.
func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	return cols
}

// parseRow converts one CSV row into a FireObservation. Rows without finite
// coordinates are skipped; other malformed numeric fields parse to NaN and
// are tolerated downstream.
func (c *Client) parseRow(cols map[string]int, row []string) (observation.FireObservation, bool) {
	field := func(names ...string) string {
		for _, n := range names {
			if idx, ok := cols[n]; ok && idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
		}
		return ""
	}

	lat := parseFloat(field("latitude"))
	lng := parseFloat(field("longitude"))
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return observation.FireObservation{}, false
	}

	satellite := field("satellite")
	if satellite == "" {
		satellite = "VIIRS"
	}

	return observation.FireObservation{
		Latitude:   lat,
		Longitude:  lng,
		BrightTI4:  parseFloat(field("bright_ti4", "brightness")),
		Scan:       parseFloat(field("scan")),
		Track:      parseFloat(field("track")),
		AcqDate:    field("acq_date"),
		AcqTime:    field("acq_time"),
		Satellite:  satellite,
		Confidence: observation.ParseConfidence(field("confidence")),
		Version:    field("version"),
		BrightTI5:  parseFloat(field("bright_ti5", "bright_t31")),
		FRP:        parseFloat(field("frp")),
	}, true
}

// parseFloat returns NaN for empty or malformed fields.
func parseFloat(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
