package airquality

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/terrapulse/terrapulse/internal/aqi"
)

// MockSource tags measurements synthesized in place of provider data.
const MockSource = "Mock Data"

// Geocoder resolves a free-form city query to a place.
type Geocoder interface {
	Resolve(ctx context.Context, query string) (*Place, error)
}

// ConditionsProvider returns current air-quality conditions for a point.
type ConditionsProvider interface {
	Current(ctx context.Context, lat, lng float64) (*PointConditions, error)
}

// Config holds dependencies for the air quality service. Geocoder and
// Conditions may be nil when the upstream credentials are absent; the
// service then serves profiled mock data.
type Config struct {
	Logger     zerolog.Logger
	Geocoder   Geocoder
	Conditions ConditionsProvider
	Clock      clockwork.Clock
	Rand       *rand.Rand
}

// Service provides city and point air-quality lookups.
type Service struct {
	logger     zerolog.Logger
	geocoder   Geocoder
	conditions ConditionsProvider
	clock      clockwork.Clock

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService creates an air quality service.
func NewService(cfg Config) *Service {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(clock.Now().UnixNano()))
	}
	return &Service{
		logger:     cfg.Logger,
		geocoder:   cfg.Geocoder,
		conditions: cfg.Conditions,
		clock:      clock,
		rng:        rng,
	}
}

// CityAirQuality resolves a city name to its current air quality. Without a
// configured geocoder and conditions provider it synthesizes data from the
// fixed city sample. Returns ErrNoData when the city cannot be resolved.
func (s *Service) CityAirQuality(ctx context.Context, city string) (*AirQualityData, error) {
	if s.geocoder == nil || s.conditions == nil {
		s.logger.Debug().Str("city", city).Msg("air quality providers unconfigured, serving mock data")
		return s.mockCityAirQuality(city), nil
	}

	place, err := s.geocoder.Resolve(ctx, city)
	if err != nil {
		s.logger.Warn().Err(err).Str("city", city).Msg("geocoding failed")
		return nil, fmt.Errorf("%w: %s", ErrNoData, city)
	}

	conditions, err := s.conditions.Current(ctx, place.Lat, place.Lng)
	if err != nil {
		s.logger.Warn().Err(err).Str("city", city).Msg("conditions lookup failed")
		return nil, fmt.Errorf("%w: %s", ErrNoData, city)
	}

	data := &AirQualityData{
		Location:     place.Formatted,
		City:         place.City,
		Country:      place.Country,
		Coordinates:  Coordinates{Latitude: place.Lat, Longitude: place.Lng},
		Measurements: conditions.Measurements,
		AQI:          conditions.AQI,
	}
	if data.Location == "" {
		data.Location = city
	}
	if data.City == "" {
		data.City = city
	}
	if data.Country == "" {
		data.Country = "Unknown"
	}
	if data.Measurements == nil {
		data.Measurements = []Measurement{}
	}

	// Derive the index from PM2.5 when the provider does not supply one.
	if data.AQI == nil {
		for _, m := range conditions.Measurements {
			if m.Parameter == "pm25" {
				if value, ok := aqi.FromPM25(m.Value); ok {
					data.AQI = &value
				}
				break
			}
		}
	}
	return data, nil
}

// NearbyAirQuality returns nearest-station conditions for a coordinate.
// It never fails: provider errors degrade to synthesized measurements.
func (s *Service) NearbyAirQuality(ctx context.Context, lat, lng float64) *NearbyAirQuality {
	station := NearbyStation{
		Name:        "Nearest Station",
		Coordinates: Coordinates{Latitude: lat, Longitude: lng},
	}

	if s.conditions != nil {
		conditions, err := s.conditions.Current(ctx, lat, lng)
		if err == nil {
			measurements := conditions.Measurements
			if measurements == nil {
				measurements = []Measurement{}
			}
			return &NearbyAirQuality{
				AQI:          conditions.AQI,
				Location:     station,
				Measurements: measurements,
			}
		}
		s.logger.Warn().Err(err).
			Float64("lat", lat).Float64("lng", lng).
			Msg("nearby conditions lookup failed, serving mock data")
	}

	mockAQI := s.randInRange(50, 150)
	return &NearbyAirQuality{
		AQI:      &mockAQI,
		Location: station,
		Measurements: []Measurement{
			s.mockMeasurement("pm25", float64(mockAQI)*0.4, 10, 24),
		},
	}
}

// GlobalAirQuality returns synthesized current conditions for up to limit
// cities from the fixed sample.
func (s *Service) GlobalAirQuality(limit int) []AirQualityData {
	if limit <= 0 || limit > len(Cities) {
		limit = len(Cities)
	}
	results := make([]AirQualityData, 0, limit)
	for _, city := range Cities[:limit] {
		results = append(results, *s.profiledAirQuality(city))
	}
	return results
}

// mockCityAirQuality synthesizes a record for the named city, biased by its
// profile when the city is in the fixed sample.
func (s *Service) mockCityAirQuality(city string) *AirQualityData {
	if profile, ok := FindCity(city); ok {
		return s.profiledAirQuality(profile)
	}

	// Unknown city: generic record anchored at the default coordinate.
	mockAQI := s.randInRange(50, 150)
	return &AirQualityData{
		Location:    city,
		City:        city,
		Country:     "Unknown",
		Coordinates: Coordinates{Latitude: 40.7128, Longitude: -74.006},
		Measurements: []Measurement{
			s.mockMeasurement("pm25", 30, 40, 24),
		},
		AQI: &mockAQI,
	}
}

// profiledAirQuality synthesizes a record from a city profile with jitter
// around the baseline index.
func (s *Service) profiledAirQuality(profile CityProfile) *AirQualityData {
	base := float64(profile.BaselineAQI)
	cityAQI := profile.BaselineAQI + s.randInRange(-10, 10)
	return &AirQualityData{
		Location:    profile.Name,
		City:        profile.Name,
		Country:     profile.Country,
		Coordinates: Coordinates{Latitude: profile.Lat, Longitude: profile.Lng},
		Measurements: []Measurement{
			s.mockMeasurement("pm25", base*0.4, 10, 24),
			s.mockMeasurement("pm10", base*0.6, 15, 24),
			s.mockMeasurement("o3", 50, 100, 8),
			s.mockMeasurement("no2", 20, 60, 1),
		},
		AQI: &cityAQI,
	}
}

func (s *Service) mockMeasurement(parameter string, base, spread float64, hours int) Measurement {
	s.mu.Lock()
	value := base + s.rng.Float64()*spread
	s.mu.Unlock()
	return Measurement{
		Parameter:       parameter,
		Value:           float64(int(value + 0.5)),
		LastUpdated:     s.clock.Now().UTC().Format(time.RFC3339),
		Unit:            "µg/m³",
		SourceName:      MockSource,
		AveragingPeriod: AveragingPeriod{Value: hours, Unit: "hours"},
	}
}

func (s *Service) randInRange(low, high int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return low + s.rng.Intn(high-low+1)
}
