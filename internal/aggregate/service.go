package aggregate

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/terrapulse/terrapulse/internal/observation"
	"github.com/terrapulse/terrapulse/internal/provider/resilience"
	"github.com/terrapulse/terrapulse/internal/synth"
)

const (
	// DefaultProviderTimeout bounds each provider call during fan-out.
	DefaultProviderTimeout = 10 * time.Second

	// DefaultWindow is how far back the observation time range reaches.
	DefaultWindow = 7 * 24 * time.Hour

	// summaryFireRadiusKm bounds the fire search for summaries.
	summaryFireRadiusKm = 55
)

// Provider supplies normalized observations for a coordinate and time range.
type Provider interface {
	Name() string
	Observations(ctx context.Context, lat, lng float64, start, end time.Time) ([]observation.Observation, error)
}

// FireSource lists raw fire detections near a coordinate.
type FireSource interface {
	Fires(ctx context.Context, lat, lng, radiusKm float64, daysBack int) ([]observation.FireObservation, error)
}

// InfrastructureSource counts classified map features near a coordinate.
type InfrastructureSource interface {
	Infrastructure(ctx context.Context, lat, lng float64) (observation.Infrastructure, error)
}

// Config holds dependencies for the aggregation service. Providers maps
// each category onto the upstream sources that feed it; a category with no
// providers (or all failing) is served from the synthesizer.
type Config struct {
	Logger          zerolog.Logger
	Providers       map[observation.Category][]Provider
	Synth           *synth.Synthesizer
	Fires           FireSource
	Infrastructure  InfrastructureSource
	Registry        *resilience.Registry
	Clock           clockwork.Clock
	ProviderTimeout time.Duration
}

// Service fans category requests out to providers and merges the results.
type Service struct {
	logger          zerolog.Logger
	providers       map[observation.Category][]Provider
	synth           *synth.Synthesizer
	fires           FireSource
	infrastructure  InfrastructureSource
	registry        *resilience.Registry
	clock           clockwork.Clock
	providerTimeout time.Duration
}

// NewService creates an aggregation service.
func NewService(cfg Config) *Service {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	timeout := cfg.ProviderTimeout
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	s := &Service{
		logger:          cfg.Logger,
		providers:       cfg.Providers,
		synth:           cfg.Synth,
		fires:           cfg.Fires,
		infrastructure:  cfg.Infrastructure,
		registry:        cfg.Registry,
		clock:           clock,
		providerTimeout: timeout,
	}
	if s.synth == nil {
		s.synth = synth.New(synth.Config{Clock: clock})
	}
	if s.registry != nil {
		for _, providers := range s.providers {
			for _, p := range providers {
				s.registry.Register(p.Name(), nil)
			}
		}
	}
	return s
}

// Observations merges all provider results for a category around a
// coordinate. Provider failures are logged and skipped; if every provider
// fails or returns nothing, the synthesizer fills the category so the
// caller always receives data. Never returns an error.
func (s *Service) Observations(ctx context.Context, lat, lng float64, cat observation.Category, locationName string) []observation.Observation {
	end := s.clock.Now().UTC()
	start := end.Add(-DefaultWindow)

	providers := s.providers[cat]

	var (
		mu     sync.Mutex
		merged []observation.Observation
		wg     sync.WaitGroup
	)
	for _, p := range providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
			defer cancel()

			obs, err := p.Observations(callCtx, lat, lng, start, end)
			if err != nil {
				s.recordFailure(p.Name(), err)
				s.logger.Warn().Err(err).
					Str("provider", p.Name()).
					Str("category", string(cat)).
					Msg("provider fetch failed")
				return
			}
			s.recordSuccess(p.Name())

			mu.Lock()
			merged = append(merged, sanitize(obs)...)
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	if len(merged) == 0 {
		s.logger.Debug().
			Str("category", string(cat)).
			Float64("lat", lat).Float64("lng", lng).
			Msg("no provider data, synthesizing")
		return s.synth.Observations(lat, lng, cat, locationName)
	}
	return merged
}

// BuildSummary assembles the urban analytics roll-up for a coordinate.
// The three upstream fetches run in parallel; each failure contributes
// zeros rather than an error.
func (s *Service) BuildSummary(ctx context.Context, lat, lng float64) Summary {
	var (
		infra  observation.Infrastructure
		fires  []observation.FireObservation
		aqiObs []observation.Observation
		wg     sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		if s.infrastructure == nil {
			return
		}
		callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
		defer cancel()
		result, err := s.infrastructure.Infrastructure(callCtx, lat, lng)
		if err != nil {
			s.logger.Warn().Err(err).Msg("infrastructure fetch failed")
			return
		}
		infra = result
	}()
	go func() {
		defer wg.Done()
		if s.fires == nil {
			return
		}
		callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
		defer cancel()
		result, err := s.fires.Fires(callCtx, lat, lng, summaryFireRadiusKm, 1)
		if err != nil {
			s.logger.Warn().Err(err).Msg("fire fetch failed")
			return
		}
		fires = result
	}()
	go func() {
		defer wg.Done()
		for _, p := range s.providers[observation.CategoryAQI] {
			callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
			obs, err := p.Observations(callCtx, lat, lng, s.clock.Now().UTC().Add(-DefaultWindow), s.clock.Now().UTC())
			cancel()
			if err != nil {
				s.logger.Warn().Err(err).Str("provider", p.Name()).Msg("aqi fetch failed")
				continue
			}
			aqiObs = append(aqiObs, obs...)
		}
	}()
	wg.Wait()

	avgAQI := 0.0
	if len(aqiObs) > 0 {
		sum := 0.0
		for _, o := range aqiObs {
			if o.Value != nil {
				sum += *o.Value
			}
		}
		avgAQI = sum / float64(len(aqiObs))
	}

	return Summary{
		UrbanDensity:    float64(infra.Buildings) / 100,
		RoadDensity:     float64(infra.Roads) / 50,
		GreenCoverage:   float64(infra.Forest) / 20,
		WaterBodies:     infra.WaterBodies,
		IndustrialAreas: infra.Industrial,
		FireRisk:        len(fires),
		AirQuality:      avgAQI,
		LastUpdated:     s.clock.Now().UTC().Format(time.RFC3339),
	}
}

// sanitize drops observations with invalid coordinates and clamps
// intensities into [0, 1].
func sanitize(obs []observation.Observation) []observation.Observation {
	out := obs[:0]
	for _, o := range obs {
		if !observation.ValidCoords(o.Lat, o.Lng) {
			continue
		}
		o.Intensity = observation.ClampIntensity(o.Intensity)
		out = append(out, o)
	}
	return out
}

func (s *Service) recordSuccess(name string) {
	if s.registry != nil {
		s.registry.RecordSuccess(name)
	}
}

func (s *Service) recordFailure(name string, err error) {
	if s.registry != nil {
		s.registry.RecordFailure(name, err)
	}
}
