package aggregate

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/terrapulse/terrapulse/internal/observation"
)

// EstimatorSource tags observations derived from infrastructure analysis.
const EstimatorSource = "OSM + NASA Analysis"

// estimatedPoints is how many AQI samples are scattered around a coordinate.
const estimatedPoints = 12

// RoadDensitySource reports normalized road density at a point in [0, 1].
type RoadDensitySource interface {
	RoadDensity(ctx context.Context, lat, lng float64) (float64, error)
}

// AQIEstimator derives an air-quality observation field from road density.
// Dense road networks correlate with worse air quality, so the estimate
// anchors the index at 50 plus up to 100 points of density penalty.
type AQIEstimator struct {
	roads RoadDensitySource
	clock clockwork.Clock
}

// NewAQIEstimator creates an estimator over a road density source.
func NewAQIEstimator(roads RoadDensitySource, clock clockwork.Clock) *AQIEstimator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AQIEstimator{roads: roads, clock: clock}
}

// Name returns the provider name.
func (e *AQIEstimator) Name() string {
	return EstimatorSource
}

// Observations scatters estimated AQI points around (lat, lng). The time
// range is ignored: the estimate reflects current infrastructure.
func (e *AQIEstimator) Observations(ctx context.Context, lat, lng float64, _, _ time.Time) ([]observation.Observation, error) {
	density, err := e.roads.RoadDensity(ctx, lat, lng)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now().UTC().Format(time.RFC3339)
	rng := estimatorRand(lat, lng)
	out := make([]observation.Observation, 0, estimatedPoints)
	for i := 0; i < estimatedPoints; i++ {
		base := 50 + density*100
		value := base + (rng.Float64()-0.5)*40
		value = math.Max(10, math.Min(300, value))
		out = append(out, observation.Observation{
			Lat:       lat + (rng.Float64()-0.5)*0.03,
			Lng:       lng + (rng.Float64()-0.5)*0.03,
			Intensity: observation.ClampIntensity(value / 200),
			Value:     observation.Float(value),
			Timestamp: now,
			Source:    EstimatorSource,
		})
	}
	return out, nil
}

func estimatorRand(lat, lng float64) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(EstimatorSource))
	seed := int64(h.Sum64()) ^ int64(math.Float64bits(lat)) ^ int64(math.Float64bits(lng)*17)
	return rand.New(rand.NewSource(seed))
}
