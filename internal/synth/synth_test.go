package synth_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrapulse/terrapulse/internal/observation"
	"github.com/terrapulse/terrapulse/internal/synth"
)

func newSynthesizer(t *testing.T) (*synth.Synthesizer, time.Time) {
	t.Helper()
	frozen := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s := synth.New(synth.Config{Clock: clockwork.NewFakeClockAt(frozen)})
	return s, frozen
}

func TestObservations_GenericFallback(t *testing.T) {
	s, frozen := newSynthesizer(t)

	obs := s.Observations(52.37, 4.89, observation.CategoryHeat, "")
	require.Len(t, obs, 15)

	for _, o := range obs {
		assert.Equal(t, synth.SourceFallback, o.Source)
		assert.GreaterOrEqual(t, o.Intensity, 0.0)
		assert.LessOrEqual(t, o.Intensity, 1.0)
		assert.InDelta(t, 52.37, o.Lat, 0.05)
		assert.InDelta(t, 4.89, o.Lng, 0.05)
		assert.Equal(t, frozen.Format(time.RFC3339), o.Timestamp)
		require.NotNil(t, o.Value)
	}
}

func TestObservations_CityProfile(t *testing.T) {
	s, _ := newSynthesizer(t)

	delhi := s.Observations(28.61, 77.23, observation.CategoryAQI, "Delhi, India")
	require.Len(t, delhi, 30)

	london := s.Observations(51.5, -0.12, observation.CategoryAQI, "Greater London")
	require.Len(t, london, 20)

	for _, o := range delhi {
		assert.Equal(t, synth.SourceCityProfile, o.Source)
	}

	// Delhi's AQI baseline (0.9) sits well above London's (0.5).
	assert.Greater(t, meanIntensity(delhi), meanIntensity(london))
}

func TestObservations_Deterministic(t *testing.T) {
	s, _ := newSynthesizer(t)

	a := s.Observations(28.61, 77.23, observation.CategoryHeat, "delhi")
	b := s.Observations(28.61, 77.23, observation.CategoryHeat, "delhi")
	assert.Equal(t, a, b)
}

func TestObservations_CaseInsensitiveMatch(t *testing.T) {
	s, _ := newSynthesizer(t)

	obs := s.Observations(35.67, 139.65, observation.CategoryGreen, "TOKYO")
	require.Len(t, obs, 28)
	assert.Equal(t, synth.SourceCityProfile, obs[0].Source)
}

func TestIsFallbackSource(t *testing.T) {
	assert.True(t, synth.IsFallbackSource(synth.SourceFallback))
	assert.True(t, synth.IsFallbackSource(synth.SourceCityProfile))
	assert.True(t, synth.IsFallbackSource(synth.SourceMock))
	assert.False(t, synth.IsFallbackSource("NASA FIRMS"))
	assert.False(t, synth.IsFallbackSource(""))
}

func meanIntensity(obs []observation.Observation) float64 {
	var sum float64
	for _, o := range obs {
		sum += o.Intensity
	}
	return sum / float64(len(obs))
}
