package worker_test

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrapulse/terrapulse/internal/aggregate"
	"github.com/terrapulse/terrapulse/internal/airquality"
	"github.com/terrapulse/terrapulse/internal/alerts"
	"github.com/terrapulse/terrapulse/internal/worker"
)

type stubSummaries struct {
	mu      sync.Mutex
	calls   int
	summary aggregate.Summary
}

func (s *stubSummaries) BuildSummary(_ context.Context, _, _ float64) aggregate.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.summary
}

type stubAirQuality struct {
	mu     sync.Mutex
	calls  int
	nearby *airquality.NearbyAirQuality
}

func (s *stubAirQuality) NearbyAirQuality(_ context.Context, _, _ float64) *airquality.NearbyAirQuality {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.nearby
}

type stubAlerts struct {
	mu     sync.Mutex
	cities []string
}

func (s *stubAlerts) Report(_ context.Context, _, _ float64, city string, _ float64) *alerts.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cities = append(s.cities, city)
	return &alerts.Report{City: city}
}

func testConfig() worker.WarmupConfig {
	cfg := worker.DefaultWarmupConfig()
	cfg.Targets = []worker.WarmupTarget{
		{Name: "Delhi", Points: []worker.Point{{Lat: 28.61, Lng: 77.21}, {Lat: 28.54, Lng: 77.39}}},
		{Name: "Tokyo", Points: []worker.Point{{Lat: 35.68, Lng: 139.65}}},
	}
	return cfg
}

func liveSummary() aggregate.Summary {
	return aggregate.Summary{UrbanDensity: 3.4, RoadDensity: 2.1, AirQuality: 110, LastUpdated: "2026-08-01T12:00:00Z"}
}

func liveNearby() *airquality.NearbyAirQuality {
	aqi := 95
	return &airquality.NearbyAirQuality{
		AQI: &aqi,
		Measurements: []airquality.Measurement{
			{Parameter: "pm25", Value: 32, SourceName: "Google Air Quality"},
		},
	}
}

func TestWarmupJob_Run(t *testing.T) {
	summaries := &stubSummaries{summary: liveSummary()}
	airQuality := &stubAirQuality{nearby: liveNearby()}
	alertsSource := &stubAlerts{}

	job := worker.NewWarmupJob(worker.WarmupJobConfig{
		Config:     testConfig(),
		Logger:     zerolog.New(io.Discard),
		Summaries:  summaries,
		AirQuality: airQuality,
		Alerts:     alertsSource,
	})

	result := job.Run(context.Background())

	assert.Equal(t, 3, result.TotalPoints)
	assert.Equal(t, 3, result.Warmed)
	assert.Equal(t, 0, result.Degraded)
	assert.Equal(t, 3, summaries.calls)
	assert.Equal(t, 3, airQuality.calls)
	assert.ElementsMatch(t, []string{"Delhi", "Tokyo"}, alertsSource.cities)
}

func TestWarmupJob_DegradedPoints(t *testing.T) {
	// All-zero summaries mean every source behind them failed.
	summaries := &stubSummaries{summary: aggregate.Summary{LastUpdated: "2026-08-01T12:00:00Z"}}

	job := worker.NewWarmupJob(worker.WarmupJobConfig{
		Config:    testConfig(),
		Logger:    zerolog.New(io.Discard),
		Summaries: summaries,
	})

	result := job.Run(context.Background())

	assert.Equal(t, 0, result.Warmed)
	assert.Equal(t, 3, result.Degraded)
}

func TestWarmupJob_MockAirQualityIsDegraded(t *testing.T) {
	airQuality := &stubAirQuality{nearby: &airquality.NearbyAirQuality{
		Measurements: []airquality.Measurement{
			{Parameter: "pm25", Value: 40, SourceName: airquality.MockSource},
		},
	}}

	job := worker.NewWarmupJob(worker.WarmupJobConfig{
		Config:     testConfig(),
		Logger:     zerolog.New(io.Discard),
		AirQuality: airQuality,
	})

	result := job.Run(context.Background())

	assert.Equal(t, 3, result.Degraded)
}

func TestWarmupJob_Metrics(t *testing.T) {
	summaries := &stubSummaries{summary: liveSummary()}
	airQuality := &stubAirQuality{nearby: liveNearby()}
	alertsSource := &stubAlerts{}

	job := worker.NewWarmupJob(worker.WarmupJobConfig{
		Config:     testConfig(),
		Logger:     zerolog.New(io.Discard),
		Summaries:  summaries,
		AirQuality: airQuality,
		Alerts:     alertsSource,
	})

	job.Run(context.Background())
	job.Run(context.Background())

	m := job.GetMetrics()
	assert.Equal(t, int64(2), m.TotalRuns)
	assert.Equal(t, int64(6), m.WarmedPoints)
	assert.Equal(t, int64(6), m.SummaryWarmups)
	assert.Equal(t, int64(6), m.AirQualityWarmups)
	assert.Equal(t, int64(4), m.AlertWarmups)
	assert.False(t, m.LastRunAt.IsZero())

	snapshot := job.MetricsSnapshot()
	assert.Equal(t, int64(2), snapshot["total_runs"])
}

func TestWarmupJob_DefaultTargets(t *testing.T) {
	job := worker.NewWarmupJob(worker.WarmupJobConfig{
		Logger:    zerolog.New(io.Discard),
		Summaries: &stubSummaries{summary: liveSummary()},
	})

	result := job.Run(context.Background())

	require.NotZero(t, result.TotalPoints)
	assert.Equal(t, result.TotalPoints, result.Warmed+result.Degraded)
}

func TestWarmupConfig_TotalPoints(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, 3, cfg.TotalPoints())
	assert.Len(t, cfg.AllPoints(), 3)
}
