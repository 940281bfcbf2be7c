package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/terrapulse/terrapulse/internal/aggregate"
	"github.com/terrapulse/terrapulse/internal/airquality"
	"github.com/terrapulse/terrapulse/internal/alerts"
)

// SummarySource builds environmental summaries.
type SummarySource interface {
	BuildSummary(ctx context.Context, lat, lng float64) aggregate.Summary
}

// AirQualitySource resolves nearby air quality.
type AirQualitySource interface {
	NearbyAirQuality(ctx context.Context, lat, lng float64) *airquality.NearbyAirQuality
}

// AlertSource builds disaster alert reports.
type AlertSource interface {
	Report(ctx context.Context, lat, lng float64, city string, radiusKm float64) *alerts.Report
}

// WarmupJob keeps provider circuits and upstream caches warm by
// periodically exercising the same lookups the API serves. Since the
// services degrade to synthesized data instead of erroring, the job counts
// points that came back synthesized as degraded.
type WarmupJob struct {
	config WarmupConfig
	logger zerolog.Logger

	// Sources (optional, nil if not configured)
	summaries  SummarySource
	airQuality AirQualitySource
	alerts     AlertSource

	// Metrics
	metrics *WarmupMetrics
}

// WarmupMetrics tracks warmup job statistics.
type WarmupMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRuns         int64
	WarmedPoints      int64
	DegradedPoints    int64
	SummaryWarmups    int64
	AirQualityWarmups int64
	AlertWarmups      int64

	// Timings
	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// WarmupJobConfig holds configuration for creating a WarmupJob.
type WarmupJobConfig struct {
	Config     WarmupConfig
	Logger     zerolog.Logger
	Summaries  SummarySource
	AirQuality AirQualitySource
	Alerts     AlertSource
}

// NewWarmupJob creates a new warmup job processor.
func NewWarmupJob(cfg WarmupJobConfig) *WarmupJob {
	config := cfg.Config
	if len(config.Targets) == 0 {
		config = DefaultWarmupConfig()
	}

	return &WarmupJob{
		config:     config,
		logger:     cfg.Logger,
		summaries:  cfg.Summaries,
		airQuality: cfg.AirQuality,
		alerts:     cfg.Alerts,
		metrics:    &WarmupMetrics{},
	}
}

// WarmupResult contains the result of a warmup run.
type WarmupResult struct {
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
	TotalPoints int
	Warmed      int
	Degraded    int
}

// Run executes the warmup job for all configured targets.
func (j *WarmupJob) Run(ctx context.Context) *WarmupResult {
	startTime := time.Now()
	result := &WarmupResult{
		StartTime:   startTime,
		TotalPoints: j.config.TotalPoints(),
	}

	j.logger.Info().
		Int("total_points", result.TotalPoints).
		Int("concurrency", j.config.Concurrency).
		Msg("starting provider warmup job")

	points := j.config.AllPoints()

	pointsChan := make(chan Point, len(points))
	resultsChan := make(chan pointResult, len(points))

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.warmupWorker(ctx, pointsChan, resultsChan)
		}()
	}

	// Send points to workers
	for _, p := range points {
		pointsChan <- p
	}
	close(pointsChan)

	// Wait for workers to complete
	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	// Collect results
	for pr := range resultsChan {
		if pr.degraded {
			result.Degraded++
		} else {
			result.Warmed++
		}
	}

	j.warmAlerts(ctx)

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("warmed", result.Warmed).
		Int("degraded", result.Degraded).
		Msg("provider warmup job completed")

	return result
}

type pointResult struct {
	point    Point
	degraded bool
}

func (j *WarmupJob) warmupWorker(ctx context.Context, points <-chan Point, results chan<- pointResult) {
	for point := range points {
		select {
		case <-ctx.Done():
			return
		default:
			results <- j.warmPoint(ctx, point)
		}
	}
}

func (j *WarmupJob) warmPoint(ctx context.Context, point Point) pointResult {
	result := pointResult{point: point}

	pointCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	if j.config.WarmSummaries && j.summaries != nil {
		summary := j.summaries.BuildSummary(pointCtx, point.Lat, point.Lng)
		if summaryDegraded(summary) {
			result.degraded = true
		}
		atomic.AddInt64(&j.metrics.SummaryWarmups, 1)
	}

	if j.config.WarmAirQuality && j.airQuality != nil {
		nearby := j.airQuality.NearbyAirQuality(pointCtx, point.Lat, point.Lng)
		if nearbyDegraded(nearby) {
			result.degraded = true
		}
		atomic.AddInt64(&j.metrics.AirQualityWarmups, 1)
	}

	return result
}

// warmAlerts builds one alert report per target city. Alerts are city-level,
// so a single point per target is enough.
func (j *WarmupJob) warmAlerts(ctx context.Context) {
	if !j.config.WarmAlerts || j.alerts == nil {
		return
	}

	for _, target := range j.config.Targets {
		if len(target.Points) == 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return
		default:
		}

		p := target.Points[0]
		j.alerts.Report(ctx, p.Lat, p.Lng, target.Name, 50)
		atomic.AddInt64(&j.metrics.AlertWarmups, 1)
	}
}

// summaryDegraded reports whether every source behind the summary failed.
func summaryDegraded(s aggregate.Summary) bool {
	return s.UrbanDensity == 0 && s.RoadDensity == 0 && s.FireRisk == 0 && s.AirQuality == 0
}

// nearbyDegraded reports whether the nearby lookup fell back to mock data.
func nearbyDegraded(n *airquality.NearbyAirQuality) bool {
	if n == nil {
		return true
	}
	for _, m := range n.Measurements {
		if m.SourceName == airquality.MockSource {
			return true
		}
	}
	return false
}

func (j *WarmupJob) updateMetrics(result *WarmupResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.WarmedPoints += int64(result.Warmed)
	j.metrics.DegradedPoints += int64(result.Degraded)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *WarmupJob) GetMetrics() WarmupMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return WarmupMetrics{
		TotalRuns:         j.metrics.TotalRuns,
		WarmedPoints:      j.metrics.WarmedPoints,
		DegradedPoints:    j.metrics.DegradedPoints,
		SummaryWarmups:    j.metrics.SummaryWarmups,
		AirQualityWarmups: j.metrics.AirQualityWarmups,
		AlertWarmups:      j.metrics.AlertWarmups,
		LastRunAt:         j.metrics.LastRunAt,
		LastRunDuration:   j.metrics.LastRunDuration,
		TotalDuration:     j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *WarmupJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":          m.TotalRuns,
		"warmed_points":       m.WarmedPoints,
		"degraded_points":     m.DegradedPoints,
		"summary_warmups":     m.SummaryWarmups,
		"air_quality_warmups": m.AirQualityWarmups,
		"alert_warmups":       m.AlertWarmups,
		"last_run_at":         m.LastRunAt,
		"last_run_duration":   m.LastRunDuration.String(),
		"total_duration":      m.TotalDuration.String(),
	}
}
