// Package worker provides background job processing for TerraPulse.
package worker

import (
	"time"
)

// WarmupTarget represents a monitored city to keep warm.
type WarmupTarget struct {
	// Name is the human-readable name of the target.
	Name string

	// Points are the lat/lng coordinates to warm. Typically the city
	// center plus dense districts.
	Points []Point

	// Priority determines warmup order (lower = higher priority).
	Priority int
}

// Point represents a geographic coordinate.
type Point struct {
	Lat float64
	Lng float64
}

// WarmupConfig holds configuration for the provider warmup job.
type WarmupConfig struct {
	// Targets are the monitored cities to warm.
	// If empty, uses DefaultWarmupTargets.
	Targets []WarmupTarget

	// Concurrency is the number of concurrent warmup operations.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for each point.
	// Default: 30 seconds
	Timeout time.Duration

	// WarmSummaries enables environmental summary warmup.
	// Default: true
	WarmSummaries bool

	// WarmAirQuality enables nearby air quality warmup.
	// Default: true
	WarmAirQuality bool

	// WarmAlerts enables per-city disaster alert warmup.
	// Default: true
	WarmAlerts bool
}

// DefaultWarmupConfig returns the default warmup configuration.
func DefaultWarmupConfig() WarmupConfig {
	return WarmupConfig{
		Targets:        DefaultWarmupTargets(),
		Concurrency:    3,
		Timeout:        30 * time.Second,
		WarmSummaries:  true,
		WarmAirQuality: true,
		WarmAlerts:     true,
	}
}

// DefaultWarmupTargets returns the default warmup targets. Focuses on the
// most polluted monitored cities, where dashboards refresh most often.
func DefaultWarmupTargets() []WarmupTarget {
	return []WarmupTarget{
		{
			Name:     "Delhi",
			Priority: 1,
			Points: []Point{
				{Lat: 28.6139, Lng: 77.209},  // Connaught Place
				{Lat: 28.5355, Lng: 77.391},  // Noida
				{Lat: 28.7041, Lng: 77.1025}, // North Delhi
			},
		},
		{
			Name:     "Beijing",
			Priority: 1,
			Points: []Point{
				{Lat: 39.9042, Lng: 116.4074}, // Dongcheng
				{Lat: 39.9888, Lng: 116.3059}, // Haidian
			},
		},
		{
			Name:     "Mumbai",
			Priority: 1,
			Points: []Point{
				{Lat: 19.076, Lng: 72.8777},  // Fort
				{Lat: 19.1136, Lng: 72.8697}, // Andheri
			},
		},
		{
			Name:     "Cairo",
			Priority: 2,
			Points: []Point{
				{Lat: 30.0444, Lng: 31.2357}, // Downtown
			},
		},
		{
			Name:     "Mexico City",
			Priority: 2,
			Points: []Point{
				{Lat: 19.4326, Lng: -99.1332}, // Centro
			},
		},
		{
			Name:     "Los Angeles",
			Priority: 2,
			Points: []Point{
				{Lat: 34.0522, Lng: -118.2437}, // Downtown
			},
		},
		{
			Name:     "London",
			Priority: 3,
			Points: []Point{
				{Lat: 51.5074, Lng: -0.1278}, // Westminster
			},
		},
		{
			Name:     "Tokyo",
			Priority: 3,
			Points: []Point{
				{Lat: 35.6762, Lng: 139.6503}, // Shinjuku
			},
		},
	}
}

// AllPoints returns all points from all targets, ordered by priority.
func (c WarmupConfig) AllPoints() []Point {
	var points []Point
	for _, target := range c.Targets {
		points = append(points, target.Points...)
	}
	return points
}

// TotalPoints returns the total number of points to warm.
func (c WarmupConfig) TotalPoints() int {
	total := 0
	for _, target := range c.Targets {
		total += len(target.Points)
	}
	return total
}
