// Package aggregate merges category observations from multiple upstream
// providers and builds urban analytics summaries.
package aggregate

// Summary is the urban analytics roll-up for a coordinate, combining
// infrastructure ratios, active fire counts, and estimated air quality.
type Summary struct {
	UrbanDensity    float64 `json:"urbanDensity"`
	RoadDensity     float64 `json:"roadDensity"`
	GreenCoverage   float64 `json:"greenCoverage"`
	WaterBodies     int     `json:"waterBodies"`
	IndustrialAreas int     `json:"industrialAreas"`
	FireRisk        int     `json:"fireRisk"`
	AirQuality      float64 `json:"airQuality"`
	LastUpdated     string  `json:"lastUpdated"`
}
