// Package airquality provides city and point air-quality lookups with
// graceful fallback to profiled mock data.
package airquality

import "errors"

// ErrNoData indicates no air quality data could be resolved for a city.
var ErrNoData = errors.New("no air quality data found")

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AveragingPeriod describes the measurement window.
type AveragingPeriod struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"`
}

// Measurement is a single pollutant concentration reading.
type Measurement struct {
	Parameter       string          `json:"parameter"`
	Value           float64         `json:"value"`
	LastUpdated     string          `json:"lastUpdated"`
	Unit            string          `json:"unit"`
	SourceName      string          `json:"sourceName"`
	AveragingPeriod AveragingPeriod `json:"averagingPeriod"`
}

// AirQualityData is the full air-quality record for a location.
type AirQualityData struct {
	Location     string        `json:"location"`
	City         string        `json:"city"`
	Country      string        `json:"country"`
	Coordinates  Coordinates   `json:"coordinates"`
	Measurements []Measurement `json:"measurements"`
	AQI          *int          `json:"aqi,omitempty"`
}

// NearbyAirQuality is the nearest-station response for a coordinate lookup.
type NearbyAirQuality struct {
	AQI          *int          `json:"aqi"`
	Location     NearbyStation `json:"location"`
	Measurements []Measurement `json:"measurements"`
}

// NearbyStation describes the resolved station placeholder.
type NearbyStation struct {
	Name        string      `json:"name"`
	City        string      `json:"city"`
	Country     string      `json:"country"`
	Coordinates Coordinates `json:"coordinates"`
}

// Place is a geocoded city location.
type Place struct {
	Lat       float64
	Lng       float64
	City      string
	Country   string
	Formatted string
}

// PointConditions is the normalized output of a point air-quality provider:
// an optional universal index plus pollutant measurements.
type PointConditions struct {
	AQI          *int
	Measurements []Measurement
}
