// Package observation defines the canonical environmental data records
// produced by the aggregation pipeline. Every provider client normalizes its
// upstream payload into these types before results are merged.
package observation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Category selects which providers the aggregator consults.
type Category string

const (
	CategoryHeat  Category = "heat"
	CategoryGreen Category = "green"
	CategoryWater Category = "water"
	CategoryAQI   Category = "aqi"
)

// Categories lists all supported categories in a stable order.
var Categories = []Category{CategoryHeat, CategoryGreen, CategoryWater, CategoryAQI}

// ParseCategory validates a category query parameter.
func ParseCategory(s string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryHeat:
		return CategoryHeat, true
	case CategoryGreen:
		return CategoryGreen, true
	case CategoryWater:
		return CategoryWater, true
	case CategoryAQI:
		return CategoryAQI, true
	}
	return "", false
}

// Observation is the canonical normalized environmental data point.
// Intensity is always within [0,1] and Source is never empty: every
// observation is traceable to a real provider or to the fallback synthesizer.
type Observation struct {
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Intensity float64  `json:"intensity"`
	Value     *float64 `json:"value,omitempty"`
	Timestamp string   `json:"timestamp"`
	Source    string   `json:"source"`
}

// Float returns a pointer to v, for optional Value fields.
func Float(v float64) *float64 { return &v }

// ValidCoords reports whether lat/lng form a finite coordinate pair within
// the valid geographic ranges.
func ValidCoords(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// ClampIntensity forces v into [0,1]. NaN (a malformed upstream field parsed
// as missing) defaults to the mid-range 0.5 so one bad record never fails a
// batch.
func ClampIntensity(v float64) float64 {
	if math.IsNaN(v) {
		return 0.5
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Confidence bucket values for categorical fire detection confidence.
// The buckets are a policy constant, not a derived physical quantity.
const (
	ConfidenceBucketHigh    = 80
	ConfidenceBucketNominal = 50
	ConfidenceBucketLow     = 30
)

// Confidence is a tagged union: upstream fire feeds report detection
// confidence either as a percentage or as one of {low, nominal, high}.
type Confidence struct {
	// Level holds the categorical value when Categorical is true.
	Level string

	// Percent holds the numeric value when Categorical is false.
	Percent float64

	// Categorical distinguishes the two variants.
	Categorical bool
}

// ParseConfidence interprets a raw confidence field from a provider CSV.
// Unparseable values map to the nominal bucket rather than failing the row.
func ParseConfidence(raw string) Confidence {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "low", "nominal", "high":
		return Confidence{Level: s, Categorical: true}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return Confidence{Level: "nominal", Categorical: true}
	}
	return Confidence{Percent: v}
}

// Bucket maps the confidence onto a single numeric severity in [0,100]:
// high→80, nominal→50, low→30, numeric values pass through.
func (c Confidence) Bucket() float64 {
	if !c.Categorical {
		return c.Percent
	}
	switch c.Level {
	case "high":
		return ConfidenceBucketHigh
	case "low":
		return ConfidenceBucketLow
	default:
		return ConfidenceBucketNominal
	}
}

// String renders the confidence for alert descriptions.
func (c Confidence) String() string {
	if c.Categorical {
		return c.Level
	}
	return fmt.Sprintf("%.0f%%", c.Percent)
}

// FireObservation is a raw fire detection from a satellite feed, consumed by
// the heat category and the disaster alert builder.
type FireObservation struct {
	Latitude   float64
	Longitude  float64
	BrightTI4  float64 // brightness temperature, Kelvin
	Scan       float64
	Track      float64
	AcqDate    string
	AcqTime    string
	Satellite  string
	Confidence Confidence
	Version    string
	BrightTI5  float64
	FRP        float64 // fire radiative power, MW
}

// Observation normalizes the fire detection into the canonical record.
// Brightness temperature scales linearly onto [0,1] with 400 K clipping to
// full intensity.
func (f FireObservation) Observation(source string) Observation {
	return Observation{
		Lat:       f.Latitude,
		Lng:       f.Longitude,
		Intensity: ClampIntensity(f.BrightTI4 / 400),
		Value:     Float(f.BrightTI4),
		Timestamp: f.AcqDate + "T" + f.AcqTime,
		Source:    source,
	}
}

// Infrastructure is the normalized output of the urban infrastructure feed:
// classified OpenStreetMap way counts within a bounding box.
type Infrastructure struct {
	Roads       int `json:"roads"`
	Buildings   int `json:"buildings"`
	Industrial  int `json:"industrial"`
	WaterBodies int `json:"waterBodies"`
	Forest      int `json:"forest"`
	Total       int `json:"totalElements"`
}
