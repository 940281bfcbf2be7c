// Package aqi computes the 0-500 Air Quality Index from PM2.5 concentration
// using the published EPA breakpoint table.
package aqi

import "math"

// breakpoint maps a PM2.5 concentration range onto an index range.
type breakpoint struct {
	cLow, cHigh float64 // concentration bounds, µg/m³
	iLow, iHigh float64 // index bounds
}

// breakpoints covers 0-500 µg/m³ with contiguous, non-overlapping ranges.
// Exactly one bracket matches any finite concentration in range; this must
// hold if the table is ever edited.
var breakpoints = []breakpoint{
	{0, 12, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
	{250.5, 500, 301, 500},
}

// FromPM25 returns the AQI for a PM2.5 concentration, linearly interpolated
// within the matching breakpoint bracket and rounded to the nearest integer.
// ok is false when the concentration falls outside every bracket (negative or
// above 500); callers must substitute an estimate rather than fail.
func FromPM25(pm25 float64) (int, bool) {
	if math.IsNaN(pm25) {
		return 0, false
	}
	for _, bp := range breakpoints {
		if pm25 >= bp.cLow && pm25 <= bp.cHigh {
			v := (bp.iHigh-bp.iLow)/(bp.cHigh-bp.cLow)*(pm25-bp.cLow) + bp.iLow
			return int(math.Round(v)), true
		}
	}
	return 0, false
}
