// Package alerts builds disaster alert reports from satellite fire
// detections, with synthesized weather hazards layered on top.
package alerts

// AlertType classifies a disaster alert.
type AlertType string

const (
	TypeFire     AlertType = "fire"
	TypeFlood    AlertType = "flood"
	TypeStorm    AlertType = "storm"
	TypeHeatwave AlertType = "heatwave"
)

// Severity ranks an alert for sorting and display.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// rank orders severities for the stable sort; higher sorts first.
func (s Severity) rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

// Alert is one disaster alert near a monitored location.
type Alert struct {
	ID          string    `json:"id"`
	Type        AlertType `json:"type"`
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Time        string    `json:"time"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	Confidence  *float64  `json:"confidence,omitempty"`
	FRP         *float64  `json:"frp,omitempty"`
	Satellite   string    `json:"satellite,omitempty"`
}

// Coordinates is the queried point echoed back in the report.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Metadata summarizes a report's alert counts by type.
type Metadata struct {
	Total       int    `json:"total"`
	Fires       int    `json:"fires"`
	Floods      int    `json:"floods"`
	Storms      int    `json:"storms"`
	Heatwaves   int    `json:"heatwaves"`
	LastUpdated string `json:"lastUpdated"`
}

// Report is the full disaster alert response for a location.
type Report struct {
	City     string      `json:"city"`
	Location Coordinates `json:"location"`
	Alerts   []Alert     `json:"alerts"`
	Metadata Metadata    `json:"metadata"`
}
