package alerts

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/terrapulse/terrapulse/internal/observation"
)

// FireSource lists raw fire detections near a coordinate. May be nil when
// the satellite feed is unconfigured.
type FireSource interface {
	Fires(ctx context.Context, lat, lng, radiusKm float64, daysBack int) ([]observation.FireObservation, error)
}

// Config holds dependencies for the alert service.
type Config struct {
	Logger zerolog.Logger
	Fires  FireSource
	Clock  clockwork.Clock
}

// Service builds disaster alert reports.
type Service struct {
	logger zerolog.Logger
	fires  FireSource
	clock  clockwork.Clock
}

// NewService creates an alert service.
func NewService(cfg Config) *Service {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		logger: cfg.Logger,
		fires:  cfg.Fires,
		clock:  clock,
	}
}

// Report assembles the disaster alert report for a location. Fire alerts
// come from the satellite feed when available, or are synthesized when the
// feed is down or empty; weather hazards are always synthesized. Alerts
// sort by severity, high first, with equal severities keeping their
// generation order. Never returns an error.
func (s *Service) Report(ctx context.Context, lat, lng float64, city string, radiusKm float64) *Report {
	var alerts []Alert

	if s.fires != nil {
		fires, err := s.fires.Fires(ctx, lat, lng, radiusKm, 1)
		if err != nil {
			s.logger.Warn().Err(err).Str("city", city).Msg("fire feed failed, synthesizing fire alerts")
		}
		for i, fire := range fires {
			alerts = append(alerts, fireAlert(fire, i))
		}
	}

	rng := s.rand(lat, lng, city)
	if len(alerts) == 0 {
		alerts = append(alerts, s.mockFireAlerts(rng, lat, lng, radiusKm)...)
	}
	alerts = append(alerts, s.weatherAlerts(rng, lat, lng, city)...)

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity.rank() > alerts[j].Severity.rank()
	})

	meta := Metadata{
		Total:       len(alerts),
		LastUpdated: s.clock.Now().UTC().Format(time.RFC3339),
	}
	for _, a := range alerts {
		switch a.Type {
		case TypeFire:
			meta.Fires++
		case TypeFlood:
			meta.Floods++
		case TypeStorm:
			meta.Storms++
		case TypeHeatwave:
			meta.Heatwaves++
		}
	}

	return &Report{
		City:     city,
		Location: Coordinates{Latitude: lat, Longitude: lng},
		Alerts:   alerts,
		Metadata: meta,
	}
}

// FireSeverity grades a detection: frp above 100 MW or confidence above 70
// is high, frp above 50 or confidence above 50 is medium, the rest low.
func FireSeverity(frp, confidence float64) Severity {
	switch {
	case frp > 100 || confidence > 70:
		return SeverityHigh
	case frp > 50 || confidence > 50:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// fireAlert converts a satellite detection into an alert.
func fireAlert(fire observation.FireObservation, index int) Alert {
	confidence := fire.Confidence.Bucket()

	alert := Alert{
		ID:       fmt.Sprintf("fire-%s-%s-%s-%d", fire.Satellite, fire.AcqDate, fire.AcqTime, index),
		Type:     TypeFire,
		Severity: FireSeverity(fire.FRP, confidence),
		Title:    fmt.Sprintf("Active Fire Detected - %s", fire.Satellite),
		Location: fmt.Sprintf("%.3f°N, %.3f°E", fire.Latitude, fire.Longitude),
		Description: fmt.Sprintf(
			"Fire detected by %s satellite with %s confidence. Fire Radiative Power: %.1f MW. Brightness: %.0fK",
			fire.Satellite, fire.Confidence, fire.FRP, fire.BrightTI4),
		Time:      acqClockTime(fire.AcqDate, fire.AcqTime),
		Lat:       fire.Latitude,
		Lon:       fire.Longitude,
		FRP:       observation.Float(fire.FRP),
		Satellite: fire.Satellite,
	}
	if !fire.Confidence.Categorical {
		alert.Confidence = observation.Float(fire.Confidence.Percent)
	}
	return alert
}

// acqClockTime renders the acquisition timestamp as "date HH:MM UTC".
func acqClockTime(date, hhmm string) string {
	if len(hhmm) >= 4 {
		return fmt.Sprintf("%s %s:%s UTC", date, hhmm[:2], hhmm[2:4])
	}
	return fmt.Sprintf("%s %s UTC", date, hhmm)
}

// mockFireAlerts synthesizes one to three fire detections within the radius.
func (s *Service) mockFireAlerts(rng *rand.Rand, lat, lng, radiusKm float64) []Alert {
	count := rng.Intn(3) + 1
	alerts := make([]Alert, 0, count)
	for i := 0; i < count; i++ {
		offsetLat := (rng.Float64() - 0.5) * (radiusKm / 111)
		offsetLng := (rng.Float64() - 0.5) * (radiusKm / 111)
		confidence := float64(rng.Intn(40) + 60)
		frp := rng.Float64()*500 + 50
		minutesAgo := rng.Intn(120) + 5

		satellite := "MODIS"
		if rng.Float64() > 0.5 {
			satellite = "VIIRS S-NPP"
		}

		severity := SeverityLow
		switch {
		case confidence > 85:
			severity = SeverityHigh
		case confidence > 70:
			severity = SeverityMedium
		}

		alerts = append(alerts, Alert{
			ID:       fmt.Sprintf("fire-%d-%d", i+1, s.clock.Now().UnixMilli()),
			Type:     TypeFire,
			Severity: severity,
			Title:    "Active Fire Detection",
			Location: fmt.Sprintf("%.3f, %.3f", lat+offsetLat, lng+offsetLng),
			Description: fmt.Sprintf(
				"NASA FIRMS %s satellite detected active fire hotspot. Fire Radiative Power: %.1f MW. Confidence: %.0f%%. Monitor for smoke and air quality impacts.",
				satellite, frp, confidence),
			Time:       fmt.Sprintf("%d min ago", minutesAgo),
			Lat:        lat + offsetLat,
			Lon:        lng + offsetLng,
			Confidence: observation.Float(confidence),
			FRP:        observation.Float(frp),
			Satellite:  satellite,
		})
	}
	return alerts
}

// weatherAlerts synthesizes the probabilistic flood, storm, and heatwave
// hazards layered onto every report.
func (s *Service) weatherAlerts(rng *rand.Rand, lat, lng float64, city string) []Alert {
	var alerts []Alert
	now := s.clock.Now().UnixMilli()

	if rng.Float64() > 0.6 {
		severity := SeverityMedium
		if rng.Float64() > 0.7 {
			severity = SeverityHigh
		}
		alerts = append(alerts, Alert{
			ID:          fmt.Sprintf("flood-%d", now),
			Type:        TypeFlood,
			Severity:    severity,
			Title:       "Heavy Precipitation Alert",
			Location:    fmt.Sprintf("%s - Low-lying areas", city),
			Description: "NASA GPM satellite data indicates heavy rainfall system approaching. Flood risk elevated in drainage-poor areas. Monitor water levels.",
			Time:        fmt.Sprintf("%d min ago", rng.Intn(60)+10),
			Lat:         lat + (rng.Float64()-0.5)*0.1,
			Lon:         lng + (rng.Float64()-0.5)*0.1,
		})
	}

	if rng.Float64() > 0.7 {
		severity := SeverityMedium
		if rng.Float64() > 0.8 {
			severity = SeverityHigh
		}
		alerts = append(alerts, Alert{
			ID:          fmt.Sprintf("storm-%d", now),
			Type:        TypeStorm,
			Severity:    severity,
			Title:       "Severe Weather System",
			Location:    fmt.Sprintf("%s metropolitan area", city),
			Description: "NASA satellite imagery shows developing storm system. High winds and heavy rain expected. Secure outdoor equipment.",
			Time:        fmt.Sprintf("%d min ago", rng.Intn(90)+15),
			Lat:         lat + (rng.Float64()-0.5)*0.2,
			Lon:         lng + (rng.Float64()-0.5)*0.2,
		})
	}

	if rng.Float64() > 0.5 {
		anomaly := rng.Float64()*6 + 2
		severity := SeverityLow
		switch {
		case anomaly > 5:
			severity = SeverityHigh
		case anomaly > 3:
			severity = SeverityMedium
		}
		alerts = append(alerts, Alert{
			ID:       fmt.Sprintf("heat-%d", now),
			Type:     TypeHeatwave,
			Severity: severity,
			Title:    "Urban Heat Island Effect",
			Location: fmt.Sprintf("%s - Urban core", city),
			Description: fmt.Sprintf(
				"NASA MODIS land surface temperature %.1f°C above seasonal average. Heat stress risk elevated. Consider cooling measures.",
				anomaly),
			Time: fmt.Sprintf("%d min ago", rng.Intn(180)+30),
			Lat:  lat + (rng.Float64()-0.5)*0.05,
			Lon:  lng + (rng.Float64()-0.5)*0.05,
		})
	}

	return alerts
}

// rand seeds from the query so repeated requests within the same clock
// reading produce the same synthesized hazards.
func (s *Service) rand(lat, lng float64, city string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(city))
	seed := int64(h.Sum64()) ^ int64(math.Float64bits(lat)) ^ int64(math.Float64bits(lng)*17) ^ s.clock.Now().Unix()
	return rand.New(rand.NewSource(seed))
}
