package alerts_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrapulse/terrapulse/internal/alerts"
	"github.com/terrapulse/terrapulse/internal/observation"
)

type stubFires struct {
	fires []observation.FireObservation
	err   error
}

func (s *stubFires) Fires(ctx context.Context, lat, lng, radiusKm float64, daysBack int) ([]observation.FireObservation, error) {
	return s.fires, s.err
}

func newService(t *testing.T, fires alerts.FireSource) *alerts.Service {
	t.Helper()
	return alerts.NewService(alerts.Config{
		Logger: zerolog.Nop(),
		Fires:  fires,
		Clock:  clockwork.NewFakeClockAt(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)),
	})
}

func TestReportFromSatelliteFires(t *testing.T) {
	svc := newService(t, &stubFires{fires: []observation.FireObservation{
		{
			Latitude: 28.65, Longitude: 77.25,
			BrightTI4: 345, FRP: 120.5,
			AcqDate: "2026-08-01", AcqTime: "0430",
			Satellite:  "N",
			Confidence: observation.ParseConfidence("high"),
		},
		{
			Latitude: 28.6, Longitude: 77.2,
			BrightTI4: 310, FRP: 12.0,
			AcqDate: "2026-08-01", AcqTime: "0430",
			Satellite:  "N",
			Confidence: observation.ParseConfidence("30"),
		},
	}})

	report := svc.Report(context.Background(), 28.61, 77.23, "Delhi", 50)
	assert.Equal(t, "Delhi", report.City)
	assert.InDelta(t, 28.61, report.Location.Latitude, 0.001)

	require.GreaterOrEqual(t, len(report.Alerts), 2)
	assert.Equal(t, report.Metadata.Total, len(report.Alerts))
	assert.Equal(t, 2, report.Metadata.Fires)
	assert.Equal(t, "2026-08-01T12:00:00Z", report.Metadata.LastUpdated)

	var fireAlerts []alerts.Alert
	for _, a := range report.Alerts {
		if a.Type == alerts.TypeFire {
			fireAlerts = append(fireAlerts, a)
		}
	}
	require.Len(t, fireAlerts, 2)

	// frp 120.5 with high confidence outranks the low-confidence detection.
	assert.Equal(t, alerts.SeverityHigh, fireAlerts[0].Severity)
	assert.Equal(t, alerts.SeverityLow, fireAlerts[1].Severity)
	assert.Contains(t, fireAlerts[0].Description, "high confidence")
	assert.Contains(t, fireAlerts[0].Time, "04:30 UTC")
	require.NotNil(t, fireAlerts[0].FRP)
	assert.InDelta(t, 120.5, *fireAlerts[0].FRP, 0.001)
	// Categorical confidence is not echoed as a number.
	assert.Nil(t, fireAlerts[0].Confidence)
	require.NotNil(t, fireAlerts[1].Confidence)
	assert.Equal(t, 30.0, *fireAlerts[1].Confidence)
}

func TestReportSortsBySeverity(t *testing.T) {
	svc := newService(t, &stubFires{fires: []observation.FireObservation{
		{Latitude: 1, Longitude: 1, FRP: 10, Confidence: observation.ParseConfidence("low"), AcqDate: "2026-08-01", AcqTime: "0100", Satellite: "N"},
		{Latitude: 2, Longitude: 2, FRP: 200, Confidence: observation.ParseConfidence("high"), AcqDate: "2026-08-01", AcqTime: "0200", Satellite: "N"},
		{Latitude: 3, Longitude: 3, FRP: 60, Confidence: observation.ParseConfidence("nominal"), AcqDate: "2026-08-01", AcqTime: "0300", Satellite: "N"},
	}})

	report := svc.Report(context.Background(), 0, 0, "Test", 50)

	for i := 1; i < len(report.Alerts); i++ {
		assert.GreaterOrEqual(t,
			severityRank(report.Alerts[i-1].Severity),
			severityRank(report.Alerts[i].Severity))
	}
}

func TestReportPreservesOrderWithinSeverity(t *testing.T) {
	svc := newService(t, &stubFires{fires: []observation.FireObservation{
		{Latitude: 1, Longitude: 1, FRP: 10, Confidence: observation.ParseConfidence("low"), AcqDate: "2026-08-01", AcqTime: "0100", Satellite: "N"},
		{Latitude: 2, Longitude: 2, FRP: 12, Confidence: observation.ParseConfidence("low"), AcqDate: "2026-08-01", AcqTime: "0200", Satellite: "N"},
		{Latitude: 3, Longitude: 3, FRP: 14, Confidence: observation.ParseConfidence("low"), AcqDate: "2026-08-01", AcqTime: "0300", Satellite: "N"},
		{Latitude: 4, Longitude: 4, FRP: 16, Confidence: observation.ParseConfidence("low"), AcqDate: "2026-08-01", AcqTime: "0400", Satellite: "N"},
	}})

	report := svc.Report(context.Background(), 0, 0, "Test", 50)

	var fireIDs []string
	for _, a := range report.Alerts {
		if a.Type == alerts.TypeFire {
			assert.Equal(t, alerts.SeverityLow, a.Severity)
			fireIDs = append(fireIDs, a.ID)
		}
	}
	// Equal-severity detections keep the order the feed reported them in.
	assert.Equal(t, []string{
		"fire-N-2026-08-01-0100-0",
		"fire-N-2026-08-01-0200-1",
		"fire-N-2026-08-01-0300-2",
		"fire-N-2026-08-01-0400-3",
	}, fireIDs)
}

func TestReportSynthesizesWhenFeedEmpty(t *testing.T) {
	svc := newService(t, &stubFires{})

	report := svc.Report(context.Background(), 40.71, -74.0, "New York", 50)
	require.NotEmpty(t, report.Alerts)
	assert.GreaterOrEqual(t, report.Metadata.Fires, 1)
	assert.LessOrEqual(t, report.Metadata.Fires, 3)
	for _, a := range report.Alerts {
		if a.Type == alerts.TypeFire {
			require.NotNil(t, a.Confidence)
			assert.GreaterOrEqual(t, *a.Confidence, 60.0)
			assert.LessOrEqual(t, *a.Confidence, 100.0)
		}
	}
}

func TestReportSynthesizesWhenFeedFails(t *testing.T) {
	svc := newService(t, &stubFires{err: errors.New("firms down")})

	report := svc.Report(context.Background(), 51.5, -0.13, "London", 50)
	require.NotEmpty(t, report.Alerts)
	assert.GreaterOrEqual(t, report.Metadata.Fires, 1)
}

func TestReportNilFeedSynthesizes(t *testing.T) {
	svc := newService(t, nil)

	report := svc.Report(context.Background(), 35.68, 139.65, "Tokyo", 50)
	require.NotEmpty(t, report.Alerts)
	assert.GreaterOrEqual(t, report.Metadata.Fires, 1)
}

func TestReportMetadataCounts(t *testing.T) {
	svc := newService(t, &stubFires{})

	report := svc.Report(context.Background(), 28.61, 77.23, "Delhi", 50)
	total := report.Metadata.Fires + report.Metadata.Floods +
		report.Metadata.Storms + report.Metadata.Heatwaves
	assert.Equal(t, report.Metadata.Total, total)
	assert.Equal(t, report.Metadata.Total, len(report.Alerts))
}

func TestFireSeverity(t *testing.T) {
	assert.Equal(t, alerts.SeverityHigh, alerts.FireSeverity(150, 40))
	assert.Equal(t, alerts.SeverityHigh, alerts.FireSeverity(10, 80))
	assert.Equal(t, alerts.SeverityMedium, alerts.FireSeverity(60, 40))
	assert.Equal(t, alerts.SeverityMedium, alerts.FireSeverity(10, 55))
	assert.Equal(t, alerts.SeverityLow, alerts.FireSeverity(10, 30))
}

func severityRank(s alerts.Severity) int {
	switch s {
	case alerts.SeverityHigh:
		return 3
	case alerts.SeverityMedium:
		return 2
	default:
		return 1
	}
}
