package main

import (
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrapulse/terrapulse/internal/aggregate"
	"github.com/terrapulse/terrapulse/internal/config"
	"github.com/terrapulse/terrapulse/internal/observation"
	"github.com/terrapulse/terrapulse/internal/provider/cmr"
	"github.com/terrapulse/terrapulse/internal/provider/firms"
	"github.com/terrapulse/terrapulse/internal/provider/resilience"
)

func TestBuildProviders_HeatMergesFiresAndTemperature(t *testing.T) {
	cfg := config.Config{
		FIRMSAPIKey:     "test-key",
		EarthdataToken:  "test-token",
		ProviderTimeout: time.Second,
	}
	registry := resilience.NewRegistry()
	newResilient := func(name string) *resilience.Client {
		client := resilience.NewClient(resilience.DefaultClientConfig(name))
		registry.Register(name, client)
		return client
	}

	providers, fireSource, osmClient := buildProviders(cfg, zerolog.New(io.Discard), newResilient)

	require.NotNil(t, fireSource)
	require.NotNil(t, osmClient)

	var heat []string
	for _, p := range providers[observation.CategoryHeat] {
		heat = append(heat, p.Name())
	}
	assert.ElementsMatch(t, []string{firms.ProviderName, cmr.TemperatureCollection.Source}, heat)
	assert.Equal(t, aggregate.EstimatorSource, providers[observation.CategoryAQI][0].Name())
}
