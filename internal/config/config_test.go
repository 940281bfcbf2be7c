package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/terrapulse/terrapulse/internal/config"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := config.FromEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "cdse-public", cfg.CopernicusClientID)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	assert.False(t, cfg.OTELEnabled)
	assert.False(t, cfg.RequireTLS)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("REQUIRE_TLS", "true")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("FIRMS_API_KEY", "firms-key")
	t.Setenv("EARTHDATA_TOKEN", "earthdata-token")
	t.Setenv("GOOGLE_MAPS_API_KEY", "maps-key")
	t.Setenv("PROVIDER_TIMEOUT", "30s")

	cfg := config.FromEnv()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.True(t, cfg.RequireTLS)
	assert.True(t, cfg.OTELEnabled)
	assert.Equal(t, "firms-key", cfg.FIRMSAPIKey)
	assert.Equal(t, "earthdata-token", cfg.EarthdataToken)
	assert.Equal(t, "maps-key", cfg.GoogleAPIKey)
	assert.Equal(t, 30*time.Second, cfg.ProviderTimeout)
}

func TestFromEnvBadTimeout(t *testing.T) {
	t.Setenv("PROVIDER_TIMEOUT", "not-a-duration")

	cfg := config.FromEnv()
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
}
