// Package config loads the service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the full service configuration. Provider credentials may be
// empty; the affected provider is then skipped and its category served from
// synthesized data.
type Config struct {
	Port         string
	Env          string
	RequireTLS   bool
	OTELEnabled  bool
	OTLPEndpoint string

	FIRMSAPIKey        string
	EarthdataToken     string
	CopernicusUsername string
	CopernicusPassword string
	CopernicusClientID string
	GoogleAPIKey       string
	OpenAQAPIKey       string

	ProviderTimeout time.Duration
}

// FromEnv creates a Config from environment variables.
func FromEnv() Config {
	timeout, err := time.ParseDuration(getEnvOrDefault("PROVIDER_TIMEOUT", "10s"))
	if err != nil {
		timeout = 10 * time.Second
	}

	return Config{
		Port:         getEnvOrDefault("APP_PORT", "8080"),
		Env:          getEnvOrDefault("APP_ENV", "development"),
		RequireTLS:   boolFromEnv("REQUIRE_TLS"),
		OTELEnabled:  boolFromEnv("OTEL_ENABLED"),
		OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		FIRMSAPIKey:        os.Getenv("FIRMS_API_KEY"),
		EarthdataToken:     os.Getenv("EARTHDATA_TOKEN"),
		CopernicusUsername: os.Getenv("COPERNICUS_USERNAME"),
		CopernicusPassword: os.Getenv("COPERNICUS_PASSWORD"),
		CopernicusClientID: getEnvOrDefault("COPERNICUS_CLIENT_ID", "cdse-public"),
		GoogleAPIKey:       os.Getenv("GOOGLE_MAPS_API_KEY"),
		OpenAQAPIKey:       os.Getenv("OPENAQ_API_KEY"),

		ProviderTimeout: timeout,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func boolFromEnv(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
