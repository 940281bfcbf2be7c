// Package main provides the entrypoint for the TerraPulse API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/terrapulse/terrapulse/internal/aggregate"
	"github.com/terrapulse/terrapulse/internal/airquality"
	"github.com/terrapulse/terrapulse/internal/airquality/geocode"
	"github.com/terrapulse/terrapulse/internal/airquality/googleaq"
	"github.com/terrapulse/terrapulse/internal/alerts"
	"github.com/terrapulse/terrapulse/internal/api"
	"github.com/terrapulse/terrapulse/internal/api/middleware"
	"github.com/terrapulse/terrapulse/internal/config"
	"github.com/terrapulse/terrapulse/internal/observation"
	"github.com/terrapulse/terrapulse/internal/provider/cmr"
	"github.com/terrapulse/terrapulse/internal/provider/copernicus"
	"github.com/terrapulse/terrapulse/internal/provider/firms"
	"github.com/terrapulse/terrapulse/internal/provider/openaq"
	"github.com/terrapulse/terrapulse/internal/provider/overpass"
	"github.com/terrapulse/terrapulse/internal/provider/power"
	"github.com/terrapulse/terrapulse/internal/provider/resilience"
	"github.com/terrapulse/terrapulse/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "terrapulse-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting TerraPulse API")

	cfg := config.FromEnv()

	// Initialize OpenTelemetry
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTELEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Provider registry tracks circuit state for the ops status endpoint.
	registry := resilience.NewRegistry()
	newResilient := func(name string) *resilience.Client {
		clientCfg := resilience.DefaultClientConfig(name)
		clientCfg.Timeout = cfg.ProviderTimeout
		client := resilience.NewClient(clientCfg)
		registry.Register(name, client)
		return client
	}

	providers, fireSource, osmClient := buildProviders(cfg, log, newResilient)

	aggregateCfg := aggregate.Config{
		Logger:          log,
		Providers:       providers,
		Infrastructure:  osmClient,
		Registry:        registry,
		ProviderTimeout: cfg.ProviderTimeout,
	}
	if fireSource != nil {
		aggregateCfg.Fires = fireSource
	}
	aggregateService := aggregate.NewService(aggregateCfg)
	log.Info().Int("categories", len(providers)).Msg("aggregation service initialized")

	// Air quality service. Without a Google API key it serves the bundled
	// city sample.
	airQualityCfg := airquality.Config{Logger: log}
	if cfg.GoogleAPIKey != "" {
		airQualityCfg.Geocoder = geocode.NewClient(geocode.ClientConfig{
			APIKey:     cfg.GoogleAPIKey,
			HTTPClient: newResilient("Google Geocoding"),
			Logger:     log,
		})
		airQualityCfg.Conditions = googleaq.NewClient(googleaq.ClientConfig{
			APIKey:     cfg.GoogleAPIKey,
			HTTPClient: newResilient(googleaq.ProviderName),
			Logger:     log,
		})
	} else {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY not set - air quality will be synthesized")
	}
	airQualityService := airquality.NewService(airQualityCfg)
	log.Info().Msg("air quality service initialized")

	alertsCfg := alerts.Config{Logger: log}
	if fireSource != nil {
		alertsCfg.Fires = fireSource
	}
	alertService := alerts.NewService(alertsCfg)
	log.Info().Msg("alert service initialized")

	temperatureClient := power.NewClient(power.ClientConfig{
		HTTPClient: newResilient(power.ProviderName),
		Logger:     log,
	})

	var stations *openaq.Client
	if cfg.OpenAQAPIKey != "" {
		stations = openaq.NewClient(openaq.ClientConfig{
			APIKey:     cfg.OpenAQAPIKey,
			HTTPClient: newResilient(openaq.ProviderName),
			Logger:     log,
		})
	} else {
		log.Warn().Msg("OPENAQ_API_KEY not set - station listings will use the bundled sample")
	}

	// Create router with configuration
	routerCfg := api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		Environment: aggregateService,
		AirQuality:  airQualityService,
		Alerts:      alertService,
		Temperature: temperatureClient,
		Registry:    registry,
	}
	if stations != nil {
		routerCfg.Stations = stations
	}
	router := api.NewRouter(routerCfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// buildProviders wires the configured upstream clients into the category
// fan-out. Missing credentials disable a provider and the aggregation layer
// synthesizes its category instead. The fire client is returned separately
// because it also feeds the summary fire-risk count and the disaster alert
// report; the Overpass client backs both the infrastructure summary and the
// road-density AQI estimate.
func buildProviders(cfg config.Config, log zerolog.Logger, newResilient func(string) *resilience.Client) (map[observation.Category][]aggregate.Provider, *firms.Client, *overpass.Client) {
	providers := map[observation.Category][]aggregate.Provider{}

	var fireSource *firms.Client
	if cfg.FIRMSAPIKey != "" {
		fireSource = firms.NewClient(firms.ClientConfig{
			APIKey:     cfg.FIRMSAPIKey,
			HTTPClient: newResilient(firms.ProviderName),
			Logger:     log,
		})
		// Fire detections are heat observations too: the heat category
		// merges satellite temperature with active fires.
		providers[observation.CategoryHeat] = append(providers[observation.CategoryHeat], fireSource)
	} else {
		log.Warn().Msg("FIRMS_API_KEY not set - fire detections will be synthesized")
	}

	if cfg.EarthdataToken != "" {
		temperature := cmr.NewClient(cmr.ClientConfig{
			Token:      cfg.EarthdataToken,
			Collection: cmr.TemperatureCollection,
			HTTPClient: newResilient(cmr.TemperatureCollection.Source),
			Logger:     log,
		})
		precipitation := cmr.NewClient(cmr.ClientConfig{
			Token:      cfg.EarthdataToken,
			Collection: cmr.PrecipitationCollection,
			HTTPClient: newResilient(cmr.PrecipitationCollection.Source),
			Logger:     log,
		})
		providers[observation.CategoryHeat] = append(providers[observation.CategoryHeat], temperature)
		providers[observation.CategoryWater] = append(providers[observation.CategoryWater], precipitation)
	} else {
		log.Warn().Msg("EARTHDATA_TOKEN not set - heat and water categories will be synthesized")
	}

	if cfg.CopernicusUsername != "" && cfg.CopernicusPassword != "" {
		vegetation := copernicus.NewClient(copernicus.ClientConfig{
			Username:   cfg.CopernicusUsername,
			Password:   cfg.CopernicusPassword,
			ClientID:   cfg.CopernicusClientID,
			HTTPClient: newResilient(copernicus.ProviderName),
			Logger:     log,
		})
		providers[observation.CategoryGreen] = append(providers[observation.CategoryGreen], vegetation)
	} else {
		log.Warn().Msg("Copernicus credentials not set - green category will be synthesized")
	}

	osmClient := overpass.NewClient(overpass.ClientConfig{
		HTTPClient: newResilient(overpass.ProviderName),
		Logger:     log,
	})
	providers[observation.CategoryAQI] = append(providers[observation.CategoryAQI],
		aggregate.NewAQIEstimator(osmClient, nil))

	return providers, fireSource, osmClient
}
