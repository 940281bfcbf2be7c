// Package main provides the entrypoint for the TerraPulse warmup worker.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/terrapulse/terrapulse/internal/aggregate"
	"github.com/terrapulse/terrapulse/internal/airquality"
	"github.com/terrapulse/terrapulse/internal/alerts"
	"github.com/terrapulse/terrapulse/internal/config"
	"github.com/terrapulse/terrapulse/internal/observation"
	"github.com/terrapulse/terrapulse/internal/provider/cmr"
	"github.com/terrapulse/terrapulse/internal/provider/copernicus"
	"github.com/terrapulse/terrapulse/internal/provider/firms"
	"github.com/terrapulse/terrapulse/internal/provider/overpass"
	"github.com/terrapulse/terrapulse/internal/provider/resilience"
	"github.com/terrapulse/terrapulse/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "terrapulse-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting TerraPulse warmup worker")

	cfg := config.FromEnv()

	interval := 30 * time.Minute
	if raw := os.Getenv("WARMUP_INTERVAL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Warn().Str("value", raw).Msg("invalid WARMUP_INTERVAL, using default")
		} else {
			interval = parsed
		}
	}

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
	alertsCfg := alerts.Config{Logger: log}
	if fireSource != nil {
		aggregateCfg.Fires = fireSource
		alertsCfg.Fires = fireSource
	}

	job := worker.NewWarmupJob(worker.WarmupJobConfig{
		Logger:     log,
		Summaries:  aggregate.NewService(aggregateCfg),
		AirQuality: airquality.NewService(airquality.Config{Logger: log}),
		Alerts:     alerts.NewService(alertsCfg),
	})

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Worker also exposes a health endpoint for the container runtime
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"version": Version,
			"metrics": job.MetricsSnapshot(),
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Warmup loop
	go func() {
		job.Run(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				job.Run(ctx)
			}
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

// buildProviders wires the configured upstream clients into the category
// fan-out, mirroring the API server so the worker warms the same circuits.
// The fire client is returned separately because it also feeds the summary
// fire-risk count and the disaster alert report.
func buildProviders(cfg config.Config, log zerolog.Logger, newResilient func(string) *resilience.Client) (map[observation.Category][]aggregate.Provider, *firms.Client, *overpass.Client) {
	providers := map[observation.Category][]aggregate.Provider{}

	var fireSource *firms.Client
	if cfg.FIRMSAPIKey != "" {
		fireSource = firms.NewClient(firms.ClientConfig{
			APIKey:     cfg.FIRMSAPIKey,
			HTTPClient: newResilient(firms.ProviderName),
			Logger:     log,
		})
		// The heat category merges satellite temperature with active fires.
		providers[observation.CategoryHeat] = append(providers[observation.CategoryHeat], fireSource)
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
	}

	osmClient := overpass.NewClient(overpass.ClientConfig{
		HTTPClient: newResilient(overpass.ProviderName),
		Logger:     log,
	})
	providers[observation.CategoryAQI] = append(providers[observation.CategoryAQI],
		aggregate.NewAQIEstimator(osmClient, nil))

	return providers, fireSource, osmClient
}
