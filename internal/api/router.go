// Package api provides the HTTP API for TerraPulse.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/terrapulse/terrapulse/internal/api/handler"
	"github.com/terrapulse/terrapulse/internal/api/middleware"
	"github.com/terrapulse/terrapulse/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	Environment handler.EnvironmentService
	AirQuality  handler.AirQualityService
	Alerts      handler.AlertService
	Temperature handler.TemperatureSource
	Stations    handler.LocationsSource
	Registry    *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "terrapulse-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry)
	environmentHandler := handler.NewEnvironmentHandler(cfg.Environment)
	airQualityHandler := handler.NewAirQualityHandler(cfg.AirQuality)
	alertHandler := handler.NewAlertHandler(cfg.Alerts)
	temperatureHandler := handler.NewTemperatureHandler(cfg.Temperature)
	openAQHandler := handler.NewOpenAQHandler(cfg.Stations)

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Environment aggregation - expensive fan-out compute
		r.Route("/environment", func(r chi.Router) {
			r.Use(expensiveRateLimit) // 30 requests per minute per IP
			r.Get("/", environmentHandler.GetObservations)
			r.Get("/summary", environmentHandler.GetSummary)
		})

		// Air quality endpoints - standard rate limiting
		r.Route("/air-quality", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", airQualityHandler.GetCity)
			r.Get("/nearby", airQualityHandler.GetNearby)
			r.Get("/global", airQualityHandler.GetGlobal)
		})

		// Disaster alerts, temperature and station listings
		r.With(standardRateLimit).Get("/disaster-alerts", alertHandler.GetDisasterAlerts)
		r.With(standardRateLimit).Get("/temperature", temperatureHandler.GetDailyTemperature)
		r.With(standardRateLimit).Get("/openaq", openAQHandler.GetLocations)
	})

	return r
}
