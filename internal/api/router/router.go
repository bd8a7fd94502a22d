package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fleetassist/fleetassist/internal/alert"
	"github.com/fleetassist/fleetassist/internal/messaging"
)

// Config holds router configuration
type Config struct {
	AlertHandler     *alert.Handler
	MessagingHandler *messaging.Handler
	MetricsHandler   http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", cfg.MessagingHandler.HealthCheck)
	r.Post("/alerts/sensor-anomaly", cfg.AlertHandler.SensorAnomaly)
	r.Post("/webhooks/sms", cfg.MessagingHandler.InboundSMSWebhook)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
