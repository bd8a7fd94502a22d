package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/fleetassist/fleetassist/internal/alert"
	"github.com/fleetassist/fleetassist/internal/api/router"
	"github.com/fleetassist/fleetassist/internal/booking"
	appconfig "github.com/fleetassist/fleetassist/internal/config"
	"github.com/fleetassist/fleetassist/internal/conversation"
	"github.com/fleetassist/fleetassist/internal/directory"
	"github.com/fleetassist/fleetassist/internal/messaging"
	"github.com/fleetassist/fleetassist/internal/observability/metrics"
	"github.com/fleetassist/fleetassist/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting fleetassist API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() { _ = redisClient.Close() }()

	conversationMetrics := metrics.NewConversationMetrics(nil)

	dir := directory.NewPostgresDirectory(pool)
	sessions := conversation.NewRedisSessionStore(redisClient, cfg.SessionTTL)
	dispatcher := booking.NewHTTPDispatcher(cfg.BookingServiceURL, cfg.BookingHour, cfg.BookingTimeout, logger.Component("booking"))

	messenger, provider, reason := messaging.BuildMessenger(messaging.ProviderSelectionConfig{
		Preference:       cfg.SMSProvider,
		TelnyxAPIKey:     cfg.TelnyxAPIKey,
		TelnyxProfileID:  cfg.TelnyxMessagingProfileID,
		TelnyxFromNumber: cfg.TelnyxFromNumber,
		TwilioAccountSID: cfg.TwilioAccountSID,
		TwilioAuthToken:  cfg.TwilioAuthToken,
		TwilioFromNumber: cfg.TwilioFromNumber,
	}, logger.Component("messaging"))
	if messenger == nil {
		logger.Error("no SMS provider configured", "reason", reason)
		os.Exit(1)
	}
	logger.Info("sms provider selected", "provider", provider)

	fromNumber := cfg.TwilioFromNumber
	if fromNumber == "" {
		fromNumber = cfg.TelnyxFromNumber
	}

	interpreter := conversation.NewInterpreter(sessions, dir, dispatcher, logger.Component("conversation"), conversationMetrics)
	alertService := alert.NewService(dir, dir, dir, sessions, messenger, fromNumber, logger.Component("alert"), conversationMetrics)

	alertHandler := alert.NewHandler(alertService, logger)
	messagingHandler := messaging.NewHandler(messaging.HandlerConfig{
		Interpreter:       interpreter,
		Logger:            logger,
		Metrics:           conversationMetrics,
		TwilioAuthToken:   cfg.TwilioAuthToken,
		WebhookURL:        cfg.PublicBaseURL + "/webhooks/sms",
		ValidateSignature: cfg.ValidateWebhookSignature,
	})

	r := router.New(&router.Config{
		AlertHandler:     alertHandler,
		MessagingHandler: messagingHandler,
		MetricsHandler:   promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
