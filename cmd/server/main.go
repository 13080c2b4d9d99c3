package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mediscribe/scribe-gateway/internal/config"
	"github.com/mediscribe/scribe-gateway/internal/httpapi"
	"github.com/mediscribe/scribe-gateway/internal/notegen"
	"github.com/mediscribe/scribe-gateway/internal/observability"
	"github.com/mediscribe/scribe-gateway/internal/refine"
	"github.com/mediscribe/scribe-gateway/internal/resilience"
	"github.com/mediscribe/scribe-gateway/internal/session"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before the logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("port", cfg.Port).
		Str("backend_url", cfg.BackendURL).
		Str("refine_strategy", cfg.RefineStrategy).
		Str("log_level", cfg.LogLevel).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("Scribe Gateway Service starting")

	// Note-generation backend client, shared by every session
	backend := notegen.NewClient(cfg)

	// Transcript refinement strategy
	var refiner refine.Refiner
	switch cfg.RefineStrategy {
	case config.RefineStrategyBackend:
		refiner = backend
	default:
		refiner = refine.NewRules()
	}

	hub := httpapi.NewEventHub()
	sessions := session.NewManager(func(id string) *session.Controller {
		return session.NewController(id, backend, refiner, hub)
	})

	mux := http.NewServeMux()

	// Session API plus websocket event stream
	api := httpapi.NewServer(cfg, sessions, hub)
	api.Register(mux)

	// Health check endpoint
	mux.HandleFunc("/health", observability.HealthCheckHandler())

	// Readiness probes the backend; probes are idempotent, so transient
	// network failures are retried here (never on session operations).
	backendCheck := func(ctx context.Context) (bool, error) {
		retryCfg := &resilience.RetryConfig{
			MaxAttempts:       cfg.RetryMaxAttempts,
			InitialBackoff:    time.Duration(cfg.RetryInitialBackoff) * time.Millisecond,
			MaxBackoff:        2 * time.Second,
			BackoffMultiplier: 2.0,
		}
		err := resilience.Retry(ctx, func() error {
			return backend.Ping(ctx)
		}, retryCfg, resilience.IsRetryableNetworkError)
		if err != nil {
			return false, err
		}
		return true, nil
	}
	mux.HandleFunc("/ready", observability.ReadinessHandler(map[string]observability.HealthCheckFunc{
		"notegen_backend": backendCheck,
	}))

	// Metrics endpoint (Prometheus)
	if cfg.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info().Msg("Prometheus metrics enabled at /metrics")
	}

	// Create HTTP server with timeouts; the write timeout must cover slow
	// audio transcription round trips.
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      api.RequestLogger(mux),
		ReadTimeout:  cfg.BackendTimeoutDuration() + 30*time.Second,
		WriteTimeout: cfg.BackendTimeoutDuration() + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited gracefully")
}
