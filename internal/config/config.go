package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Refinement strategy names accepted in REFINE_STRATEGY.
const (
	RefineStrategyRules   = "rules"
	RefineStrategyBackend = "backend"
)

// Config holds all configuration for the scribe gateway service.
type Config struct {
	// Server configuration
	Port string `envconfig:"PORT" default:"8080"`

	// Note-generation backend (transcription, S.O.A.P. and diagnosis
	// collaborators share one base URL)
	BackendURL     string `envconfig:"BACKEND_URL" required:"true"`
	BackendTimeout int    `envconfig:"BACKEND_TIMEOUT" default:"120"` // seconds; audio uploads are slow

	// Audio upload limits
	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"26214400"` // 25 MiB

	// Transcript refinement strategy: "rules" (offline substitutions) or
	// "backend" (remote refine-transcript endpoint)
	RefineStrategy string `envconfig:"REFINE_STRATEGY" default:"rules"`

	// Resilience configuration
	CircuitBreakerMaxFailures  int `envconfig:"CIRCUIT_BREAKER_MAX_FAILURES" default:"5"`
	CircuitBreakerResetTimeout int `envconfig:"CIRCUIT_BREAKER_RESET_TIMEOUT" default:"30"` // seconds
	RetryMaxAttempts           int `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`             // readiness probes only
	RetryInitialBackoff        int `envconfig:"RETRY_INITIAL_BACKOFF" default:"100"`        // milliseconds

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
}

// BackendTimeoutDuration returns the backend timeout as a time.Duration.
func (c *Config) BackendTimeoutDuration() time.Duration {
	return time.Duration(c.BackendTimeout) * time.Second
}

// Load reads configuration from a .env file if present, then from the
// environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv reads configuration from environment variables only, which is
// what containerized deployments want.
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("BACKEND_URL is required")
	}
	switch cfg.RefineStrategy {
	case RefineStrategyRules, RefineStrategyBackend:
	default:
		return nil, fmt.Errorf("REFINE_STRATEGY must be %q or %q, got %q",
			RefineStrategyRules, RefineStrategyBackend, cfg.RefineStrategy)
	}

	return &cfg, nil
}
