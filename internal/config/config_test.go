package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	os.Setenv("BACKEND_URL", "http://localhost:5001")
	defer os.Unsetenv("BACKEND_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.BackendURL != "http://localhost:5001" {
		t.Errorf("Expected BackendURL 'http://localhost:5001', got '%s'", cfg.BackendURL)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv("BACKEND_URL")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when BACKEND_URL is missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("BACKEND_URL", "http://localhost:5001")
	defer os.Unsetenv("BACKEND_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default Port '8080', got '%s'", cfg.Port)
	}
	if cfg.BackendTimeout != 120 {
		t.Errorf("Expected default BackendTimeout 120, got %d", cfg.BackendTimeout)
	}
	if cfg.MaxUploadBytes != 26214400 {
		t.Errorf("Expected default MaxUploadBytes 26214400, got %d", cfg.MaxUploadBytes)
	}
	if cfg.RefineStrategy != RefineStrategyRules {
		t.Errorf("Expected default RefineStrategy 'rules', got '%s'", cfg.RefineStrategy)
	}
	if cfg.CircuitBreakerMaxFailures != 5 {
		t.Errorf("Expected default CircuitBreakerMaxFailures 5, got %d", cfg.CircuitBreakerMaxFailures)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default LogLevel 'info', got '%s'", cfg.LogLevel)
	}
	if !cfg.MetricsEnabled {
		t.Error("Expected metrics enabled by default")
	}
}

func TestLoad_InvalidRefineStrategy(t *testing.T) {
	os.Setenv("BACKEND_URL", "http://localhost:5001")
	os.Setenv("REFINE_STRATEGY", "magic")
	defer os.Unsetenv("BACKEND_URL")
	defer os.Unsetenv("REFINE_STRATEGY")

	_, err := Load()
	if err == nil {
		t.Error("Expected error for unknown refine strategy")
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("BACKEND_URL", "http://backend:5001")
	os.Setenv("LOG_LEVEL", "debug")
	defer os.Unsetenv("BACKEND_URL")
	defer os.Unsetenv("LOG_LEVEL")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Expected LogLevel 'debug', got '%s'", cfg.LogLevel)
	}
}
