package main

import (
	"os"
	"testing"

	"time-tracker/backend/internal/config"
)

func TestApplicationStartup(t *testing.T) {
	os.Setenv("ENVIRONMENT", "development")
	os.Setenv("DB_HOST", "localhost")
	os.Setenv("REDIS_HOST", "localhost")
	defer func() {
		os.Unsetenv("ENVIRONMENT")
		os.Unsetenv("DB_HOST")
		os.Unsetenv("REDIS_HOST")
	}()

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg == nil {
		t.Fatal("Configuration should not be nil")
	}

	if cfg.GetServerAddr() == "" {
		t.Error("Expected a non-empty server address")
	}
}

func TestProductionConfigRejectsDefaults(t *testing.T) {
	os.Setenv("ENVIRONMENT", "production")
	defer os.Unsetenv("ENVIRONMENT")

	if _, err := config.LoadConfig(); err == nil {
		t.Error("Expected production config to reject default secrets")
	}
}
