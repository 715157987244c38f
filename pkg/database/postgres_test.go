package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/wonny/betafolio/backend/pkg/config"
)

func TestNew_Disabled(t *testing.T) {
	_, err := New(&config.Config{})
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("New() error = %v, want ErrDisabled", err)
	}
}

func TestHealthCheck(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}
	if !status.Healthy {
		t.Error("Expected database to be healthy")
	}
}
