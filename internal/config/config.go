// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	// DevJWTSecret is the fallback signing key. It must not be used outside
	// local development.
	DevJWTSecret = "notekeeper-dev-secret-change-me"
)

type Config struct {
	Port          string
	MongoURI      string
	Database      string
	Store         string
	JWTSecret     string
	ScanInterval  time.Duration
	LogLevel      slog.Level
	UsesDevSecret bool
}

// Load reads configuration from environment variables, falling back to
// defaults for anything unset.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("port", "7521")
	v.SetDefault("mongodb_uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb_database", "notekeeper")
	v.SetDefault("note_store", StoreMongo)
	v.SetDefault("jwt_secret", DevJWTSecret)
	v.SetDefault("reminder_scan_interval", time.Minute)
	v.SetDefault("log_level", "info")
	v.AutomaticEnv()

	cfg := Config{
		Port:         v.GetString("port"),
		MongoURI:     v.GetString("mongodb_uri"),
		Database:     v.GetString("mongodb_database"),
		Store:        strings.ToLower(v.GetString("note_store")),
		JWTSecret:    v.GetString("jwt_secret"),
		ScanInterval: v.GetDuration("reminder_scan_interval"),
	}
	cfg.UsesDevSecret = cfg.JWTSecret == DevJWTSecret

	if cfg.Store != StoreMongo && cfg.Store != StoreMemory {
		return Config{}, fmt.Errorf("NOTE_STORE must be %q or %q, got %q", StoreMongo, StoreMemory, cfg.Store)
	}
	if cfg.ScanInterval <= 0 {
		return Config{}, fmt.Errorf("REMINDER_SCAN_INTERVAL must be positive, got %s", cfg.ScanInterval)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("log_level"))); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return cfg, nil
}
