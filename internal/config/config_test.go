package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MONGODB_URI", "MONGODB_DATABASE", "NOTE_STORE", "JWT_SECRET", "REMINDER_SCAN_INTERVAL", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "7521" || cfg.Store != StoreMongo || cfg.Database != "notekeeper" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.ScanInterval != time.Minute {
		t.Errorf("scan interval = %s", cfg.ScanInterval)
	}
	if cfg.LogLevel != slog.LevelInfo || !cfg.UsesDevSecret {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("NOTE_STORE", "Memory")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("REMINDER_SCAN_INTERVAL", "15s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9000" || cfg.Store != StoreMemory || cfg.JWTSecret != "s3cret" || cfg.UsesDevSecret {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.ScanInterval != 15*time.Second || cfg.LogLevel != slog.LevelDebug {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"NOTE_STORE":             "postgres",
		"REMINDER_SCAN_INTERVAL": "-1s",
		"LOG_LEVEL":              "chatty",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", key, val)
			}
		})
	}
}
