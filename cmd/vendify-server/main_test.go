package main

import (
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/GabrielMottaBecker/vendify/internal/app"
)

func TestSetupLogger(t *testing.T) {
	setupLogger()

	if log.GetLevel() != log.InfoLevel {
		t.Errorf("expected info level, got %s", log.GetLevel())
	}

	if _, ok := log.StandardLogger().Formatter.(*log.TextFormatter); !ok {
		t.Errorf("expected text formatter, got %T", log.StandardLogger().Formatter)
	}
}

func TestConfigFromEnv_UsedByMain(t *testing.T) {
	for _, key := range []string{
		"VENDIFY_HTTP_ADDR", "VENDIFY_METRICS_ADDR", "VENDIFY_POSTGRES_DSN",
		"VENDIFY_STORAGE_DRIVER", "VENDIFY_KAFKA_BROKERS",
	} {
		t.Setenv(key, "")
	}

	cfg := app.ConfigFromEnv()

	if cfg != app.DefaultConfig() {
		t.Errorf("expected default config with empty environment, got %+v", cfg)
	}
}
