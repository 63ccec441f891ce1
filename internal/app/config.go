package app

import (
	"os"
	"strconv"
	"time"
)

// StorageDriver определяет используемое хранилище.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool

	KafkaBrokers string

	LogLevel string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration
	// OutboxMaxPending — порог backlog для health check; 0 отключает проверку.
	OutboxMaxPending int

	SeedDemoData bool
}

// DefaultConfig возвращает базовые настройки: in-memory хранилище,
// HTTP API на :8080 и метрики на :9090.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		OutboxPollInterval:  2 * time.Second,
		OutboxBatchSize:     20,
		OutboxMaxAttempts:   3,
		OutboxRetryDelay:    100 * time.Millisecond,
		OutboxMaxPending:    1000,
		SeedDemoData:        true,
	}
}

// ConfigFromEnv собирает конфигурацию из переменных окружения VENDIFY_*.
// Непустой VENDIFY_POSTGRES_DSN автоматически переключает драйвер на postgres.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	cfg.HTTPAddr = envString("VENDIFY_HTTP_ADDR", cfg.HTTPAddr)
	cfg.MetricsAddr = envString("VENDIFY_METRICS_ADDR", cfg.MetricsAddr)
	cfg.PostgresDSN = envString("VENDIFY_POSTGRES_DSN", cfg.PostgresDSN)
	cfg.PostgresAutoMigrate = envBool("VENDIFY_POSTGRES_AUTO_MIGRATE", cfg.PostgresAutoMigrate)
	cfg.KafkaBrokers = envString("VENDIFY_KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.LogLevel = envString("VENDIFY_LOG_LEVEL", cfg.LogLevel)
	cfg.OutboxPollInterval = envDuration("VENDIFY_OUTBOX_POLL_INTERVAL", cfg.OutboxPollInterval)
	cfg.OutboxBatchSize = envInt("VENDIFY_OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxMaxAttempts = envInt("VENDIFY_OUTBOX_MAX_ATTEMPTS", cfg.OutboxMaxAttempts)
	cfg.OutboxRetryDelay = envDuration("VENDIFY_OUTBOX_RETRY_DELAY", cfg.OutboxRetryDelay)
	cfg.OutboxMaxPending = envInt("VENDIFY_OUTBOX_MAX_PENDING", cfg.OutboxMaxPending)
	cfg.SeedDemoData = envBool("VENDIFY_SEED_DEMO_DATA", cfg.SeedDemoData)

	if cfg.PostgresDSN != "" {
		cfg.StorageDriver = StorageDriverPostgres
	}
	if driver := os.Getenv("VENDIFY_STORAGE_DRIVER"); driver != "" {
		cfg.StorageDriver = StorageDriver(driver)
	}

	return cfg
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
