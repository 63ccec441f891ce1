package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/GabrielMottaBecker/vendify/internal/storage/postgres"
)

type options struct {
	direction string
	steps     int
	dsn       string
	timeout   time.Duration
}

func parseOptions() options {
	var opts options

	flag.StringVar(&opts.direction, "direction", "up", "migration direction: up|down|status")
	flag.IntVar(&opts.steps, "steps", 0, "number of migrations to apply/rollback (0=all for up, 1 for down)")
	flag.StringVar(&opts.dsn, "dsn", "", "PostgreSQL DSN (fallback: VENDIFY_POSTGRES_DSN)")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall timeout for the migration run")
	flag.Parse()

	if strings.TrimSpace(opts.dsn) == "" {
		opts.dsn = strings.TrimSpace(os.Getenv("VENDIFY_POSTGRES_DSN"))
	}
	return opts
}

func main() {
	opts := parseOptions()
	if opts.dsn == "" {
		fail("VENDIFY_POSTGRES_DSN (or -dsn) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	store, err := postgres.Open(ctx, opts.dsn)
	if err != nil {
		fail("open postgres store: %v", err)
	}
	defer store.Close()

	summary, err := run(ctx, store, opts.direction, opts.steps)
	if err != nil {
		fail("%v", err)
	}
	fmt.Println(summary)
}

// run выполняет миграцию и возвращает строку с итоговым состоянием схемы.
func run(ctx context.Context, store *postgres.Store, direction string, steps int) (string, error) {
	direction = strings.ToLower(strings.TrimSpace(direction))

	switch direction {
	case "up":
		if err := store.MigrateUp(ctx, steps); err != nil {
			return "", fmt.Errorf("migrate up failed: %w", err)
		}
	case "down":
		if steps <= 0 {
			steps = 1
		}
		if err := store.MigrateDown(ctx, steps); err != nil {
			return "", fmt.Errorf("migrate down failed: %w", err)
		}
	case "status":
		// Только отчёт, без изменений схемы.
	default:
		return "", fmt.Errorf("unsupported direction: %s (use up|down|status)", direction)
	}

	status, err := store.MigrationStatus(ctx)
	if err != nil {
		return "", fmt.Errorf("migration status failed: %w", err)
	}
	return fmt.Sprintf("migrate %s ok: schema version=%d applied=%d", direction, status.Version, status.Applied), nil
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
