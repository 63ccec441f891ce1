package postgres

import (
	"context"
	"testing"
	"time"
)

func requireSchemaStatus(t *testing.T, store *Store, ctx context.Context, wantVersion int64, wantApplied int) {
	t.Helper()

	status, err := store.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("migration status: %v", err)
	}
	if status.Version != wantVersion || status.Applied != wantApplied {
		t.Fatalf("unexpected schema status: version=%d applied=%d, want version=%d applied=%d",
			status.Version, status.Applied, wantVersion, wantApplied)
	}
}

func TestMigrator_PostgresLifecycle(t *testing.T) {
	store := openRawPostgresStoreForIntegrationTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	// Reset migration state first.
	if err := store.MigrateDown(ctx, 100); err != nil {
		t.Fatalf("migrate down reset: %v", err)
	}
	requireSchemaStatus(t, store, ctx, 0, 0)

	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("migrate up all: %v", err)
	}
	requireSchemaStatus(t, store, ctx, 4, 4)

	// Idempotent up keeps state unchanged.
	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("idempotent migrate up: %v", err)
	}
	requireSchemaStatus(t, store, ctx, 4, 4)

	if err := store.MigrateDown(ctx, 1); err != nil {
		t.Fatalf("migrate down 1: %v", err)
	}
	requireSchemaStatus(t, store, ctx, 3, 3)

	if err := store.MigrateDown(ctx, 100); err != nil {
		t.Fatalf("migrate down remaining: %v", err)
	}
	requireSchemaStatus(t, store, ctx, 0, 0)

	// No-op down on empty state.
	if err := store.MigrateDown(ctx, 1); err != nil {
		t.Fatalf("migrate down on empty should be no-op: %v", err)
	}
}

func TestMigrator_StepwiseUp(t *testing.T) {
	store := openRawPostgresStoreForIntegrationTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := store.MigrateDown(ctx, 100); err != nil {
		t.Fatalf("migrate down reset: %v", err)
	}

	if err := store.MigrateUp(ctx, 2); err != nil {
		t.Fatalf("migrate up 2: %v", err)
	}
	requireSchemaStatus(t, store, ctx, 2, 2)

	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("migrate up remaining: %v", err)
	}
	requireSchemaStatus(t, store, ctx, 4, 4)
}

func TestMigrator_GuardsAndUnsupportedDirection(t *testing.T) {
	var nilStore *Store
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := nilStore.MigrateUp(ctx, 0); err == nil {
		t.Fatal("expected error for nil store MigrateUp")
	}
	if err := nilStore.MigrateDown(ctx, 1); err == nil {
		t.Fatal("expected error for nil store MigrateDown")
	}
	if _, err := nilStore.MigrationStatus(ctx); err == nil {
		t.Fatal("expected error for nil store MigrationStatus")
	}

	store := openRawPostgresStoreForIntegrationTest(t)
	if err := store.migrate(ctx, migrationDirection("invalid"), 0); err == nil {
		t.Fatal("expected unsupported direction error")
	}
}
