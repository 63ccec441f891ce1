package postgres

import (
	"strings"
	"testing"
	"testing/fstest"
)

func migrationPair(version, name, up, down string) fstest.MapFS {
	return fstest.MapFS{
		"sql/migrations/" + version + "_" + name + ".up.sql":   {Data: []byte(up)},
		"sql/migrations/" + version + "_" + name + ".down.sql": {Data: []byte(down)},
	}
}

func mergeFS(parts ...fstest.MapFS) fstest.MapFS {
	merged := fstest.MapFS{}
	for _, part := range parts {
		for name, file := range part {
			merged[name] = file
		}
	}
	return merged
}

func TestLoadMigrations_OrdersByVersion(t *testing.T) {
	t.Parallel()

	fsys := mergeFS(
		migrationPair("0002", "create_orders", "CREATE TABLE t_orders (id INT);", "DROP TABLE t_orders;"),
		migrationPair("0001", "create_products", "CREATE TABLE t_products (id INT);", "DROP TABLE t_products;"),
	)

	migrations, err := loadMigrations(fsys)
	if err != nil {
		t.Fatalf("loadMigrations: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}

	if migrations[0].Version != 1 || migrations[0].Name != "create_products" {
		t.Fatalf("unexpected first migration: %+v", migrations[0])
	}
	if migrations[1].Version != 2 || migrations[1].Name != "create_orders" {
		t.Fatalf("unexpected second migration: %+v", migrations[1])
	}
}

func TestLoadMigrations_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fsys    fstest.MapFS
		wantErr string
	}{
		{
			name: "missing down",
			fsys: fstest.MapFS{
				"sql/migrations/0001_init.up.sql": {Data: []byte("CREATE TABLE t (id INT);")},
			},
			wantErr: "both up and down",
		},
		{
			name: "bad file name",
			fsys: fstest.MapFS{
				"sql/migrations/not_a_migration.sql": {Data: []byte("SELECT 1;")},
			},
			wantErr: "invalid migration file name",
		},
		{
			name: "empty body",
			fsys: mergeFS(migrationPair("0001", "init", "   \n", "DROP TABLE t;")),
			wantErr: "migration file is empty",
		},
		{
			name: "name mismatch for one version",
			fsys: fstest.MapFS{
				"sql/migrations/0001_init.up.sql":    {Data: []byte("CREATE TABLE t (id INT);")},
				"sql/migrations/0001_other.down.sql": {Data: []byte("DROP TABLE t;")},
			},
			wantErr: "name mismatch",
		},
		{
			name:    "no files",
			fsys:    fstest.MapFS{},
			wantErr: "no migration files",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := loadMigrations(tt.fsys)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestEmbeddedMigrationsAreComplete(t *testing.T) {
	t.Parallel()

	migrations, err := loadMigrations(migrationsFS)
	if err != nil {
		t.Fatalf("loadMigrations on embedded FS: %v", err)
	}
	if len(migrations) != 4 {
		t.Fatalf("expected 4 embedded migrations, got %d", len(migrations))
	}
	for i, m := range migrations {
		if m.Version != int64(i+1) {
			t.Fatalf("expected contiguous versions, got %d at position %d", m.Version, i)
		}
	}
}

func TestMigrationBodySelectsDirection(t *testing.T) {
	t.Parallel()

	m := migration{UpSQL: "CREATE", DownSQL: "DROP"}
	if m.body(migrationUp) != "CREATE" {
		t.Fatalf("unexpected up body: %s", m.body(migrationUp))
	}
	if m.body(migrationDown) != "DROP" {
		t.Fatalf("unexpected down body: %s", m.body(migrationDown))
	}
}
