package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/GabrielMottaBecker/vendify/internal/domain"
)

type directory struct {
	db *sql.DB
}

// NewDirectory создаёт PostgreSQL-справочник клиентов и продавцов.
func NewDirectory(store *Store) *directory {
	return &directory{db: store.DB()}
}

func (d *directory) CustomerExists(ctx context.Context, id string) (bool, error) {
	return d.exists(ctx, "customers", id)
}

func (d *directory) SalespersonExists(ctx context.Context, id string) (bool, error) {
	return d.exists(ctx, "salespersons", id)
}

// AddCustomer регистрирует клиента (сидинг).
func (d *directory) AddCustomer(ctx context.Context, id, name string) error {
	return d.upsert(ctx, "customers", id, name)
}

// AddSalesperson регистрирует продавца (сидинг).
func (d *directory) AddSalesperson(ctx context.Context, id, name string) error {
	return d.upsert(ctx, "salespersons", id, name)
}

func (d *directory) exists(ctx context.Context, table, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var found bool
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, table)
	if err := d.db.QueryRowContext(ctx, query, id).Scan(&found); err != nil {
		return false, fmt.Errorf("check %s: %w", table, err)
	}
	return found, nil
}

func (d *directory) upsert(ctx context.Context, table, id, name string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
	`, table)
	if _, err := d.db.ExecContext(ctx, query, id, name); err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

var _ domain.PartyDirectory = (*directory)(nil)
