package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/GabrielMottaBecker/vendify/internal/domain"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductLedger и ProductCatalog.
func NewProductRepository(store *Store) *productRepository {
	return &productRepository{db: store.DB()}
}

// GetProduct возвращает карточку товара или ErrProductNotFound.
func (r *productRepository) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var product domain.Product
	err := r.db.QueryRowContext(ctx, `
		SELECT id, description, unit_price, on_hand, active, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id).Scan(
		&product.ID, &product.Description, &product.UnitPrice,
		&product.OnHand, &product.Active, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}

	return product, nil
}

// Reserve списывает qty единиц остатка. Проверка и списание выполняются
// одним условным UPDATE, поэтому конкурентные заказы не могут увести
// остаток в минус.
func (r *productRepository) Reserve(ctx context.Context, productID string, qty int32) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET on_hand = on_hand - $2,
		    updated_at = NOW()
		WHERE id = $1
		  AND on_hand >= $2
	`, productID, qty)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for reserve: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// UPDATE не сработал: либо товара нет, либо остатка не хватило.
	var available int32
	err = r.db.QueryRowContext(ctx, `SELECT on_hand FROM products WHERE id = $1`, productID).Scan(&available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrProductNotFound
		}
		return fmt.Errorf("check product stock: %w", err)
	}

	return &domain.InsufficientStockError{
		ProductID: productID,
		Requested: qty,
		Available: available,
	}
}

// Release безусловно возвращает qty единиц на остаток.
func (r *productRepository) Release(ctx context.Context, productID string, qty int32) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET on_hand = on_hand + $2,
		    updated_at = NOW()
		WHERE id = $1
	`, productID, qty)
	if err != nil {
		return fmt.Errorf("release stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for release: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

// Upsert создаёт или обновляет карточку товара (сидинг каталога).
func (r *productRepository) Upsert(ctx context.Context, product domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, description, unit_price, on_hand, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (id) DO UPDATE SET
			description = EXCLUDED.description,
			unit_price = EXCLUDED.unit_price,
			on_hand = EXCLUDED.on_hand,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
	`, product.ID, product.Description, product.UnitPrice, product.OnHand, product.Active, now)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}

	return nil
}

var (
	_ domain.ProductLedger  = (*productRepository)(nil)
	_ domain.ProductCatalog = (*productRepository)(nil)
)
