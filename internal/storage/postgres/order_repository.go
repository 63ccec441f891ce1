package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/GabrielMottaBecker/vendify/internal/domain"
)

type orderRepository struct {
	store *Store
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{store: store}
}

// CreateCommitted сохраняет заказ и его позиции одной транзакцией.
func (r *orderRepository) CreateCommitted(ctx context.Context, order domain.Order) error {
	return r.store.InTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (
				id, customer_id, salesperson_id, status, discount_pct, total, created_at, cancelled_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`,
			order.ID, nullString(order.CustomerID), nullString(order.SalespersonID),
			string(order.Status), order.DiscountPct, order.Total,
			order.CreatedAt, nullTime(order.CancelledAt),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrOrderAlreadyExists
			}
			return fmt.Errorf("insert order: %w", err)
		}

		for _, line := range order.Lines {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO order_lines (
					id, order_id, product_id, qty, unit_price, discount_pct, subtotal
				) VALUES ($1,$2,$3,$4,$5,$6,$7)
			`,
				line.ID, order.ID, line.ProductID, line.Qty,
				line.UnitPrice, line.DiscountPct, line.Subtotal,
			); err != nil {
				return fmt.Errorf("insert order line: %w", err)
			}
		}

		return nil
	})
}

// Get возвращает заказ с позициями или ErrOrderNotFound.
func (r *orderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	order, err := r.scanOrder(r.store.DB().QueryRowContext(ctx, `
		SELECT id, customer_id, salesperson_id, status, discount_pct, total, created_at, cancelled_at
		FROM orders
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	lines, err := r.loadLines(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Lines = lines

	return order, nil
}

// List возвращает проекции заказов, новые первыми.
func (r *orderRepository) List(ctx context.Context, limit int) ([]domain.OrderSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := `
		SELECT id, customer_id, status, total, created_at
		FROM orders
		ORDER BY created_at DESC, id DESC
	`

	var (
		rows *sql.Rows
		err  error
	)

	if limit > 0 {
		rows, err = r.store.DB().QueryContext(ctx, query+" LIMIT $1", limit)
	} else {
		rows, err = r.store.DB().QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	summaries := make([]domain.OrderSummary, 0)
	for rows.Next() {
		var (
			summary    domain.OrderSummary
			customerID sql.NullString
			status     string
		)
		if err := rows.Scan(&summary.ID, &customerID, &status, &summary.Total, &summary.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order summary: %w", err)
		}
		summary.CustomerID = customerID.String
		summary.Status = domain.OrderStatus(status)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return summaries, nil
}

// CancelCommitted переводит заказ committed → cancelled и возвращает остатки
// по позициям. Смена статуса и возврат остатков — одна транзакция: условный
// UPDATE по статусу гарантирует, что повторная отмена не долит остатки.
func (r *orderRepository) CancelCommitted(ctx context.Context, id string) (domain.Order, error) {
	err := r.store.InTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET status = $2,
			    cancelled_at = NOW()
			WHERE id = $1
			  AND status = $3
		`, id, string(domain.OrderStatusCancelled), string(domain.OrderStatusCommitted))
		if err != nil {
			return fmt.Errorf("cancel order: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected for cancel: %w", err)
		}
		if affected == 0 {
			exists, err := orderExistsTx(ctx, tx, id)
			if err != nil {
				return err
			}
			if !exists {
				return domain.ErrOrderNotFound
			}
			return domain.ErrOrderNotCancellable
		}

		// Количества суммируются по товару до соединения: UPDATE ... FROM
		// применяет к строке товара только одну строку источника, и заказ
		// с несколькими позициями одного товара вернул бы лишь часть остатка.
		if _, err := tx.ExecContext(ctx, `
			UPDATE products p
			SET on_hand = on_hand + l.qty,
			    updated_at = NOW()
			FROM (
				SELECT product_id, SUM(qty) AS qty
				FROM order_lines
				WHERE order_id = $1
				GROUP BY product_id
			) l
			WHERE l.product_id = p.id
		`, id); err != nil {
			return fmt.Errorf("restore stock: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	return r.Get(ctx, id)
}

func (r *orderRepository) scanOrder(row *sql.Row) (domain.Order, error) {
	var (
		order         domain.Order
		customerID    sql.NullString
		salespersonID sql.NullString
		status        string
		cancelledAt   sql.NullTime
	)

	if err := row.Scan(
		&order.ID, &customerID, &salespersonID, &status,
		&order.DiscountPct, &order.Total, &order.CreatedAt, &cancelledAt,
	); err != nil {
		return domain.Order{}, err
	}

	order.CustomerID = customerID.String
	order.SalespersonID = salespersonID.String
	order.Status = domain.OrderStatus(status)
	if cancelledAt.Valid {
		order.CancelledAt = cancelledAt.Time.UTC()
	}

	return order, nil
}

func (r *orderRepository) loadLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	rows, err := r.store.DB().QueryContext(ctx, `
		SELECT id, product_id, qty, unit_price, discount_pct, subtotal
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.OrderLine, 0)
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(
			&line.ID, &line.ProductID, &line.Qty,
			&line.UnitPrice, &line.DiscountPct, &line.Subtotal,
		); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}

	return lines, nil
}

func orderExistsTx(ctx context.Context, tx *sql.Tx, orderID string) (bool, error) {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM orders WHERE id = $1`, orderID).Scan(&id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check order exists: %w", err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

var _ domain.OrderRepository = (*orderRepository)(nil)
