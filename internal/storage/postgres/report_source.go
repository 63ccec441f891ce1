package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/GabrielMottaBecker/vendify/internal/domain"
)

type reportSource struct {
	db *sql.DB
}

// NewReportSource создаёт PostgreSQL-источник данных для отчётов.
func NewReportSource(store *Store) domain.ReportSource {
	return &reportSource{db: store.DB()}
}

// SalesTotals считает суммы и количества заказов одним запросом.
func (s *reportSource) SalesTotals(ctx context.Context) (domain.SalesTotals, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var totals domain.SalesTotals
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(total) FILTER (WHERE status = 'committed'), 0),
			COUNT(*) FILTER (WHERE status = 'committed'),
			COUNT(*) FILTER (WHERE status = 'cancelled')
		FROM orders
	`).Scan(&totals.CommittedValue, &totals.CommittedCount, &totals.CancelledCount)
	if err != nil {
		return domain.SalesTotals{}, fmt.Errorf("query sales totals: %w", err)
	}

	return totals, nil
}

// RecentSales возвращает последние заказы, новые первыми.
func (s *reportSource) RecentSales(ctx context.Context, limit int) ([]domain.OrderSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 5
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_id, status, total, created_at
		FROM orders
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent sales: %w", err)
	}
	defer rows.Close()

	summaries := make([]domain.OrderSummary, 0, limit)
	for rows.Next() {
		var (
			summary    domain.OrderSummary
			customerID sql.NullString
			status     string
		)
		if err := rows.Scan(&summary.ID, &customerID, &status, &summary.Total, &summary.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recent sale: %w", err)
		}
		summary.CustomerID = customerID.String
		summary.Status = domain.OrderStatus(status)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent sales: %w", err)
	}

	return summaries, nil
}

// LowStock возвращает товары с минимальным остатком вместе с количеством
// проданных единиц по committed-заказам.
func (s *reportSource) LowStock(ctx context.Context, limit int) ([]domain.StockLevel, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 5
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.description, p.on_hand, COALESCE(sold.units, 0)
		FROM products p
		LEFT JOIN (
			SELECT l.product_id, SUM(l.qty) AS units
			FROM order_lines l
			JOIN orders o ON o.id = l.order_id
			WHERE o.status = 'committed'
			GROUP BY l.product_id
		) sold ON sold.product_id = p.id
		ORDER BY p.on_hand ASC, p.id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query low stock: %w", err)
	}
	defer rows.Close()

	levels := make([]domain.StockLevel, 0, limit)
	for rows.Next() {
		var level domain.StockLevel
		if err := rows.Scan(&level.ProductID, &level.Description, &level.OnHand, &level.UnitsSold); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		levels = append(levels, level)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock levels: %w", err)
	}

	return levels, nil
}

var _ domain.ReportSource = (*reportSource)(nil)
