package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/GabrielMottaBecker/vendify/internal/domain"
)

// reportSource считает сводки по in-memory хранилищам. Читает состояние
// напрямую, в протоколе коммита не участвует.
type reportSource struct {
	products *ProductStore
	orders   *orderRepositoryInMemory
}

// NewReportSource создаёт in-memory источник данных для отчётов.
func NewReportSource(products *ProductStore, orders *orderRepositoryInMemory) domain.ReportSource {
	return &reportSource{products: products, orders: orders}
}

func (s *reportSource) SalesTotals(_ context.Context) (domain.SalesTotals, error) {
	totals := domain.SalesTotals{CommittedValue: decimal.Zero}
	for _, order := range s.orders.AllOrders() {
		switch order.Status {
		case domain.OrderStatusCommitted:
			totals.CommittedCount++
			totals.CommittedValue = totals.CommittedValue.Add(order.Total)
		case domain.OrderStatusCancelled:
			totals.CancelledCount++
		}
	}
	return totals, nil
}

func (s *reportSource) RecentSales(ctx context.Context, limit int) ([]domain.OrderSummary, error) {
	return s.orders.List(ctx, limit)
}

func (s *reportSource) LowStock(_ context.Context, limit int) ([]domain.StockLevel, error) {
	if limit <= 0 {
		limit = 5
	}

	// Количество проданных единиц по товарам считаем только по committed-заказам.
	sold := make(map[string]int64)
	for _, order := range s.orders.AllOrders() {
		if order.Status != domain.OrderStatusCommitted {
			continue
		}
		for _, line := range order.Lines {
			sold[line.ProductID] += int64(line.Qty)
		}
	}

	products := s.products.All()
	sort.Slice(products, func(i, j int) bool {
		if products[i].OnHand != products[j].OnHand {
			return products[i].OnHand < products[j].OnHand
		}
		return products[i].ID < products[j].ID
	})

	result := make([]domain.StockLevel, 0, limit)
	for _, product := range products {
		result = append(result, domain.StockLevel{
			ProductID:   product.ID,
			Description: product.Description,
			OnHand:      product.OnHand,
			UnitsSold:   sold[product.ID],
		})
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

var _ domain.ReportSource = (*reportSource)(nil)
