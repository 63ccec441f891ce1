package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/GabrielMottaBecker/vendify/internal/domain"
)

// orderRepositoryInMemory — in-memory реализация OrderRepository.
// Отмена возвращает остатки через ProductStore, поэтому репозиторий
// конструируется с ссылкой на него.
type orderRepositoryInMemory struct {
	mu       sync.RWMutex
	items    map[string]domain.Order
	products *ProductStore
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository(products *ProductStore) *orderRepositoryInMemory {
	return &orderRepositoryInMemory{
		items:    make(map[string]domain.Order),
		products: products,
	}
}

// CreateCommitted сохраняет новый заказ, если ID ещё не занят.
func (r *orderRepositoryInMemory) CreateCommitted(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.ID]; exists {
		return domain.ErrOrderAlreadyExists
	}
	// Сохраняем глубокую копию, чтобы избежать мутаций извне.
	r.items[order.ID] = cloneOrder(order)
	return nil
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) Get(_ context.Context, id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// List возвращает проекции заказов, новые первыми.
func (r *orderRepositoryInMemory) List(_ context.Context, limit int) ([]domain.OrderSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.OrderSummary, 0, len(r.items))
	for _, order := range r.items {
		result = append(result, domain.OrderSummary{
			ID:         order.ID,
			CustomerID: order.CustomerID,
			Status:     order.Status,
			Total:      order.Total,
			CreatedAt:  order.CreatedAt,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// CancelCommitted переводит заказ committed → cancelled и возвращает
// остатки по каждой позиции. Переход статуса — единственная точка входа,
// поэтому повторная отмена не доливает остатки второй раз.
func (r *orderRepositoryInMemory) CancelCommitted(_ context.Context, id string) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if order.Status != domain.OrderStatusCommitted {
		return domain.Order{}, domain.ErrOrderNotCancellable
	}

	r.products.mu.Lock()
	for _, line := range order.Lines {
		// Товары из позиций не удаляются, поэтому releaseLocked не падает.
		_ = r.products.releaseLocked(line.ProductID, line.Qty)
	}
	r.products.mu.Unlock()

	order.Status = domain.OrderStatusCancelled
	order.CancelledAt = time.Now().UTC()
	r.items[id] = order

	return cloneOrder(order), nil
}

// AllOrders возвращает копии всех заказов (для отчётов).
func (r *orderRepositoryInMemory) AllOrders() []domain.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		result = append(result, cloneOrder(order))
	}
	return result
}

func cloneOrder(order domain.Order) domain.Order {
	lines := make([]domain.OrderLine, len(order.Lines))
	copy(lines, order.Lines)
	order.Lines = lines
	return order
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
