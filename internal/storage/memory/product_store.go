package memory

import (
	"context"
	"sync"
	"time"

	"github.com/GabrielMottaBecker/vendify/internal/domain"
)

// ProductStore — in-memory каталог товаров и реализация ProductLedger.
// Проверка и списание остатка выполняются под одним мьютексом,
// поэтому check-then-act неделим для конкурентных вызовов.
type ProductStore struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductStore возвращает пустой in-memory каталог для разработки и тестов.
func NewProductStore() *ProductStore {
	return &ProductStore{items: make(map[string]domain.Product)}
}

// Put добавляет или заменяет карточку товара. Используется сидингом и тестами;
// ядро остатками через Put не управляет.
func (s *ProductStore) Put(product domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	product.UpdatedAt = time.Now().UTC()
	s.items[product.ID] = product
}

// GetProduct возвращает копию товара или ErrProductNotFound.
func (s *ProductStore) GetProduct(_ context.Context, id string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// Reserve атомарно проверяет доступность и списывает qty с остатка.
func (s *ProductStore) Reserve(_ context.Context, productID string, qty int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.items[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	if qty > product.OnHand {
		return &domain.InsufficientStockError{
			ProductID: productID,
			Requested: qty,
			Available: product.OnHand,
		}
	}

	product.OnHand -= qty
	product.UpdatedAt = time.Now().UTC()
	s.items[productID] = product
	return nil
}

// Release безусловно возвращает qty на остаток.
func (s *ProductStore) Release(_ context.Context, productID string, qty int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.releaseLocked(productID, qty)
}

func (s *ProductStore) releaseLocked(productID string, qty int32) error {
	product, ok := s.items[productID]
	if !ok {
		return domain.ErrProductNotFound
	}

	product.OnHand += qty
	product.UpdatedAt = time.Now().UTC()
	s.items[productID] = product
	return nil
}

// All возвращает копии всех товаров (для отчётов и тестов).
func (s *ProductStore) All() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Product, 0, len(s.items))
	for _, product := range s.items {
		result = append(result, product)
	}
	return result
}

var (
	_ domain.ProductLedger  = (*ProductStore)(nil)
	_ domain.ProductCatalog = (*ProductStore)(nil)
)
