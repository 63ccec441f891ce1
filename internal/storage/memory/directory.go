package memory

import (
	"context"
	"sync"

	"github.com/GabrielMottaBecker/vendify/internal/domain"
)

// Directory — in-memory справочник клиентов и продавцов.
// Ядру достаточно проверки «ссылка разрешима».
type Directory struct {
	mu           sync.RWMutex
	customers    map[string]struct{}
	salespersons map[string]struct{}
}

// NewDirectory создаёт пустой справочник.
func NewDirectory() *Directory {
	return &Directory{
		customers:    make(map[string]struct{}),
		salespersons: make(map[string]struct{}),
	}
}

// AddCustomer регистрирует клиента (сидинг и тесты).
func (d *Directory) AddCustomer(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.customers[id] = struct{}{}
}

// AddSalesperson регистрирует продавца (сидинг и тесты).
func (d *Directory) AddSalesperson(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.salespersons[id] = struct{}{}
}

func (d *Directory) CustomerExists(_ context.Context, id string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.customers[id]
	return ok, nil
}

func (d *Directory) SalespersonExists(_ context.Context, id string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.salespersons[id]
	return ok, nil
}

var _ domain.PartyDirectory = (*Directory)(nil)
