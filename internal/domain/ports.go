package domain

import (
	"context"
	"time"
)

// ProductLedger — единственный компонент, которому разрешено менять остатки.
// Абсолютной установки количества нет: ядро оперирует только дельтами.
type ProductLedger interface {
	// Reserve атомарно проверяет qty <= on_hand и списывает qty.
	// Проверка и списание неделимы относительно конкурентных вызовов
	// по одному товару. При нехватке — *InsufficientStockError.
	Reserve(ctx context.Context, productID string, qty int32) error
	// Release безусловно возвращает qty на остаток. Используется
	// компенсацией при откате и отменой заказа.
	Release(ctx context.Context, productID string, qty int32) error
}

// ProductCatalog — read-only доступ ядра к карточкам товаров.
type ProductCatalog interface {
	// GetProduct возвращает товар или ErrProductNotFound.
	GetProduct(ctx context.Context, id string) (Product, error)
}

// PartyDirectory — внешний справочник клиентов и продавцов.
// Ядру нужно только «ссылка разрешима или отсутствует».
type PartyDirectory interface {
	CustomerExists(ctx context.Context, id string) (bool, error)
	SalespersonExists(ctx context.Context, id string) (bool, error)
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
