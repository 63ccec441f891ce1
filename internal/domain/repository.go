package domain

import "context"

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// CreateCommitted сохраняет заказ со всеми позициями как одну атомарную
	// единицу: либо видна вся запись, либо ничего. Возвращает
	// ErrOrderAlreadyExists при конфликте ID.
	CreateCommitted(ctx context.Context, order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound.
	Get(ctx context.Context, id string) (Order, error)
	// List возвращает проекции заказов, новые первыми; limit <= 0 — без ограничения.
	List(ctx context.Context, limit int) ([]OrderSummary, error)
	// CancelCommitted атомарно переводит заказ committed → cancelled и
	// возвращает остатки по каждой позиции — всё вместе или ничего.
	// Повторная отмена — ErrOrderNotCancellable, неизвестный ID — ErrOrderNotFound.
	CancelCommitted(ctx context.Context, id string) (Order, error)
}
