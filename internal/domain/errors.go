package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyOrder — заказ без единой позиции.
	ErrEmptyOrder = errors.New("order must contain at least one line")
	// ErrInvalidQuantity — количество в позиции не положительное.
	ErrInvalidQuantity = errors.New("line quantity must be greater than zero")
	// ErrInvalidDiscount — скидка вне диапазона [0,100].
	ErrInvalidDiscount = errors.New("discount percentage must be within [0,100]")
	// ErrProductNotFound — товар не существует или неактивен.
	ErrProductNotFound = errors.New("product not found")
	// ErrCustomerNotFound — указанный клиент не найден в справочнике.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrSalespersonNotFound — указанный продавец не найден в справочнике.
	ErrSalespersonNotFound = errors.New("salesperson not found")
	// ErrInsufficientStock — остатка недостаточно для резервирования.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrOrderImmutable — попытка изменить заказ после коммита.
	ErrOrderImmutable = errors.New("order cannot be modified after commit")
	// ErrOrderNotCancellable — заказ не в статусе committed, отмена невозможна.
	ErrOrderNotCancellable = errors.New("order is not cancellable")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderAlreadyExists — запись с таким ID уже сохранена.
	ErrOrderAlreadyExists = errors.New("order already exists")
	// ErrStorageCommit — атомарный коммит хранилища не прошёл; остатки
	// к этому моменту уже возвращены, запрос можно повторить целиком.
	ErrStorageCommit = errors.New("storage commit failed")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")

	// Ошибки структурных инвариантов заказа.
	ErrOrderStatusInvalid  = errors.New("order status is invalid")
	ErrTotalNegative       = errors.New("order total must be non-negative")
	ErrLineProductRequired = errors.New("line product_id is required")
	ErrLinePriceNegative   = errors.New("line unit price must be non-negative")
)

// InsufficientStockError уточняет ErrInsufficientStock данными по товару.
type InsufficientStockError struct {
	ProductID string
	Requested int32
	Available int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// Unwrap позволяет сверять ошибку через errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// IsInsufficientStock проверяет, является ли ошибка нехваткой остатка.
func IsInsufficientStock(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}
