package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает жизненный цикл заказа: после коммита возможен
// единственный переход — в cancelled.
type OrderStatus string

const (
	// OrderStatusCommitted — заказ атомарно сохранён вместе со списанием остатков.
	OrderStatusCommitted OrderStatus = "committed"
	// OrderStatusCancelled — заказ отменён, остатки возвращены на склад ровно один раз.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderLine представляет одну позицию заказа.
type OrderLine struct {
	ID        string
	ProductID string
	// Qty — количество единиц товара, строго положительное.
	Qty int32
	// UnitPrice — цена за единицу, зафиксированная в момент создания заказа.
	// Последующие изменения цены товара на исторические заказы не влияют.
	UnitPrice decimal.Decimal
	// DiscountPct — скидка позиции в процентах, [0,100].
	DiscountPct decimal.Decimal
	// Subtotal — подытог позиции; вычисляется один раз при коммите
	// и больше никогда не пересчитывается на месте.
	Subtotal decimal.Decimal
}

// Order агрегирует проведённую продажу и её позиции.
type Order struct {
	ID string
	// CustomerID пуст для продажи «без клиента» (walk-in).
	CustomerID string
	// SalespersonID пуст, если продавец не указан вызывающим контекстом.
	SalespersonID string
	Status        OrderStatus
	// DiscountPct — скидка на весь заказ в процентах, [0,100].
	DiscountPct decimal.Decimal
	// Total — денормализованный итог заказа, записывается один раз при коммите.
	Total decimal.Decimal
	Lines []OrderLine
	// CreatedAt неизменяем после коммита.
	CreatedAt   time.Time
	CancelledAt time.Time
}

// ValidateInvariants проверяет структурные инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if len(o.Lines) == 0 {
		errs = append(errs, ErrEmptyOrder)
	}
	if o.Status != OrderStatusCommitted && o.Status != OrderStatusCancelled {
		errs = append(errs, ErrOrderStatusInvalid)
	}
	if !validDiscount(o.DiscountPct) {
		errs = append(errs, ErrInvalidDiscount)
	}
	if o.Total.IsNegative() {
		errs = append(errs, ErrTotalNegative)
	}

	for _, line := range o.Lines {
		if line.ProductID == "" {
			errs = append(errs, ErrLineProductRequired)
		}
		if line.Qty <= 0 {
			errs = append(errs, ErrInvalidQuantity)
		}
		if !validDiscount(line.DiscountPct) {
			errs = append(errs, ErrInvalidDiscount)
		}
		if line.UnitPrice.IsNegative() {
			errs = append(errs, ErrLinePriceNegative)
		}
	}

	return errs
}

// OrderSummary — проекция заказа для списков и отчётов.
type OrderSummary struct {
	ID         string
	CustomerID string
	Status     OrderStatus
	Total      decimal.Decimal
	CreatedAt  time.Time
}

var discountMax = decimal.NewFromInt(100)

func validDiscount(pct decimal.Decimal) bool {
	return !pct.IsNegative() && pct.LessThanOrEqual(discountMax)
}
