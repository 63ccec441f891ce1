package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product — товар каталога с текущим остатком на складе.
// Остаток меняется только через ProductLedger (Reserve/Release),
// карточка товара создаётся и редактируется внешней подсистемой каталога.
type Product struct {
	ID          string
	Description string
	// UnitPrice — текущая цена за единицу; при коммите заказа она
	// снимается в снапшот позиции и дальше живёт независимо.
	UnitPrice decimal.Decimal
	// OnHand — доступный остаток; инвариант: OnHand >= 0 в любой момент.
	OnHand    int32
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
