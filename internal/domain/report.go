package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// SalesTotals — сводка по продажам для дашборда.
type SalesTotals struct {
	CommittedValue decimal.Decimal
	CommittedCount int64
	CancelledCount int64
}

// StockLevel — остаток товара вместе с количеством проданных единиц.
type StockLevel struct {
	ProductID   string
	Description string
	OnHand      int32
	UnitsSold   int64
}

// ReportSource — read-only источник данных для отчётов. Не участвует
// в протоколе коммита и согласован с ним лишь eventually.
type ReportSource interface {
	SalesTotals(ctx context.Context) (SalesTotals, error)
	RecentSales(ctx context.Context, limit int) ([]OrderSummary, error)
	LowStock(ctx context.Context, limit int) ([]StockLevel, error)
}
