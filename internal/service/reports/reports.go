package reports

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/GabrielMottaBecker/vendify/internal/domain"
)

// Количество строк в блоках «последние продажи» и «заканчивающиеся товары».
const (
	defaultRecentSales = 5
	defaultLowStock    = 5
)

// Summary — сводка для главного экрана back-office.
type Summary struct {
	Totals      domain.SalesTotals
	RecentSales []domain.OrderSummary
	LowStock    []domain.StockLevel
}

// Service строит отчёты поверх источника данных хранилища.
type Service struct {
	source domain.ReportSource
	logger *log.Entry
}

// NewService создаёт сервис отчётов.
func NewService(source domain.ReportSource, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "reports")
	}
	return &Service{source: source, logger: logger}
}

// Summary собирает общую сводку: суммы продаж, последние заказы и товары
// с минимальным остатком.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	totals, err := s.source.SalesTotals(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load sales totals: %w", err)
	}

	recent, err := s.source.RecentSales(ctx, defaultRecentSales)
	if err != nil {
		return Summary{}, fmt.Errorf("load recent sales: %w", err)
	}

	lowStock, err := s.source.LowStock(ctx, defaultLowStock)
	if err != nil {
		return Summary{}, fmt.Errorf("load low stock: %w", err)
	}

	return Summary{
		Totals:      totals,
		RecentSales: recent,
		LowStock:    lowStock,
	}, nil
}
