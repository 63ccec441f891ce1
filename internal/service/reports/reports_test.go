package reports_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/GabrielMottaBecker/vendify/internal/domain"
	"github.com/GabrielMottaBecker/vendify/internal/service/reports"
)

type stubSource struct {
	totals    domain.SalesTotals
	recent    []domain.OrderSummary
	lowStock  []domain.StockLevel
	totalsErr error
}

func (s *stubSource) SalesTotals(context.Context) (domain.SalesTotals, error) {
	return s.totals, s.totalsErr
}

func (s *stubSource) RecentSales(context.Context, int) ([]domain.OrderSummary, error) {
	return s.recent, nil
}

func (s *stubSource) LowStock(context.Context, int) ([]domain.StockLevel, error) {
	return s.lowStock, nil
}

func TestSummary(t *testing.T) {
	source := &stubSource{
		totals: domain.SalesTotals{
			CommittedValue: decimal.RequireFromString("145.50"),
			CommittedCount: 3,
			CancelledCount: 1,
		},
		recent: []domain.OrderSummary{
			{ID: "order-1", Status: domain.OrderStatusCommitted, Total: decimal.RequireFromString("45.00"), CreatedAt: time.Now()},
		},
		lowStock: []domain.StockLevel{
			{ProductID: "product-2", Description: "pen", OnHand: 1, UnitsSold: 9},
		},
	}

	service := reports.NewService(source, nil)

	summary, err := service.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, "145.50", summary.Totals.CommittedValue.StringFixed(2))
	require.EqualValues(t, 3, summary.Totals.CommittedCount)
	require.EqualValues(t, 1, summary.Totals.CancelledCount)
	require.Len(t, summary.RecentSales, 1)
	require.Len(t, summary.LowStock, 1)
	require.Equal(t, "product-2", summary.LowStock[0].ProductID)
}

func TestSummary_SourceError(t *testing.T) {
	source := &stubSource{totalsErr: errors.New("connection reset")}
	service := reports.NewService(source, nil)

	_, err := service.Summary(context.Background())
	require.Error(t, err)
}
