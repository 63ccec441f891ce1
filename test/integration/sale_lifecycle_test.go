package integration

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/GabrielMottaBecker/vendify/internal/domain"
	"github.com/GabrielMottaBecker/vendify/internal/service/reports"
	"github.com/GabrielMottaBecker/vendify/internal/service/sales"
	"github.com/GabrielMottaBecker/vendify/internal/storage/memory"
)

// SaleLifecycleTestSuite тестирует полный жизненный цикл продажи:
// фиксация заказа, списание остатков, событие в outbox, отмена и возврат.
type SaleLifecycleTestSuite struct {
	suite.Suite
	engine   sales.Engine
	products *memory.ProductStore
	outbox   domain.OutboxRepository
	reports  *reports.Service
}

func (suite *SaleLifecycleTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel) // Уменьшаем шум в тестах
	logger := baseLogger.WithField("component", "integration-test")

	suite.products = memory.NewProductStore()
	suite.products.Put(domain.Product{
		ID:          "prod-notebook",
		Description: "Caderno universitário",
		UnitPrice:   decimal.RequireFromString("14.90"),
		OnHand:      20,
		Active:      true,
	})
	suite.products.Put(domain.Product{
		ID:          "prod-pen",
		Description: "Caneta esferográfica azul",
		UnitPrice:   decimal.RequireFromString("2.50"),
		OnHand:      3,
		Active:      true,
	})

	orders := memory.NewOrderRepository(suite.products)
	directory := memory.NewDirectory()
	directory.AddCustomer("cust-1")
	directory.AddSalesperson("sales-1")
	suite.outbox = memory.NewOutboxRepository()

	suite.engine = sales.NewEngineWithoutMetrics(
		orders,
		suite.products,
		suite.products,
		directory,
		suite.outbox,
		logger,
	)
	suite.reports = reports.NewService(memory.NewReportSource(suite.products, orders), logger)
}

func (suite *SaleLifecycleTestSuite) TestSuccessfulSaleLifecycle() {
	ctx := context.Background()

	// 1. Фиксируем продажу с двумя позициями и скидками.
	order, err := suite.engine.CreateOrder(ctx, sales.CreateOrderInput{
		CustomerID:    "cust-1",
		SalespersonID: "sales-1",
		DiscountPct:   decimal.NewFromInt(10),
		Lines: []sales.LineRequest{
			{ProductID: "prod-notebook", Qty: 2},
			{ProductID: "prod-pen", Qty: 3, DiscountPct: decimal.NewFromInt(20)},
		},
	})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), domain.OrderStatusCommitted, order.Status)

	// 14.90*2 = 29.80; 2.50*3*0.8 = 6.00; (29.80+6.00)*0.9 = 32.22
	require.Equal(suite.T(), "32.22", order.Total.StringFixed(2))

	// 2. Остатки списаны.
	notebook, err := suite.products.GetProduct(ctx, "prod-notebook")
	require.NoError(suite.T(), err)
	require.EqualValues(suite.T(), 18, notebook.OnHand)

	pen, err := suite.products.GetProduct(ctx, "prod-pen")
	require.NoError(suite.T(), err)
	require.EqualValues(suite.T(), 0, pen.OnHand)

	// 3. Событие фиксации лежит в outbox.
	pending, err := suite.outbox.PullPending(10)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), pending, 1)
	require.Equal(suite.T(), "sale.committed", pending[0].EventType)

	var payload map[string]any
	require.NoError(suite.T(), json.Unmarshal(pending[0].Payload, &payload))
	require.Equal(suite.T(), order.ID, payload["order_id"])

	// 4. Заказ читается обратно со статусом committed.
	fetched, err := suite.engine.GetOrder(ctx, order.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), domain.OrderStatusCommitted, fetched.Status)
	require.Len(suite.T(), fetched.Lines, 2)
}

func (suite *SaleLifecycleTestSuite) TestCancelRestoresStockExactlyOnce() {
	ctx := context.Background()

	order, err := suite.engine.CreateOrder(ctx, sales.CreateOrderInput{
		Lines: []sales.LineRequest{
			{ProductID: "prod-pen", Qty: 3},
		},
	})
	require.NoError(suite.T(), err)

	pen, err := suite.products.GetProduct(ctx, "prod-pen")
	require.NoError(suite.T(), err)
	require.EqualValues(suite.T(), 0, pen.OnHand)

	// Отмена возвращает остаток и переводит заказ в cancelled.
	cancelled, err := suite.engine.CancelOrder(ctx, order.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), domain.OrderStatusCancelled, cancelled.Status)
	require.False(suite.T(), cancelled.CancelledAt.IsZero())

	pen, err = suite.products.GetProduct(ctx, "prod-pen")
	require.NoError(suite.T(), err)
	require.EqualValues(suite.T(), 3, pen.OnHand)

	// Повторная отмена отклоняется без повторного возврата.
	_, err = suite.engine.CancelOrder(ctx, order.ID)
	require.ErrorIs(suite.T(), err, domain.ErrOrderNotCancellable)

	pen, err = suite.products.GetProduct(ctx, "prod-pen")
	require.NoError(suite.T(), err)
	require.EqualValues(suite.T(), 3, pen.OnHand)
}

func (suite *SaleLifecycleTestSuite) TestCancelWithRepeatedProductLines() {
	ctx := context.Background()

	// Две строки запроса с одним товаром остаются отдельными позициями заказа.
	order, err := suite.engine.CreateOrder(ctx, sales.CreateOrderInput{
		Lines: []sales.LineRequest{
			{ProductID: "prod-notebook", Qty: 2},
			{ProductID: "prod-notebook", Qty: 3},
		},
	})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), order.Lines, 2)
	require.Equal(suite.T(), "prod-notebook", order.Lines[0].ProductID)
	require.Equal(suite.T(), "prod-notebook", order.Lines[1].ProductID)

	notebook, err := suite.products.GetProduct(ctx, "prod-notebook")
	require.NoError(suite.T(), err)
	require.EqualValues(suite.T(), 15, notebook.OnHand)

	// Отмена возвращает количество каждой позиции ровно один раз.
	_, err = suite.engine.CancelOrder(ctx, order.ID)
	require.NoError(suite.T(), err)

	notebook, err = suite.products.GetProduct(ctx, "prod-notebook")
	require.NoError(suite.T(), err)
	require.EqualValues(suite.T(), 20, notebook.OnHand)
}

func (suite *SaleLifecycleTestSuite) TestRejectedSaleLeavesNoTrace() {
	ctx := context.Background()

	// Вторая позиция превышает остаток: вся продажа отклоняется.
	_, err := suite.engine.CreateOrder(ctx, sales.CreateOrderInput{
		Lines: []sales.LineRequest{
			{ProductID: "prod-notebook", Qty: 5},
			{ProductID: "prod-pen", Qty: 10},
		},
	})
	require.Error(suite.T(), err)
	require.True(suite.T(), domain.IsInsufficientStock(err))

	// Резерв первой позиции откатился.
	notebook, err := suite.products.GetProduct(ctx, "prod-notebook")
	require.NoError(suite.T(), err)
	require.EqualValues(suite.T(), 20, notebook.OnHand)

	// Ни заказов, ни событий.
	summaries, err := suite.engine.ListOrders(ctx, 10)
	require.NoError(suite.T(), err)
	require.Empty(suite.T(), summaries)

	pending, err := suite.outbox.PullPending(10)
	require.NoError(suite.T(), err)
	require.Empty(suite.T(), pending)
}

func (suite *SaleLifecycleTestSuite) TestReportsReflectLifecycle() {
	ctx := context.Background()

	first, err := suite.engine.CreateOrder(ctx, sales.CreateOrderInput{
		Lines: []sales.LineRequest{{ProductID: "prod-notebook", Qty: 1}},
	})
	require.NoError(suite.T(), err)

	second, err := suite.engine.CreateOrder(ctx, sales.CreateOrderInput{
		Lines: []sales.LineRequest{{ProductID: "prod-pen", Qty: 2}},
	})
	require.NoError(suite.T(), err)

	_, err = suite.engine.CancelOrder(ctx, second.ID)
	require.NoError(suite.T(), err)

	summary, err := suite.reports.Summary(ctx)
	require.NoError(suite.T(), err)

	// Отменённый заказ не входит в выручку.
	require.EqualValues(suite.T(), 1, summary.Totals.CommittedCount)
	require.EqualValues(suite.T(), 1, summary.Totals.CancelledCount)
	require.Equal(suite.T(), first.Total.StringFixed(2), summary.Totals.CommittedValue.StringFixed(2))
}

func TestSaleLifecycle(t *testing.T) {
	suite.Run(t, new(SaleLifecycleTestSuite))
}
