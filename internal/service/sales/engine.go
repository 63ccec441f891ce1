package sales

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/GabrielMottaBecker/vendify/internal/domain"
	"github.com/GabrielMottaBecker/vendify/internal/messaging/kafka"
	"github.com/GabrielMottaBecker/vendify/internal/metrics"
	"github.com/GabrielMottaBecker/vendify/internal/pricing"
)

// LineRequest — запрошенная позиция заказа. Цена не принимается снаружи:
// она снимается с карточки товара в момент сборки.
type LineRequest struct {
	ProductID   string
	Qty         int32
	DiscountPct decimal.Decimal
}

// CreateOrderInput — запрос на создание заказа.
// Пустой CustomerID означает розничную продажу без клиента.
type CreateOrderInput struct {
	CustomerID    string
	SalespersonID string
	DiscountPct   decimal.Decimal
	Lines         []LineRequest
}

// Engine описывает интерфейс движка обработки продаж.
type Engine interface {
	// CreateOrder валидирует запрос, резервирует остатки, считает цены
	// и фиксирует заказ. Заказ либо появляется целиком со списанными
	// остатками, либо не появляется вовсе.
	CreateOrder(ctx context.Context, input CreateOrderInput) (domain.Order, error)
	// CancelOrder переводит committed-заказ в cancelled и возвращает
	// остатки. Повторная отмена — ErrOrderNotCancellable.
	CancelOrder(ctx context.Context, orderID string) (domain.Order, error)
	// GetOrder возвращает заказ по идентификатору.
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	// ListOrders возвращает проекции заказов, новые первыми.
	ListOrders(ctx context.Context, limit int) ([]domain.OrderSummary, error)
}

// engine реализует последовательность сборки заказа:
// валидация → резервирование → расчёт цен → фиксация.
type engine struct {
	orders        domain.OrderRepository
	ledger        domain.ProductLedger
	catalog       domain.ProductCatalog
	directory     domain.PartyDirectory
	outbox        domain.OutboxRepository
	logger        *log.Entry
	metrics       *metrics.SalesMetrics
	kafkaProducer *kafka.Producer // опциональный Kafka producer для событийной интеграции
}

// NewEngine создаёт рабочий экземпляр движка продаж.
func NewEngine(
	orders domain.OrderRepository,
	ledger domain.ProductLedger,
	catalog domain.ProductCatalog,
	directory domain.PartyDirectory,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) Engine {
	if logger == nil {
		logger = log.New().WithField("component", "sales")
	}
	return &engine{
		orders:    orders,
		ledger:    ledger,
		catalog:   catalog,
		directory: directory,
		outbox:    outbox,
		logger:    logger,
		metrics:   metrics.NewSalesMetrics(),
	}
}

// NewEngineWithKafka создаёт движок с Kafka producer для событийной интеграции.
func NewEngineWithKafka(
	orders domain.OrderRepository,
	ledger domain.ProductLedger,
	catalog domain.ProductCatalog,
	directory domain.PartyDirectory,
	outbox domain.OutboxRepository,
	kafkaProducer *kafka.Producer,
	logger *log.Entry,
) Engine {
	if logger == nil {
		logger = log.New().WithField("component", "sales")
	}
	return &engine{
		orders:        orders,
		ledger:        ledger,
		catalog:       catalog,
		directory:     directory,
		outbox:        outbox,
		logger:        logger,
		metrics:       metrics.NewSalesMetrics(),
		kafkaProducer: kafkaProducer,
	}
}

// NewEngineWithoutMetrics создаёт движок без метрик (для тестов).
func NewEngineWithoutMetrics(
	orders domain.OrderRepository,
	ledger domain.ProductLedger,
	catalog domain.ProductCatalog,
	directory domain.PartyDirectory,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) Engine {
	if logger == nil {
		logger = log.New().WithField("component", "sales")
	}
	return &engine{
		orders:    orders,
		ledger:    ledger,
		catalog:   catalog,
		directory: directory,
		outbox:    outbox,
		logger:    logger,
		metrics:   nil,
	}
}

// CreateOrder собирает и фиксирует заказ. Проверки выполняются в строгом
// порядке, первая ошибка прерывает обработку: пустой заказ → количество →
// скидки → существование ссылок → остатки.
func (e *engine) CreateOrder(ctx context.Context, input CreateOrderInput) (domain.Order, error) {
	start := time.Now()
	defer func() {
		if e.metrics != nil {
			e.metrics.RecordCommitDuration(time.Since(start))
		}
	}()

	if err := e.validateInput(ctx, input); err != nil {
		return domain.Order{}, err
	}

	products, err := e.resolveProducts(ctx, input.Lines)
	if err != nil {
		e.reject(err)
		return domain.Order{}, err
	}

	reserved, err := e.reserveStock(ctx, input.Lines)
	if err != nil {
		e.reject(err)
		return domain.Order{}, err
	}

	order := e.assembleOrder(input, products)

	// Контроль структурных инвариантов перед фиксацией: валидация входа не
	// покрывает данные каталога (например, отрицательную цену на карточке).
	if violations := order.ValidateInvariants(); len(violations) > 0 {
		e.releaseReserved(ctx, reserved)
		err := errors.Join(violations...)
		e.reject(err)
		e.logger.WithError(err).WithField("order_id", order.ID).Error("assembled order violates invariants")
		return domain.Order{}, err
	}

	if err := e.orders.CreateCommitted(ctx, order); err != nil {
		// Фиксация не удалась: возвращаем весь резерв, заказа не существует.
		e.releaseReserved(ctx, reserved)
		e.reject(domain.ErrStorageCommit)
		e.logger.WithError(err).WithField("order_id", order.ID).Error("order commit failed")
		return domain.Order{}, fmt.Errorf("%w: %v", domain.ErrStorageCommit, err)
	}

	if e.metrics != nil {
		e.metrics.RecordOrderCommitted()
	}
	e.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"lines":    len(order.Lines),
		"total":    order.Total.StringFixed(2),
	}).Info("order committed")

	e.emitEvent(&order, string(kafka.EventTypeSaleCommitted), map[string]interface{}{
		"total":  order.Total.StringFixed(2),
		"status": string(order.Status),
	})
	e.publishSaleEvent(kafka.EventTypeSaleCommitted, &order, map[string]interface{}{
		"total": order.Total.StringFixed(2),
	})

	return order, nil
}

// CancelOrder отменяет заказ. Переход статуса и возврат остатков выполняет
// репозиторий одной атомарной операцией, поэтому отмена строго однократна.
func (e *engine) CancelOrder(ctx context.Context, orderID string) (domain.Order, error) {
	order, err := e.orders.CancelCommitted(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) || errors.Is(err, domain.ErrOrderNotCancellable) {
			e.logger.WithError(err).WithField("order_id", orderID).Warn("cancel rejected")
		} else {
			e.logger.WithError(err).WithField("order_id", orderID).Error("cancel failed")
		}
		return domain.Order{}, err
	}

	if e.metrics != nil {
		e.metrics.RecordOrderCancelled()
	}
	e.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"lines":    len(order.Lines),
	}).Info("order cancelled, stock restored")

	e.emitEvent(&order, string(kafka.EventTypeSaleCancelled), map[string]interface{}{
		"cancelled_at": order.CancelledAt.Format(time.RFC3339Nano),
	})
	e.publishSaleEvent(kafka.EventTypeSaleCancelled, &order, nil)

	return order, nil
}

func (e *engine) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return e.orders.Get(ctx, orderID)
}

func (e *engine) ListOrders(ctx context.Context, limit int) ([]domain.OrderSummary, error) {
	return e.orders.List(ctx, limit)
}

// validateInput выполняет быстрые проверки, не требующие резервирования.
func (e *engine) validateInput(ctx context.Context, input CreateOrderInput) error {
	if len(input.Lines) == 0 {
		e.reject(domain.ErrEmptyOrder)
		return domain.ErrEmptyOrder
	}

	for _, line := range input.Lines {
		if line.Qty <= 0 {
			e.reject(domain.ErrInvalidQuantity)
			return fmt.Errorf("%w: product %s qty %d", domain.ErrInvalidQuantity, line.ProductID, line.Qty)
		}
	}

	if !validPct(input.DiscountPct) {
		e.reject(domain.ErrInvalidDiscount)
		return fmt.Errorf("%w: order discount %s", domain.ErrInvalidDiscount, input.DiscountPct)
	}
	for _, line := range input.Lines {
		if !validPct(line.DiscountPct) {
			e.reject(domain.ErrInvalidDiscount)
			return fmt.Errorf("%w: product %s discount %s", domain.ErrInvalidDiscount, line.ProductID, line.DiscountPct)
		}
	}

	if input.CustomerID != "" {
		ok, err := e.directory.CustomerExists(ctx, input.CustomerID)
		if err != nil {
			return fmt.Errorf("check customer: %w", err)
		}
		if !ok {
			e.reject(domain.ErrCustomerNotFound)
			return fmt.Errorf("%w: %s", domain.ErrCustomerNotFound, input.CustomerID)
		}
	}
	if input.SalespersonID != "" {
		ok, err := e.directory.SalespersonExists(ctx, input.SalespersonID)
		if err != nil {
			return fmt.Errorf("check salesperson: %w", err)
		}
		if !ok {
			e.reject(domain.ErrSalespersonNotFound)
			return fmt.Errorf("%w: %s", domain.ErrSalespersonNotFound, input.SalespersonID)
		}
	}

	return nil
}

// resolveProducts загружает карточки товаров и снимает цены.
// Неактивный товар недоступен для продажи наравне с отсутствующим.
func (e *engine) resolveProducts(ctx context.Context, lines []LineRequest) (map[string]domain.Product, error) {
	products := make(map[string]domain.Product, len(lines))
	for _, line := range lines {
		if _, seen := products[line.ProductID]; seen {
			continue
		}
		product, err := e.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, line.ProductID)
			}
			return nil, fmt.Errorf("load product %s: %w", line.ProductID, err)
		}
		if !product.Active {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, line.ProductID)
		}
		products[line.ProductID] = product
	}
	return products, nil
}

// reservation фиксирует выполненное списание для последующей компенсации.
type reservation struct {
	productID string
	qty       int32
}

// reserveStock списывает остатки по каждому товару. Дубликаты позиций
// агрегируются, товары обходятся в возрастающем порядке идентификаторов,
// чтобы конкурентные заказы не взаимоблокировались. При первой неудаче
// уже выполненные списания возвращаются в обратном порядке.
func (e *engine) reserveStock(ctx context.Context, lines []LineRequest) ([]reservation, error) {
	needed := make(map[string]int32, len(lines))
	for _, line := range lines {
		needed[line.ProductID] += line.Qty
	}

	productIDs := make([]string, 0, len(needed))
	for id := range needed {
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	reserved := make([]reservation, 0, len(productIDs))
	for _, id := range productIDs {
		if err := e.ledger.Reserve(ctx, id, needed[id]); err != nil {
			e.releaseReserved(ctx, reserved)
			if domain.IsInsufficientStock(err) && e.metrics != nil {
				e.metrics.RecordStockShortage()
			}
			return nil, err
		}
		reserved = append(reserved, reservation{productID: id, qty: needed[id]})
	}
	return reserved, nil
}

// releaseReserved возвращает списанные остатки в обратном порядке.
func (e *engine) releaseReserved(ctx context.Context, reserved []reservation) {
	for i := len(reserved) - 1; i >= 0; i-- {
		r := reserved[i]
		if err := e.ledger.Release(ctx, r.productID, r.qty); err != nil {
			e.logger.WithError(err).WithFields(log.Fields{
				"product_id": r.productID,
				"qty":        r.qty,
			}).Error("compensating release failed")
			continue
		}
		if e.metrics != nil {
			e.metrics.RecordReserveRollback()
		}
	}
}

// assembleOrder строит заказ с зафиксированными ценами и рассчитанными
// суммами. Итог заказа считается по уже округлённым суммам позиций, поэтому
// перерасчёт по сохранённым данным всегда даёт тот же результат.
func (e *engine) assembleOrder(input CreateOrderInput, products map[string]domain.Product) domain.Order {
	now := time.Now().UTC()

	orderLines := make([]domain.OrderLine, 0, len(input.Lines))
	subtotals := make([]decimal.Decimal, 0, len(input.Lines))
	for _, line := range input.Lines {
		product := products[line.ProductID]
		subtotal := pricing.LineSubtotal(product.UnitPrice, line.Qty, line.DiscountPct)
		orderLines = append(orderLines, domain.OrderLine{
			ID:          uuid.NewString(),
			ProductID:   line.ProductID,
			Qty:         line.Qty,
			UnitPrice:   product.UnitPrice,
			DiscountPct: line.DiscountPct,
			Subtotal:    subtotal,
		})
		subtotals = append(subtotals, subtotal)
	}

	return domain.Order{
		ID:            uuid.NewString(),
		CustomerID:    input.CustomerID,
		SalespersonID: input.SalespersonID,
		Status:        domain.OrderStatusCommitted,
		DiscountPct:   input.DiscountPct,
		Total:         pricing.OrderTotal(subtotals, input.DiscountPct),
		Lines:         orderLines,
		CreatedAt:     now,
	}
}

// reject увеличивает счётчик отклонённых запросов по доменной причине.
func (e *engine) reject(err error) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordOrderRejected(rejectionReason(err))
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyOrder):
		return "empty_order"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, domain.ErrInvalidDiscount):
		return "invalid_discount"
	case errors.Is(err, domain.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, domain.ErrCustomerNotFound):
		return "customer_not_found"
	case errors.Is(err, domain.ErrSalespersonNotFound):
		return "salesperson_not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrStorageCommit):
		return "storage_commit"
	default:
		return "internal"
	}
}

func validPct(pct decimal.Decimal) bool {
	return !pct.IsNegative() && pct.LessThanOrEqual(decimal.NewFromInt(100))
}

// emitEvent кладёт событие в transactional outbox.
func (e *engine) emitEvent(order *domain.Order, eventType string, payload map[string]interface{}) {
	if e.outbox == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	payload["order_id"] = order.ID
	data, err := json.Marshal(payload)
	if err != nil {
		e.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"event":    eventType,
		}).Error("marshal event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "sale",
		AggregateID:   order.ID,
		EventType:     eventType,
		Payload:       data,
	}
	if _, err := e.outbox.Enqueue(msg); err != nil {
		e.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"event":    eventType,
		}).Error("enqueue event failed")
	} else if e.metrics != nil {
		e.metrics.RecordOutboxEvent()
	}
}

// publishSaleEvent публикует событие продажи в Kafka (если producer настроен).
func (e *engine) publishSaleEvent(eventType kafka.EventType, order *domain.Order, metadata map[string]interface{}) {
	if e.kafkaProducer == nil {
		return
	}

	event := kafka.NewSaleEvent(eventType, order.ID, order.CustomerID, string(order.Status), metadata)
	if err := e.kafkaProducer.PublishEvent(kafka.TopicSaleEvents, order.ID, string(eventType), event); err != nil {
		// Kafka опциональна: ошибку логируем, обработку не прерываем.
		e.logger.WithError(err).WithFields(log.Fields{
			"event_type": eventType,
			"order_id":   order.ID,
		}).Warn("failed to publish sale event to kafka")
	}
}

var _ Engine = (*engine)(nil)
