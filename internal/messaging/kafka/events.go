package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// События жизненного цикла продажи
	EventTypeSaleCommitted EventType = "sale.committed"
	EventTypeSaleCancelled EventType = "sale.cancelled"
	EventTypeSaleRejected  EventType = "sale.rejected"

	// События склада
	EventTypeStockReserved EventType = "stock.reserved"
	EventTypeStockReleased EventType = "stock.released"
)

// Topics для Kafka
const (
	TopicSaleEvents      = "vendify.sale.events"
	TopicStockEvents     = "vendify.stock.events"
	TopicDeadLetterQueue = "vendify.dlq" // события, не доставленные после retry
)

// SaleEvent представляет событие продажи
type SaleEvent struct {
	EventType  EventType              `json:"event_type"`
	OrderID    string                 `json:"order_id"`
	CustomerID string                 `json:"customer_id,omitempty"`
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// StockEvent представляет событие изменения остатка
type StockEvent struct {
	EventType EventType `json:"event_type"`
	ProductID string    `json:"product_id"`
	Qty       int32     `json:"qty"`
	OrderID   string    `json:"order_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSaleEvent создает новое событие продажи
func NewSaleEvent(eventType EventType, orderID, customerID, status string, metadata map[string]interface{}) *SaleEvent {
	return &SaleEvent{
		EventType:  eventType,
		OrderID:    orderID,
		CustomerID: customerID,
		Status:     status,
		Timestamp:  time.Now(),
		Metadata:   metadata,
	}
}

// NewStockEvent создает новое событие остатка
func NewStockEvent(eventType EventType, productID string, qty int32, orderID string) *StockEvent {
	return &StockEvent{
		EventType: eventType,
		ProductID: productID,
		Qty:       qty,
		OrderID:   orderID,
		Timestamp: time.Now(),
	}
}
