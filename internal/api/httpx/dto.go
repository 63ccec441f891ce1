package httpx

import "github.com/shopspring/decimal"

type CreateOrderRequest struct {
	CustomerID    string               `json:"customer_id"`
	SalespersonID string               `json:"salesperson_id"`
	DiscountPct   decimal.Decimal      `json:"discount_pct"`
	Lines         []CreateOrderLineDTO `json:"lines"`
}

type CreateOrderLineDTO struct {
	ProductID   string          `json:"product_id"`
	Qty         int32           `json:"qty"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	CustomerID    string              `json:"customer_id,omitempty"`
	SalespersonID string              `json:"salesperson_id,omitempty"`
	Status        string              `json:"status"`
	DiscountPct   string              `json:"discount_pct"`
	Total         string              `json:"total"`
	Lines         []OrderLineResponse `json:"lines"`
	CreatedAt     string              `json:"created_at"`
	CancelledAt   string              `json:"cancelled_at,omitempty"`
}

type OrderLineResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	Qty         int32  `json:"qty"`
	UnitPrice   string `json:"unit_price"`
	DiscountPct string `json:"discount_pct"`
	Subtotal    string `json:"subtotal"`
}

type OrderSummaryResponse struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id,omitempty"`
	Status     string `json:"status"`
	Total      string `json:"total"`
	CreatedAt  string `json:"created_at"`
}

type ProductResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	UnitPrice   string `json:"unit_price"`
	OnHand      int32  `json:"on_hand"`
	Active      bool   `json:"active"`
}

type SummaryResponse struct {
	CommittedValue string                 `json:"committed_value"`
	CommittedCount int64                  `json:"committed_count"`
	CancelledCount int64                  `json:"cancelled_count"`
	RecentSales    []OrderSummaryResponse `json:"recent_sales"`
	LowStock       []StockLevelResponse   `json:"low_stock"`
}

type StockLevelResponse struct {
	ProductID   string `json:"product_id"`
	Description string `json:"description"`
	OnHand      int32  `json:"on_hand"`
	UnitsSold   int64  `json:"units_sold"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`

	// Заполняются только для insufficient_stock.
	ProductID string `json:"product_id,omitempty"`
	Requested int32  `json:"requested,omitempty"`
	Available int32  `json:"available,omitempty"`
}
