package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/GabrielMottaBecker/vendify/internal/domain"
	"github.com/GabrielMottaBecker/vendify/internal/service/reports"
	"github.com/GabrielMottaBecker/vendify/internal/service/sales"
)

const defaultListLimit = 50

// Handler обслуживает HTTP-запросы back-office: заказы, товары, отчёты.
type Handler struct {
	engine  sales.Engine
	catalog domain.ProductCatalog
	reports *reports.Service
	logger  *log.Entry
}

// NewHandler создаёт HTTP-обработчик поверх движка продаж.
func NewHandler(engine sales.Engine, catalog domain.ProductCatalog, reportsService *reports.Service, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "http")
	}
	return &Handler{
		engine:  engine,
		catalog: catalog,
		reports: reportsService,
		logger:  logger,
	}
}

// CreateOrder принимает запрос на продажу и фиксирует заказ.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	lines := make([]sales.LineRequest, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, sales.LineRequest{
			ProductID:   line.ProductID,
			Qty:         line.Qty,
			DiscountPct: line.DiscountPct,
		})
	}

	order, err := h.engine.CreateOrder(r.Context(), sales.CreateOrderInput{
		CustomerID:    req.CustomerID,
		SalespersonID: req.SalespersonID,
		DiscountPct:   req.DiscountPct,
		Lines:         lines,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapOrderToResponse(order))
}

// GetOrder возвращает заказ по идентификатору.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	order, err := h.engine.GetOrder(r.Context(), orderID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// ListOrders возвращает проекции заказов, новые первыми.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	summaries, err := h.engine.ListOrders(r.Context(), limit)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	result := make([]OrderSummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		result = append(result, mapSummaryToResponse(summary))
	}
	writeJSON(w, http.StatusOK, result)
}

// CancelOrder отменяет заказ и возвращает остатки.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	order, err := h.engine.CancelOrder(r.Context(), orderID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// RejectOrderUpdate отвечает на попытки изменить зафиксированный заказ.
// Заказы неизменяемы: допустима только отмена.
func (h *Handler) RejectOrderUpdate(w http.ResponseWriter, r *http.Request) {
	h.writeDomainError(w, domain.ErrOrderImmutable)
}

// GetProduct возвращает карточку товара.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	product, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ProductResponse{
		ID:          product.ID,
		Description: product.Description,
		UnitPrice:   product.UnitPrice.StringFixed(2),
		OnHand:      product.OnHand,
		Active:      product.Active,
	})
}

// GetSummary возвращает сводку продаж для главного экрана.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reports.Summary(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("summary report failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	recent := make([]OrderSummaryResponse, 0, len(summary.RecentSales))
	for _, sale := range summary.RecentSales {
		recent = append(recent, mapSummaryToResponse(sale))
	}

	lowStock := make([]StockLevelResponse, 0, len(summary.LowStock))
	for _, level := range summary.LowStock {
		lowStock = append(lowStock, StockLevelResponse{
			ProductID:   level.ProductID,
			Description: level.Description,
			OnHand:      level.OnHand,
			UnitsSold:   level.UnitsSold,
		})
	}

	writeJSON(w, http.StatusOK, SummaryResponse{
		CommittedValue: summary.Totals.CommittedValue.StringFixed(2),
		CommittedCount: summary.Totals.CommittedCount,
		CancelledCount: summary.Totals.CancelledCount,
		RecentSales:    recent,
		LowStock:       lowStock,
	})
}

// writeDomainError переводит доменные ошибки в HTTP-статусы.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	status, code := mapDomainError(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).Error("request failed")
	}

	resp := ErrorResponse{
		Error:   code,
		Message: err.Error(),
	}
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		resp.ProductID = stockErr.ProductID
		resp.Requested = stockErr.Requested
		resp.Available = stockErr.Available
	}
	writeJSON(w, status, resp)
}

func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrEmptyOrder):
		return http.StatusBadRequest, "empty_order"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusBadRequest, "invalid_quantity"
	case errors.Is(err, domain.ErrInvalidDiscount):
		return http.StatusBadRequest, "invalid_discount"
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, "product_not_found"
	case errors.Is(err, domain.ErrCustomerNotFound):
		return http.StatusNotFound, "customer_not_found"
	case errors.Is(err, domain.ErrSalespersonNotFound):
		return http.StatusNotFound, "salesperson_not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict, "insufficient_stock"
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, "order_not_found"
	case errors.Is(err, domain.ErrOrderImmutable):
		return http.StatusConflict, "order_immutable"
	case errors.Is(err, domain.ErrOrderNotCancellable):
		return http.StatusConflict, "order_not_cancellable"
	case errors.Is(err, domain.ErrStorageCommit):
		return http.StatusServiceUnavailable, "storage_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func mapOrderToResponse(order domain.Order) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, OrderLineResponse{
			ID:          line.ID,
			ProductID:   line.ProductID,
			Qty:         line.Qty,
			UnitPrice:   line.UnitPrice.StringFixed(2),
			DiscountPct: line.DiscountPct.String(),
			Subtotal:    line.Subtotal.StringFixed(2),
		})
	}

	resp := OrderResponse{
		ID:            order.ID,
		CustomerID:    order.CustomerID,
		SalespersonID: order.SalespersonID,
		Status:        string(order.Status),
		DiscountPct:   order.DiscountPct.String(),
		Total:         order.Total.StringFixed(2),
		Lines:         lines,
		CreatedAt:     order.CreatedAt.Format(time.RFC3339Nano),
	}
	if !order.CancelledAt.IsZero() {
		resp.CancelledAt = order.CancelledAt.Format(time.RFC3339Nano)
	}
	return resp
}

func mapSummaryToResponse(summary domain.OrderSummary) OrderSummaryResponse {
	return OrderSummaryResponse{
		ID:         summary.ID,
		CustomerID: summary.CustomerID,
		Status:     string(summary.Status),
		Total:      summary.Total.StringFixed(2),
		CreatedAt:  summary.CreatedAt.Format(time.RFC3339Nano),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
