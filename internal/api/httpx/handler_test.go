package httpx_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/GabrielMottaBecker/vendify/internal/api/httpx"
	"github.com/GabrielMottaBecker/vendify/internal/domain"
	"github.com/GabrielMottaBecker/vendify/internal/service/reports"
	"github.com/GabrielMottaBecker/vendify/internal/service/sales"
	"github.com/GabrielMottaBecker/vendify/internal/storage/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	products := memory.NewProductStore()
	products.Put(domain.Product{
		ID:          "product-1",
		Description: "notebook",
		UnitPrice:   decimal.RequireFromString("10.00"),
		OnHand:      10,
		Active:      true,
	})
	products.Put(domain.Product{
		ID:          "product-2",
		Description: "pen",
		UnitPrice:   decimal.RequireFromString("2.50"),
		OnHand:      2,
		Active:      true,
	})

	orders := memory.NewOrderRepository(products)
	directory := memory.NewDirectory()
	directory.AddCustomer("customer-1")
	directory.AddSalesperson("sales-1")
	outbox := memory.NewOutboxRepository()

	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	entry := logger.WithField("component", "httpx-test")

	engine := sales.NewEngineWithoutMetrics(orders, products, products, directory, outbox, entry)
	reportsService := reports.NewService(memory.NewReportSource(products, orders), entry)
	handler := httpx.NewHandler(engine, products, reportsService, entry)

	server := httptest.NewServer(httpx.NewRouter(handler))
	t.Cleanup(server.Close)
	return server
}

func createOrderRequest() string {
	return `{
		"customer_id": "customer-1",
		"salesperson_id": "sales-1",
		"discount_pct": 0,
		"lines": [
			{"product_id": "product-1", "qty": 5, "discount_pct": 10}
		]
	}`
}

func postOrder(t *testing.T, server *httptest.Server, body string) (*http.Response, map[string]any) {
	t.Helper()

	resp, err := http.Post(server.URL+"/orders", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestCreateOrderEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, body := postOrder(t, server, createOrderRequest())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.NotEmpty(t, body["id"])
	require.Equal(t, "committed", body["status"])
	require.Equal(t, "45.00", body["total"])

	lines, ok := body["lines"].([]any)
	require.True(t, ok)
	require.Len(t, lines, 1)
	line := lines[0].(map[string]any)
	require.Equal(t, "product-1", line["product_id"])
	require.Equal(t, "45.00", line["subtotal"])
}

func TestCreateOrderEndpoint_InvalidJSON(t *testing.T) {
	server := newTestServer(t)

	resp, body := postOrder(t, server, `{"lines": [`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "invalid_json", body["error"])
}

func TestCreateOrderEndpoint_DomainErrors(t *testing.T) {
	server := newTestServer(t)

	cases := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			"empty order",
			`{"lines": []}`,
			http.StatusBadRequest, "empty_order",
		},
		{
			"invalid quantity",
			`{"lines": [{"product_id": "product-1", "qty": 0}]}`,
			http.StatusBadRequest, "invalid_quantity",
		},
		{
			"invalid discount",
			`{"lines": [{"product_id": "product-1", "qty": 1, "discount_pct": 101}]}`,
			http.StatusBadRequest, "invalid_discount",
		},
		{
			"unknown product",
			`{"lines": [{"product_id": "missing", "qty": 1}]}`,
			http.StatusNotFound, "product_not_found",
		},
		{
			"unknown customer",
			`{"customer_id": "nobody", "lines": [{"product_id": "product-1", "qty": 1}]}`,
			http.StatusNotFound, "customer_not_found",
		},
		{
			"insufficient stock",
			`{"lines": [{"product_id": "product-2", "qty": 3}]}`,
			http.StatusConflict, "insufficient_stock",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := postOrder(t, server, tc.body)
			require.Equal(t, tc.wantStatus, resp.StatusCode)
			require.Equal(t, tc.wantCode, body["error"])
		})
	}
}

func TestCreateOrderEndpoint_InsufficientStockDetail(t *testing.T) {
	server := newTestServer(t)

	resp, body := postOrder(t, server, `{"lines": [{"product_id": "product-2", "qty": 5}]}`)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "insufficient_stock", body["error"])
	require.Equal(t, "product-2", body["product_id"])
	require.EqualValues(t, 5, body["requested"])
	require.EqualValues(t, 2, body["available"])
}

func TestGetOrderEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, created := postOrder(t, server, createOrderRequest())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := created["id"].(string)

	getResp, err := http.Get(server.URL + "/orders/" + orderID)
	require.NoError(t, err)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&body))
	require.Equal(t, orderID, body["id"])

	missingResp, err := http.Get(server.URL + "/orders/missing")
	require.NoError(t, err)
	defer missingResp.Body.Close()
	require.Equal(t, http.StatusNotFound, missingResp.StatusCode)
}

func TestListOrdersEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, _ := postOrder(t, server, createOrderRequest())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	listResp, err := http.Get(server.URL + "/orders?limit=10")
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var summaries []map[string]any
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&summaries))
	require.Len(t, summaries, 1)
	require.Equal(t, "45.00", summaries[0]["total"])

	badResp, err := http.Get(server.URL + "/orders?limit=abc")
	require.NoError(t, err)
	defer badResp.Body.Close()
	require.Equal(t, http.StatusBadRequest, badResp.StatusCode)
}

func TestCancelOrderEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, created := postOrder(t, server, createOrderRequest())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := created["id"].(string)

	cancelResp, err := http.Post(server.URL+"/orders/"+orderID+"/cancel", "application/json", nil)
	require.NoError(t, err)
	defer cancelResp.Body.Close()
	require.Equal(t, http.StatusOK, cancelResp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(cancelResp.Body).Decode(&body))
	require.Equal(t, "cancelled", body["status"])
	require.NotEmpty(t, body["cancelled_at"])

	againResp, err := http.Post(server.URL+"/orders/"+orderID+"/cancel", "application/json", nil)
	require.NoError(t, err)
	defer againResp.Body.Close()
	require.Equal(t, http.StatusConflict, againResp.StatusCode)

	var againBody map[string]any
	require.NoError(t, json.NewDecoder(againResp.Body).Decode(&againBody))
	require.Equal(t, "order_not_cancellable", againBody["error"])
}

func TestOrderUpdateRejected(t *testing.T) {
	server := newTestServer(t)

	resp, created := postOrder(t, server, createOrderRequest())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := created["id"].(string)

	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		req, err := http.NewRequest(method, server.URL+"/orders/"+orderID, strings.NewReader(`{}`))
		require.NoError(t, err)

		updateResp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer updateResp.Body.Close()
		require.Equal(t, http.StatusConflict, updateResp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(updateResp.Body).Decode(&body))
		require.Equal(t, "order_immutable", body["error"])
		require.Equal(t, domain.ErrOrderImmutable.Error(), body["message"])
	}
}

func TestGetProductEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/products/product-1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "notebook", body["description"])
	require.Equal(t, "10.00", body["unit_price"])
	require.EqualValues(t, 10, body["on_hand"])

	missingResp, err := http.Get(server.URL + "/products/missing")
	require.NoError(t, err)
	defer missingResp.Body.Close()
	require.Equal(t, http.StatusNotFound, missingResp.StatusCode)
}

func TestSummaryEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, _ := postOrder(t, server, createOrderRequest())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	summaryResp, err := http.Get(server.URL + "/reports/summary")
	require.NoError(t, err)
	defer summaryResp.Body.Close()
	require.Equal(t, http.StatusOK, summaryResp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(summaryResp.Body).Decode(&body))
	require.Equal(t, "45.00", body["committed_value"])
	require.EqualValues(t, 1, body["committed_count"])
	require.EqualValues(t, 0, body["cancelled_count"])

	recent, ok := body["recent_sales"].([]any)
	require.True(t, ok)
	require.Len(t, recent, 1)

	lowStock, ok := body["low_stock"].([]any)
	require.True(t, ok)
	require.Len(t, lowStock, 2)
	first := lowStock[0].(map[string]any)
	require.Equal(t, "product-2", first["product_id"])
}
