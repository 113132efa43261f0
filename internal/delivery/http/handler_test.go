package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medaimane/AthleticEdge/internal/entity"
	"github.com/medaimane/AthleticEdge/internal/metrics"
	"github.com/medaimane/AthleticEdge/internal/repository/memory"
	"github.com/medaimane/AthleticEdge/internal/service"
)

type discardPublisher struct{}

func (discardPublisher) PublishEvent(ctx context.Context, topic, key string, event any) error {
	return nil
}

func newTestServer(t *testing.T) (http.Handler, *metrics.Registry) {
	t.Helper()
	products := memory.NewProductRepository()
	catalog := service.NewCatalogService(products)
	require.NoError(t, catalog.Seed(context.Background()))

	m := metrics.NewRegistry()
	carts := service.NewCartService(memory.NewCartRepository(), products, m)
	orders := service.NewOrderService(memory.NewOrderRepository(), products, memory.NewEventStore(), carts, discardPublisher{}, m,
		service.Topics{OrderPlaced: "orders.placed", OrderStatus: "orders.status"})

	mux := http.NewServeMux()
	NewHandler(catalog, carts, orders).RegisterRoutes(mux)
	return Instrument(m, EnableCORS(mux)), m
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func TestCatalogRoutes(t *testing.T) {
	h, _ := newTestServer(t)

	tests := []struct {
		path  string
		count int
	}{
		{"/api/products", 12},
		{"/api/products/category/kids", 1},
		{"/api/products/brand/Adidas", 3},
		{"/api/featured-products", 5},
		{"/api/search?q=running", 0},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.path, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			products := decode[[]entity.Product](t, rec)
			if tt.count > 0 {
				assert.Len(t, products, tt.count)
			} else {
				assert.NotEmpty(t, products)
			}
		})
	}
}

func TestGetProduct(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/products/prod-007", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[entity.Product](t, rec)
	assert.True(t, decimal.RequireFromString("24.99").Equal(p.EffectivePrice()))

	rec = do(t, h, http.MethodGet, "/api/products/prod-999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Message, "prod-999")
}

func TestSearchRequiresQuery(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/search?q=", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Errors, "q")
}

func TestCartFlow(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/cart/sess-1/items", cartItemRequest{ProductID: "prod-007", Quantity: 2, Size: "M"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/cart/sess-1/items", cartItemRequest{ProductID: "prod-010", Quantity: 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	cart := decode[cartResponse](t, rec)
	assert.Equal(t, 3, cart.ItemCount)
	assert.True(t, decimal.RequireFromString("95.97").Equal(cart.Subtotal), cart.Subtotal.String())

	rec = do(t, h, http.MethodPut, "/api/cart/sess-1/items", cartItemRequest{ProductID: "prod-007", Size: "M", Quantity: 1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[cartResponse](t, rec).ItemCount)

	rec = do(t, h, http.MethodPut, "/api/cart/sess-1/items", cartItemRequest{ProductID: "prod-007", Size: "L", Quantity: 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/cart/sess-1/items?product_id=prod-010", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[cartResponse](t, rec).ItemCount)

	rec = do(t, h, http.MethodDelete, "/api/cart/sess-1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/cart/sess-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cart = decode[cartResponse](t, rec)
	assert.Empty(t, cart.Items)
	assert.NotNil(t, cart.Items)
	assert.True(t, cart.Subtotal.IsZero())
}

func TestCartRejections(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/cart/sess-1/items", cartItemRequest{ProductID: "prod-001", Quantity: 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Errors, "quantity")

	rec = do(t, h, http.MethodPost, "/api/cart/sess-1/items", cartItemRequest{ProductID: "prod-404", Quantity: 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/cart/sess-1/items", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cart/sess-1/items", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOversizedBodyIsRejected(t *testing.T) {
	h, _ := newTestServer(t)

	body := `{"product_id": "prod-010", "quantity": 1, "color": "` + strings.Repeat("x", maxBodyBytes) + `"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cart/sess-1/items", strings.NewReader(body)))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Message, "exceeds")

	rec = do(t, h, http.MethodGet, "/api/cart/sess-1", nil)
	assert.Empty(t, decode[cartResponse](t, rec).Items)
}

func orderRequest() service.PlaceOrderRequest {
	return service.PlaceOrderRequest{
		UserID:    "u1",
		CartOwner: "sess-1",
		Shipping: entity.ShippingDetails{
			FirstName: "Jamie", LastName: "Rivera", Email: "jamie@example.com", Phone: "5551234567",
			Address: "12 Track Lane", City: "Portland", State: "OR", PostalCode: "97201", Country: "US",
		},
		ShippingTier: entity.ShippingExpress,
		Payment:      &entity.PaymentDetails{CardNumber: "4111111111111111", ExpiryDate: "01/30", CVV: "4321"},
	}
}

func TestOrderFlow(t *testing.T) {
	h, m := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/cart/sess-1/items", cartItemRequest{ProductID: "prod-011", Quantity: 1, Size: "10"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/orders", orderRequest())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[entity.Order](t, rec)
	// 249.99 + 30.00 + 25.00
	assert.True(t, decimal.RequireFromString("304.99").Equal(order.Total), order.Total.String())
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	require.NotNil(t, order.Payment)
	assert.Equal(t, "1111", order.Payment.CardLast4)
	assert.NotContains(t, rec.Body.String(), "4111111111111111")
	assert.NotContains(t, rec.Body.String(), "4321")

	rec = do(t, h, http.MethodGet, "/api/orders/"+order.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[entity.Order](t, rec).Items, 1)

	rec = do(t, h, http.MethodGet, "/api/orders/user/u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]entity.Order](t, rec), 1)

	rec = do(t, h, http.MethodPut, "/api/orders/"+order.ID+"/status", updateStatusRequest{Status: entity.OrderStatusShipped})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.OrderStatusShipped, decode[entity.Order](t, rec).Status)

	rec = do(t, h, http.MethodPut, "/api/orders/"+order.ID+"/status", updateStatusRequest{Status: "lost"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/orders/"+order.ID+"/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[[]eventResponse](t, rec)
	require.Len(t, events, 2)
	assert.Equal(t, "OrderPlaced", events[0].EventType)
	assert.Equal(t, 2, events[1].Version)

	rec = do(t, h, http.MethodGet, "/api/cart/sess-1", nil)
	assert.Empty(t, decode[cartResponse](t, rec).Items)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersPlaced))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "201")))
}

func TestOrderRejections(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/orders", orderRequest())
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "cart is empty", decode[errorResponse](t, rec).Message)

	req := orderRequest()
	req.CartOwner = ""
	req.Items = []service.OrderItemInput{{ProductID: "prod-010", Quantity: 1}}
	req.Payment.ExpiryDate = "13/30"
	rec = do(t, h, http.MethodPost, "/api/orders", req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Errors, "expiry_date")

	rec = do(t, h, http.MethodGet, "/api/orders/ord-missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/orders/ord-missing/events", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/orders/ord-missing/audit", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/orders/user/nobody", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodOptions, "/api/orders", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

func TestHealthz(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
