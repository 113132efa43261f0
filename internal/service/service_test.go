package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/medaimane/AthleticEdge/internal/entity"
	"github.com/medaimane/AthleticEdge/internal/metrics"
	"github.com/medaimane/AthleticEdge/internal/repository"
	"github.com/medaimane/AthleticEdge/internal/repository/memory"
)

type published struct {
	topic string
	key   string
	event any
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (p *fakePublisher) PublishEvent(ctx context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{topic: topic, key: key, event: event})
	return nil
}

func (p *fakePublisher) messages() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.sent...)
}

type fixture struct {
	catalog     *CatalogService
	carts       *CartService
	orders      *OrderService
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	publisher   *fakePublisher
	metrics     *metrics.Registry
}

var testTopics = Topics{OrderPlaced: "orders.placed", OrderStatus: "orders.status"}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	products := memory.NewProductRepository()
	require.NoError(t, products.Seed(context.Background(), repository.SeedProducts()))

	m := metrics.NewRegistry()
	pub := &fakePublisher{}
	orderRepo := memory.NewOrderRepository()
	carts := NewCartService(memory.NewCartRepository(), products, m)
	orders := NewOrderService(orderRepo, products, memory.NewEventStore(), carts, pub, m, testTopics)

	var seq int
	orders.newID = func() string {
		seq++
		return fmt.Sprintf("ord-%03d", seq)
	}
	clock := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	orders.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	return &fixture{
		catalog:     NewCatalogService(products),
		carts:       carts,
		orders:      orders,
		orderRepo:   orderRepo,
		productRepo: products,
		publisher:   pub,
		metrics:     m,
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func shipping() entity.ShippingDetails {
	return entity.ShippingDetails{
		FirstName: "Jamie", LastName: "Rivera", Email: "jamie@example.com", Phone: "5551234567",
		Address: "12 Track Lane", City: "Portland", State: "OR", PostalCode: "97201", Country: "US",
	}
}

func payment() *entity.PaymentDetails {
	return &entity.PaymentDetails{CardNumber: "4111111111111111", NameOnCard: "Jamie Rivera", ExpiryDate: "12/29", CVV: "123"}
}

func decodePlaced(t *testing.T, event any) entity.OrderPlaced {
	t.Helper()
	raw, err := json.Marshal(event)
	require.NoError(t, err)
	var placed entity.OrderPlaced
	require.NoError(t, json.Unmarshal(raw, &placed))
	return placed
}

var errBroker = errors.New("broker down")
