package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/medaimane/AthleticEdge/internal/entity"
	"github.com/medaimane/AthleticEdge/internal/messaging"
	"github.com/medaimane/AthleticEdge/internal/metrics"
	"github.com/medaimane/AthleticEdge/internal/repository"
)

// Topics names the broker topics the order service publishes to.
type Topics struct {
	OrderPlaced string
	OrderStatus string
}

// OrderItemInput is an inline order line. Only the product reference and the
// selection come from the client; the price is always read from the catalog.
type OrderItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

// PlaceOrderRequest places an order either from the server-side cart of
// CartOwner or from Items, never both.
type PlaceOrderRequest struct {
	UserID       string                 `json:"user_id,omitempty"`
	CartOwner    string                 `json:"cart_owner,omitempty"`
	Items        []OrderItemInput       `json:"items,omitempty"`
	Shipping     entity.ShippingDetails `json:"shipping_details"`
	ShippingTier entity.ShippingTier    `json:"shipping_tier"`
	Payment      *entity.PaymentDetails `json:"payment_details,omitempty"`
}

// OrderService orchestrates order-related business logic.
type OrderService struct {
	orders     repository.OrderRepository
	products   repository.ProductRepository
	eventStore repository.EventStore
	carts      *CartService
	publisher  messaging.Publisher
	metrics    *metrics.Registry
	topics     Topics

	now   func() time.Time
	newID func() string
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	eventStore repository.EventStore,
	carts *CartService,
	publisher messaging.Publisher,
	m *metrics.Registry,
	topics Topics,
) *OrderService {
	return &OrderService{
		orders:     orders,
		products:   products,
		eventStore: eventStore,
		carts:      carts,
		publisher:  publisher,
		metrics:    m,
		topics:     topics,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

// PlaceOrder validates and prices the request, stores the order with its
// OrderPlaced event and publishes the event. A cart used for the order is
// cleared afterwards.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*entity.Order, error) {
	if req.CartOwner != "" && len(req.Items) > 0 {
		return nil, s.rejected(&entity.ValidationError{
			Message: "provide either cart_owner or items",
			Fields:  map[string]string{"items": "must be empty when cart_owner is set"},
		})
	}

	var order *entity.Order
	place := func(cart entity.Cart) error {
		o, err := entity.AssembleOrder(entity.PlaceOrder{
			UserID:   req.UserID,
			Cart:     cart,
			Shipping: req.Shipping,
			Tier:     req.ShippingTier,
			Payment:  req.Payment,
		}, s.newID(), s.now())
		if err != nil {
			return s.rejected(err)
		}
		if err := s.save(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	}

	if req.CartOwner != "" {
		if err := s.carts.checkout(ctx, req.CartOwner, place); err != nil {
			return nil, err
		}
	} else {
		cart, err := s.inlineCart(ctx, req)
		if err != nil {
			return nil, err
		}
		if err := place(cart); err != nil {
			return nil, err
		}
	}

	slog.Info("Order placed", "order_id", order.ID, "user_id", order.UserID, "items", len(order.Items), "total", order.Total)
	s.metrics.OrdersPlaced.Inc()
	s.metrics.OrderRevenue.Add(order.Total.InexactFloat64())
	s.publish(ctx, s.topics.OrderPlaced, order.ID, entity.NewOrderPlaced(order))
	return order, nil
}

func (s *OrderService) inlineCart(ctx context.Context, req PlaceOrderRequest) (entity.Cart, error) {
	cart := entity.NewCart(req.UserID)
	for i, item := range req.Items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if entity.IsNotFound(err) {
			return cart, s.rejected(&entity.ValidationError{
				Message: "unknown product",
				Fields:  map[string]string{fmt.Sprintf("items[%d].product_id", i): "not in catalog"},
			})
		}
		if err != nil {
			return cart, err
		}
		if cart, err = cart.Add(*product, item.Quantity, item.Size, item.Color); err != nil {
			return cart, s.rejected(err)
		}
	}
	return cart, nil
}

// save writes the order and then opens its stream with OrderPlaced. A taken
// id fails on the order write. If the stream cannot be opened the order is
// removed again, so an order and its history always exist together.
func (s *OrderService) save(ctx context.Context, o *entity.Order) error {
	if err := s.orders.Create(ctx, o); err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	err := s.eventStore.SaveEvents(ctx, o.ID, entity.StreamTypeOrder, 0, []entity.Event{entity.NewOrderPlaced(o)})
	if err == nil {
		return nil
	}
	if delErr := s.orders.Delete(ctx, o.ID); delErr != nil {
		slog.Error("Failed to remove order after event write failed", "order_id", o.ID, "err", delErr)
	}
	return fmt.Errorf("failed to save OrderPlaced event: %w", err)
}

func (s *OrderService) rejected(err error) error {
	if entity.IsValidation(err) {
		s.metrics.ValidationFailures.WithLabelValues("place_order").Inc()
	}
	return err
}

func (s *OrderService) publish(ctx context.Context, topic, key string, event entity.Event) {
	if err := s.publisher.PublishEvent(ctx, topic, key, event); err != nil {
		slog.Error("Failed to publish event", "event", event.EventType(), "topic", topic, "order_id", key, "err", err)
		s.metrics.PublishFailures.WithLabelValues(topic).Inc()
		return
	}
	s.metrics.EventsPublished.WithLabelValues(topic).Inc()
}

// GetOrder returns an *entity.NotFoundError for unknown ids.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	return s.orders.FindByID(ctx, id)
}

// ListUserOrders returns the user's orders, newest first.
func (s *OrderService) ListUserOrders(ctx context.Context, userID string) ([]entity.Order, error) {
	if userID == "" {
		return nil, &entity.ValidationError{
			Message: "user id is required",
			Fields:  map[string]string{"user_id": "is required"},
		}
	}
	orders, err := s.orders.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []entity.Order{}
	}
	return orders, nil
}

// UpdateStatus sets any valid status. The change is appended to the order's
// stream at the version it was read at, so two racing updates cannot both
// win; the loser gets entity.ErrConcurrentUpdate.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) (*entity.Order, error) {
	if !status.Valid() {
		s.metrics.ValidationFailures.WithLabelValues("update_status").Inc()
		return nil, &entity.ValidationError{
			Message: "invalid order status",
			Fields:  map[string]string{"status": "must be one of pending, processing, shipped, delivered, cancelled"},
		}
	}

	records, err := s.eventStore.LoadEvents(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}
	agg := entity.NewOrderAggregate(id)
	if err := agg.Rehydrate(records); err != nil {
		return nil, fmt.Errorf("failed to rehydrate order aggregate: %w", err)
	}
	if !agg.Exists() {
		return nil, entity.NewNotFoundError("order", id)
	}
	if agg.Status == status {
		return s.orders.FindByID(ctx, id)
	}

	event := entity.OrderStatusChanged{OrderID: id, From: agg.Status, To: status, ChangedAt: s.now()}
	if err := s.eventStore.SaveEvents(ctx, id, entity.StreamTypeOrder, agg.GetVersion(), []entity.Event{event}); err != nil {
		return nil, fmt.Errorf("failed to save OrderStatusChanged event: %w", err)
	}
	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	slog.Info("Order status changed", "order_id", id, "from", event.From, "to", event.To)
	s.metrics.OrderStatusChanges.WithLabelValues(string(status)).Inc()
	s.publish(ctx, s.topics.OrderStatus, id, event)
	return s.orders.FindByID(ctx, id)
}

// History returns the order's event stream, oldest first.
func (s *OrderService) History(ctx context.Context, id string) ([]entity.EventStoreRecord, error) {
	records, err := s.eventStore.LoadEvents(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}
	if len(records) == 0 {
		return nil, entity.NewNotFoundError("order", id)
	}
	return records, nil
}

// HandleOrderPlaced consumes OrderPlaced from the broker and records the
// confirmation notice. It does not touch the order's status.
func (s *OrderService) HandleOrderPlaced(ctx context.Context, payload []byte) error {
	var event entity.OrderPlaced
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to unmarshal OrderPlaced: %w", err)
	}
	if event.OrderID == "" {
		return errors.New("OrderPlaced without order id")
	}

	slog.Info("Order confirmation sent",
		"order_id", event.OrderID,
		"email", event.Email,
		"total", event.Total,
		"items_count", len(event.Items),
	)
	s.metrics.EventsConsumed.WithLabelValues(s.topics.OrderPlaced).Inc()
	return nil
}
