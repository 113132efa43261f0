package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StreamTypeOrder tags order streams in the event store.
const StreamTypeOrder = "order"

// Event is a domain event that can be appended to a stream.
type Event interface {
	EventType() string
}

// EventStoreRecord is one persisted event. Versions within a stream start at
// 1 and have no gaps.
type EventStoreRecord struct {
	ID         string    `json:"id"`
	StreamID   string    `json:"stream_id"`
	StreamType string    `json:"stream_type"`
	Version    int       `json:"version"`
	EventType  string    `json:"event_type"`
	Payload    []byte    `json:"payload"`
	CreatedAt  time.Time `json:"created_at"`
}

// OrderPlaced is emitted once, when an order has been assembled and saved.
type OrderPlaced struct {
	OrderID      string          `json:"order_id"`
	UserID       string          `json:"user_id,omitempty"`
	Items        []OrderItem     `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shipping"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	Email        string          `json:"email"`
	PlacedAt     time.Time       `json:"placed_at"`
}

func (e OrderPlaced) EventType() string { return "OrderPlaced" }

// NewOrderPlaced builds the event for a freshly assembled order.
func NewOrderPlaced(o *Order) OrderPlaced {
	return OrderPlaced{
		OrderID:      o.ID,
		UserID:       o.UserID,
		Items:        append([]OrderItem(nil), o.Items...),
		Subtotal:     o.Subtotal,
		ShippingCost: o.ShippingCost,
		Tax:          o.Tax,
		Total:        o.Total,
		Email:        o.Shipping.Email,
		PlacedAt:     o.CreatedAt,
	}
}

// OrderStatusChanged is emitted when an administrator sets a new status.
type OrderStatusChanged struct {
	OrderID   string      `json:"order_id"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	ChangedAt time.Time   `json:"changed_at"`
}

func (e OrderStatusChanged) EventType() string { return "OrderStatusChanged" }
