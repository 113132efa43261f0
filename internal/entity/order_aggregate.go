package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// AggregateBase carries the stream id and the number of applied events.
type AggregateBase struct {
	ID      string
	Version int
}

func (a *AggregateBase) GetAggregateID() string { return a.ID }

func (a *AggregateBase) GetVersion() int { return a.Version }

// OrderAggregate tracks the status history of an order by replaying its
// event stream. Monetary fields live on Order and are never replayed.
type OrderAggregate struct {
	AggregateBase
	Status    OrderStatus
	CreatedAt time.Time
}

// NewOrderAggregate creates an empty OrderAggregate for id.
func NewOrderAggregate(id string) *OrderAggregate {
	return &OrderAggregate{
		AggregateBase: AggregateBase{ID: id, Version: 0},
	}
}

// Exists reports whether the stream contained an OrderPlaced event.
func (a *OrderAggregate) Exists() bool {
	return a.Status != ""
}

// ApplyEvent mutates the aggregate state based on the event.
func (a *OrderAggregate) ApplyEvent(e Event) error {
	switch e := e.(type) {
	case OrderPlaced:
		a.Status = OrderStatusPending
		if a.CreatedAt.IsZero() {
			a.CreatedAt = e.PlacedAt
		}
	case OrderStatusChanged:
		if !a.Exists() {
			return fmt.Errorf("status change before order was placed: %s", e.OrderID)
		}
		a.Status = e.To
	default:
		return fmt.Errorf("unknown event type for OrderAggregate: %s", e.EventType())
	}
	a.Version++
	return nil
}

// Rehydrate rebuilds the aggregate from a list of records.
func (a *OrderAggregate) Rehydrate(records []EventStoreRecord) error {
	for _, rec := range records {
		var err error
		switch rec.EventType {
		case "OrderPlaced":
			var e OrderPlaced
			if err = json.Unmarshal(rec.Payload, &e); err == nil {
				err = a.ApplyEvent(e)
			}
		case "OrderStatusChanged":
			var e OrderStatusChanged
			if err = json.Unmarshal(rec.Payload, &e); err == nil {
				err = a.ApplyEvent(e)
			}
		default:
			return fmt.Errorf("unknown event type in stream: %s", rec.EventType)
		}
		if err != nil {
			return fmt.Errorf("failed to apply event from stream: %w", err)
		}
	}
	return nil
}
