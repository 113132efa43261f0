package repository

import (
	"context"

	"github.com/medaimane/AthleticEdge/internal/entity"
)

// ProductRepository handles persistence for Products.
type ProductRepository interface {
	FindAll(ctx context.Context) ([]entity.Product, error)
	// FindByID returns an *entity.NotFoundError when the product is unknown.
	FindByID(ctx context.Context, id string) (*entity.Product, error)
	// Seed inserts initial products if none exist.
	Seed(ctx context.Context, products []entity.Product) error
}

// CartRepository stores one cart per owner. A missing cart loads as an empty
// cart rather than an error.
type CartRepository interface {
	Load(ctx context.Context, owner string) (entity.Cart, error)
	Save(ctx context.Context, cart entity.Cart) error
	Delete(ctx context.Context, owner string) error
}

// OrderRepository handles persistence for Orders.
type OrderRepository interface {
	// Create fails with entity.ErrConcurrentUpdate when the id is taken.
	Create(ctx context.Context, order *entity.Order) error
	// FindByID returns an *entity.NotFoundError when the order is unknown.
	FindByID(ctx context.Context, id string) (*entity.Order, error)
	// FindByUser returns the user's orders, newest first.
	FindByUser(ctx context.Context, userID string) ([]entity.Order, error)
	UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) error
	// Delete removes the order and its items. Unknown ids are ignored.
	Delete(ctx context.Context, id string) error
}

// EventStore handles appending and loading events for an aggregate stream.
type EventStore interface {
	// SaveEvents appends events after expectedVersion and fails with
	// entity.ErrConcurrentUpdate if the stream has moved on.
	SaveEvents(ctx context.Context, streamID string, streamType string, expectedVersion int, events []entity.Event) error
	LoadEvents(ctx context.Context, streamID string) ([]entity.EventStoreRecord, error)
}

// CartStorageKey prefixes every persisted cart.
const CartStorageKey = "athletix-cart"

// CartKey is the storage key of owner's cart.
func CartKey(owner string) string {
	return CartStorageKey + ":" + owner
}
