package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/medaimane/AthleticEdge/internal/entity"
	"github.com/medaimane/AthleticEdge/internal/metrics"
	"github.com/medaimane/AthleticEdge/internal/repository"
)

// CartService applies ledger operations to the stored cart of an owner
// (a session id or a user id).
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	metrics  *metrics.Registry

	// Every read-modify-write of a cart runs under the stripe its owner
	// hashes to. Owners sharing a stripe just wait for each other.
	locks [lockStripes]sync.Mutex
}

const lockStripes = 256

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, m *metrics.Registry) *CartService {
	return &CartService{carts: carts, products: products, metrics: m}
}

func stripe(owner string) uint64 { return xxhash.Sum64String(owner) % lockStripes }

func (s *CartService) lock(owner string) func() {
	mu := &s.locks[stripe(owner)]
	mu.Lock()
	return mu.Unlock
}

func checkOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return &entity.ValidationError{
			Message: "cart owner is required",
			Fields:  map[string]string{"owner": "is required"},
		}
	}
	return nil
}

// mutate loads owner's cart, applies fn and saves the result, all under the
// owner's lock. Nothing is saved when fn fails.
func (s *CartService) mutate(ctx context.Context, owner, op string, fn func(entity.Cart) (entity.Cart, error)) (entity.Cart, error) {
	if err := checkOwner(owner); err != nil {
		return entity.Cart{}, err
	}
	unlock := s.lock(owner)
	defer unlock()

	cart, err := s.carts.Load(ctx, owner)
	if err != nil {
		return entity.Cart{}, fmt.Errorf("failed to load cart: %w", err)
	}
	next, err := fn(cart)
	if err != nil {
		if entity.IsValidation(err) {
			s.metrics.ValidationFailures.WithLabelValues("cart_" + op).Inc()
		}
		return entity.Cart{}, err
	}
	if err := s.carts.Save(ctx, next); err != nil {
		return entity.Cart{}, fmt.Errorf("failed to save cart: %w", err)
	}
	s.metrics.CartMutations.WithLabelValues(op).Inc()
	return next, nil
}

// Get returns owner's cart; an owner without a cart gets an empty one.
func (s *CartService) Get(ctx context.Context, owner string) (entity.Cart, error) {
	if err := checkOwner(owner); err != nil {
		return entity.Cart{}, err
	}
	cart, err := s.carts.Load(ctx, owner)
	if err != nil {
		return entity.Cart{}, fmt.Errorf("failed to load cart: %w", err)
	}
	return cart, nil
}

// AddItem adds quantity of the catalog product to owner's cart, merging with
// an existing entry of the same size and color.
func (s *CartService) AddItem(ctx context.Context, owner, productID string, quantity int, size, color string) (entity.Cart, error) {
	if productID == "" {
		return entity.Cart{}, &entity.ValidationError{
			Message: "product id is required",
			Fields:  map[string]string{"product_id": "is required"},
		}
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return entity.Cart{}, err
	}

	cart, err := s.mutate(ctx, owner, "add", func(c entity.Cart) (entity.Cart, error) {
		return c.Add(*product, quantity, size, color)
	})
	if err != nil {
		return entity.Cart{}, err
	}
	slog.Debug("Item added to cart", "owner", owner, "product_id", productID, "quantity", quantity)
	return cart, nil
}

// SetQuantity replaces the quantity of an existing entry. A quantity of zero
// or less removes it. Unknown entries yield an *entity.NotFoundError.
func (s *CartService) SetQuantity(ctx context.Context, owner string, key entity.LineKey, quantity int) (entity.Cart, error) {
	return s.mutate(ctx, owner, "set_quantity", func(c entity.Cart) (entity.Cart, error) {
		next, found := c.SetQuantity(key, quantity)
		if !found {
			return c, entity.NewNotFoundError("cart item", key.ProductID)
		}
		return next, nil
	})
}

// RemoveItem deletes an entry. Removing an absent entry is not an error.
func (s *CartService) RemoveItem(ctx context.Context, owner string, key entity.LineKey) (entity.Cart, error) {
	return s.mutate(ctx, owner, "remove", func(c entity.Cart) (entity.Cart, error) {
		return c.Remove(key), nil
	})
}

// Clear empties owner's cart.
func (s *CartService) Clear(ctx context.Context, owner string) error {
	_, err := s.mutate(ctx, owner, "clear", func(c entity.Cart) (entity.Cart, error) {
		return c.Clear(), nil
	})
	return err
}

// checkout hands owner's cart to place under the owner's lock and clears the
// cart once place succeeds, so no concurrent mutation can slip in between.
func (s *CartService) checkout(ctx context.Context, owner string, place func(entity.Cart) error) error {
	if err := checkOwner(owner); err != nil {
		return err
	}
	unlock := s.lock(owner)
	defer unlock()

	cart, err := s.carts.Load(ctx, owner)
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}
	if err := place(cart); err != nil {
		return err
	}
	if err := s.carts.Delete(ctx, owner); err != nil {
		// The order is already placed.
		slog.Error("Failed to clear cart after checkout", "owner", owner, "err", err)
		return nil
	}
	s.metrics.CartMutations.WithLabelValues("checkout").Inc()
	return nil
}
