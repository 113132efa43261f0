package memory

import (
	"context"
	"sync"

	"github.com/medaimane/AthleticEdge/internal/entity"
	"github.com/medaimane/AthleticEdge/internal/repository"
)

type cartRepository struct {
	mu    sync.RWMutex
	carts map[string]entity.Cart
}

// NewCartRepository creates an in-memory CartRepository.
func NewCartRepository() repository.CartRepository {
	return &cartRepository{carts: make(map[string]entity.Cart)}
}

func (r *cartRepository) Load(ctx context.Context, owner string) (entity.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.carts[owner]
	if !ok {
		return entity.NewCart(owner), nil
	}
	return copyCart(c), nil
}

func (r *cartRepository) Save(ctx context.Context, cart entity.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cart.IsEmpty() {
		delete(r.carts, cart.Owner)
		return nil
	}
	r.carts[cart.Owner] = copyCart(cart)
	return nil
}

func (r *cartRepository) Delete(ctx context.Context, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, owner)
	return nil
}

func copyCart(c entity.Cart) entity.Cart {
	items := make([]entity.LineItem, len(c.Items))
	copy(items, c.Items)
	return entity.Cart{Owner: c.Owner, Items: items}
}
