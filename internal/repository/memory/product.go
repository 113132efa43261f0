package memory

import (
	"context"
	"sync"

	"github.com/medaimane/AthleticEdge/internal/entity"
	"github.com/medaimane/AthleticEdge/internal/repository"
)

type productRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]entity.Product
}

// NewProductRepository creates an in-memory ProductRepository. Products are
// returned in insertion order.
func NewProductRepository() repository.ProductRepository {
	return &productRepository{byID: make(map[string]entity.Product)}
}

func (r *productRepository) FindAll(ctx context.Context) ([]entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]entity.Product, 0, len(r.order))
	for _, id := range r.order {
		products = append(products, r.byID[id])
	}
	return products, nil
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, entity.NewNotFoundError("product", id)
	}
	return &p, nil
}

func (r *productRepository) Seed(ctx context.Context, products []entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.order) > 0 {
		return nil
	}
	for _, p := range products {
		if _, dup := r.byID[p.ID]; dup {
			continue
		}
		r.order = append(r.order, p.ID)
		r.byID[p.ID] = p
	}
	return nil
}
