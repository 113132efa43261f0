package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/medaimane/AthleticEdge/internal/entity"
	"github.com/medaimane/AthleticEdge/internal/repository"
)

type orderRepository struct {
	mu     sync.RWMutex
	orders map[string]*entity.Order
}

// NewOrderRepository creates an in-memory OrderRepository.
func NewOrderRepository() repository.OrderRepository {
	return &orderRepository{orders: make(map[string]*entity.Order)}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return fmt.Errorf("order %s already exists: %w", order.ID, entity.ErrConcurrentUpdate)
	}
	r.orders[order.ID] = order.Clone()
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, entity.NewNotFoundError("order", id)
	}
	return o.Clone(), nil
}

func (r *orderRepository) FindByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []entity.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			orders = append(orders, *o.Clone())
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return entity.NewNotFoundError("order", id)
	}
	o.Status = status
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.orders, id)
	return nil
}
