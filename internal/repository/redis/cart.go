package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/medaimane/AthleticEdge/internal/entity"
	"github.com/medaimane/AthleticEdge/internal/repository"
)

type cartRepository struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewCartRepository creates a CartRepository that keeps each cart as a JSON
// value under repository.CartKey. A ttl of zero keeps carts forever;
// otherwise every save refreshes the expiry.
func NewCartRepository(client *goredis.Client, ttl time.Duration) repository.CartRepository {
	return &cartRepository{client: client, ttl: ttl}
}

func (r *cartRepository) Load(ctx context.Context, owner string) (entity.Cart, error) {
	raw, err := r.client.Get(ctx, repository.CartKey(owner)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return entity.NewCart(owner), nil
	}
	if err != nil {
		return entity.Cart{}, fmt.Errorf("failed to load cart %s: %w", owner, err)
	}

	var cart entity.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return entity.Cart{}, fmt.Errorf("failed to decode cart %s: %w", owner, err)
	}
	cart.Owner = owner
	if cart.Items == nil {
		cart.Items = []entity.LineItem{}
	}
	return cart, nil
}

func (r *cartRepository) Save(ctx context.Context, cart entity.Cart) error {
	if cart.IsEmpty() {
		return r.Delete(ctx, cart.Owner)
	}
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart %s: %w", cart.Owner, err)
	}
	if err := r.client.Set(ctx, repository.CartKey(cart.Owner), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart %s: %w", cart.Owner, err)
	}
	return nil
}

func (r *cartRepository) Delete(ctx context.Context, owner string) error {
	if err := r.client.Del(ctx, repository.CartKey(owner)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart %s: %w", owner, err)
	}
	return nil
}
