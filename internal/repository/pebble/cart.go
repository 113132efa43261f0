package pebble

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"

	"github.com/medaimane/AthleticEdge/internal/entity"
	"github.com/medaimane/AthleticEdge/internal/repository"
)

// CartStore keeps carts in an embedded Pebble database, for single-node
// deployments that want carts to survive a restart without Redis.
type CartStore struct {
	db *pebble.DB
}

var _ repository.CartRepository = (*CartStore)(nil)

// Open opens or creates the database in dir.
func Open(dir string) (*CartStore, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", dir, err)
	}
	return &CartStore{db: db}, nil
}

func (s *CartStore) Close() error { return s.db.Close() }

func (s *CartStore) Load(ctx context.Context, owner string) (entity.Cart, error) {
	v, closer, err := s.db.Get([]byte(repository.CartKey(owner)))
	if errors.Is(err, pebble.ErrNotFound) {
		return entity.NewCart(owner), nil
	}
	if err != nil {
		return entity.Cart{}, fmt.Errorf("failed to load cart %s: %w", owner, err)
	}
	defer closer.Close()

	var cart entity.Cart
	if err := json.Unmarshal(v, &cart); err != nil {
		return entity.Cart{}, fmt.Errorf("failed to decode cart %s: %w", owner, err)
	}
	cart.Owner = owner
	if cart.Items == nil {
		cart.Items = []entity.LineItem{}
	}
	return cart, nil
}

func (s *CartStore) Save(ctx context.Context, cart entity.Cart) error {
	if cart.IsEmpty() {
		return s.Delete(ctx, cart.Owner)
	}
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart %s: %w", cart.Owner, err)
	}
	if err := s.db.Set([]byte(repository.CartKey(cart.Owner)), raw, pebble.Sync); err != nil {
		return fmt.Errorf("failed to save cart %s: %w", cart.Owner, err)
	}
	return nil
}

func (s *CartStore) Delete(ctx context.Context, owner string) error {
	if err := s.db.Delete([]byte(repository.CartKey(owner)), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete cart %s: %w", owner, err)
	}
	return nil
}

// Owners lists every owner with a stored cart, in key order.
func (s *CartStore) Owners() ([]string, error) {
	prefix := []byte(repository.CartStorageKey + ":")
	upper := append([]byte(repository.CartStorageKey), ';')
	it, err := s.db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upper})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate carts: %w", err)
	}
	defer it.Close()

	var owners []string
	for it.First(); it.Valid(); it.Next() {
		owners = append(owners, string(it.Key()[len(prefix):]))
	}
	return owners, it.Error()
}
