package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/medaimane/AthleticEdge/internal/config"
	"github.com/medaimane/AthleticEdge/internal/repository"
	"github.com/medaimane/AthleticEdge/internal/repository/dynamo"
	"github.com/medaimane/AthleticEdge/internal/repository/memory"
	"github.com/medaimane/AthleticEdge/internal/repository/pebble"
	"github.com/medaimane/AthleticEdge/internal/repository/postgres"
	rediscart "github.com/medaimane/AthleticEdge/internal/repository/redis"
)

// stores bundles the repositories selected by configuration together with
// whatever connections they hold open.
type stores struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	events   repository.EventStore
	carts    repository.CartRepository

	closers []func() error
}

func (s *stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	s := &stores{}
	if err := s.openCatalogAndOrders(ctx, cfg); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.openCarts(ctx, cfg); err != nil {
		s.Close()
		return nil, err
	}
	slog.Info("Stores ready", "store", cfg.StoreBackend, "carts", cfg.CartBackend)
	return s, nil
}

func (s *stores) openCatalogAndOrders(ctx context.Context, cfg *config.Config) error {
	switch cfg.StoreBackend {
	case "postgres":
		db, err := postgres.InitDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, db.Close)
		s.products = postgres.NewProductRepository(db)
		s.orders = postgres.NewOrderRepository(db)
		s.events = postgres.NewEventStore(db)
	case "dynamodb":
		client, err := dynamo.NewClient(ctx, cfg.AWSRegion, cfg.DynamoDBEndpoint)
		if err != nil {
			return err
		}
		s.products = memory.NewProductRepository()
		s.orders = dynamo.NewOrderRepository(client, cfg.OrderTableName)
		s.events = dynamo.NewEventStore(client, cfg.OrderTableName)
	default:
		s.products = memory.NewProductRepository()
		s.orders = memory.NewOrderRepository()
		s.events = memory.NewEventStore()
	}
	return nil
}

func (s *stores) openCarts(ctx context.Context, cfg *config.Config) error {
	switch cfg.CartBackend {
	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		s.closers = append(s.closers, client.Close)
		s.carts = rediscart.NewCartRepository(client, cfg.CartTTL)
	case "pebble":
		store, err := pebble.Open(cfg.PebbleDir)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, store.Close)
		s.carts = store
	default:
		s.carts = memory.NewCartRepository()
	}
	return nil
}
