package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/medaimane/AthleticEdge/internal/entity"
	"github.com/medaimane/AthleticEdge/internal/repository"
)

// CatalogService answers read-only product queries.
type CatalogService struct {
	products repository.ProductRepository
}

func NewCatalogService(products repository.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

// Seed loads the starter catalog unless the store already has products.
func (s *CatalogService) Seed(ctx context.Context) error {
	if err := s.products.Seed(ctx, repository.SeedProducts()); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	return nil
}

func (s *CatalogService) All(ctx context.Context) ([]entity.Product, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []entity.Product{}
	}
	return products, nil
}

// ByID returns an *entity.NotFoundError for unknown ids.
func (s *CatalogService) ByID(ctx context.Context, id string) (*entity.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *CatalogService) ByCategory(ctx context.Context, category string) ([]entity.Product, error) {
	return s.filter(ctx, func(p entity.Product) bool { return strings.EqualFold(p.Category, category) })
}

func (s *CatalogService) ByBrand(ctx context.Context, brand string) ([]entity.Product, error) {
	return s.filter(ctx, func(p entity.Product) bool { return strings.EqualFold(p.Brand, brand) })
}

func (s *CatalogService) Featured(ctx context.Context) ([]entity.Product, error) {
	return s.filter(ctx, func(p entity.Product) bool { return p.Featured })
}

func (s *CatalogService) BestSellers(ctx context.Context) ([]entity.Product, error) {
	return s.filter(ctx, func(p entity.Product) bool { return p.BestSeller })
}

// Search matches query case-insensitively against the product text fields.
func (s *CatalogService) Search(ctx context.Context, query string) ([]entity.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &entity.ValidationError{
			Message: "search query is required",
			Fields:  map[string]string{"q": "is required"},
		}
	}
	return s.filter(ctx, func(p entity.Product) bool { return p.Matches(query) })
}

func (s *CatalogService) filter(ctx context.Context, keep func(entity.Product) bool) ([]entity.Product, error) {
	all, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := []entity.Product{}
	for _, p := range all {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}
