package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/medaimane/AthleticEdge/internal/entity"
	"github.com/medaimane/AthleticEdge/internal/repository"
)

const productColumns = "id, name, brand, description, price, sale_price, image_url, images, category, type, sport, rating, review_count, badge, stock, sizes, colors, featured, best_seller, created_at"

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new ProductRepository backed by Postgres.
func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (entity.Product, error) {
	var (
		p     entity.Product
		badge string
		stock sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.Name, &p.Brand, &p.Description, &p.Price, &p.SalePrice, &p.ImageURL,
		pq.Array(&p.Images), &p.Category, &p.Type, &p.Sport, &p.Rating, &p.ReviewCount, &badge, &stock,
		pq.Array(&p.Sizes), pq.Array(&p.Colors), &p.Featured, &p.BestSeller, &p.CreatedAt)
	if err != nil {
		return p, err
	}
	p.Badge = entity.Badge(badge)
	if stock.Valid {
		n := int(stock.Int64)
		p.Stock = &n
	}
	return p, nil
}

func (r *productRepository) FindAll(ctx context.Context) ([]entity.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}
	return products, nil
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.NewNotFoundError("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product %s: %w", id, err)
	}
	return &p, nil
}

func (r *productRepository) Seed(ctx context.Context, products []entity.Product) error {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil // already seeded
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range products {
		var stock sql.NullInt64
		if p.Stock != nil {
			stock = sql.NullInt64{Int64: int64(*p.Stock), Valid: true}
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO products ("+productColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20) ON CONFLICT (id) DO NOTHING",
			p.ID, p.Name, p.Brand, p.Description, p.Price, p.SalePrice, p.ImageURL, pq.Array(p.Images),
			p.Category, p.Type, p.Sport, p.Rating, p.ReviewCount, string(p.Badge), stock,
			pq.Array(p.Sizes), pq.Array(p.Colors), p.Featured, p.BestSeller, p.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}
