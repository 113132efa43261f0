package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
)

// InitDB opens and pings the database. Schema changes are applied separately
// by Migrate so that serve never alters tables it did not expect.
func InitDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Database connected")
	return db, nil
}

// Migrate creates the catalog, order and event tables if they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	slog.Info("Database migrated")
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	position SERIAL,
	name TEXT NOT NULL,
	brand TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	price NUMERIC(12,2) NOT NULL,
	sale_price NUMERIC(12,2),
	image_url TEXT NOT NULL DEFAULT '',
	images TEXT[] NOT NULL DEFAULT '{}',
	category TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL DEFAULT '',
	sport TEXT NOT NULL DEFAULT '',
	rating DOUBLE PRECISION NOT NULL DEFAULT 0,
	review_count INT NOT NULL DEFAULT 0,
	badge TEXT NOT NULL DEFAULT '',
	stock INT,
	sizes TEXT[] NOT NULL DEFAULT '{}',
	colors TEXT[] NOT NULL DEFAULT '{}',
	featured BOOLEAN NOT NULL DEFAULT FALSE,
	best_seller BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS orders (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	shipping_details JSONB NOT NULL,
	payment_details JSONB,
	shipping_tier TEXT NOT NULL,
	subtotal NUMERIC(12,2) NOT NULL,
	shipping NUMERIC(12,2) NOT NULL,
	tax NUMERIC(12,2) NOT NULL,
	total NUMERIC(12,2) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS orders_user_id_idx ON orders (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS order_items (
	id SERIAL PRIMARY KEY,
	order_id TEXT NOT NULL REFERENCES orders(id),
	product_id TEXT NOT NULL,
	product_name TEXT NOT NULL,
	product_brand TEXT NOT NULL DEFAULT '',
	price NUMERIC(12,2) NOT NULL,
	quantity INT NOT NULL,
	size TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	stream_id TEXT NOT NULL,
	stream_type TEXT NOT NULL,
	version INT NOT NULL,
	event_type TEXT NOT NULL,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (stream_id, version)
);
`
