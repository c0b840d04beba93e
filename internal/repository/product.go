package repository

import (
	"context"
	"fmt"

	"tradefeed/crawler/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id                TEXT PRIMARY KEY,
	company_id        TEXT NOT NULL,
	title             TEXT NOT NULL,
	link              TEXT NOT NULL,
	image_link        TEXT NOT NULL,
	availability      TEXT NOT NULL,
	price             TEXT NOT NULL,
	sale_price        TEXT NOT NULL,
	product_type      TEXT NOT NULL,
	brand             TEXT NOT NULL,
	has_price         BOOLEAN NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const upsertProduct = `
INSERT INTO products (id, company_id, title, link, image_link, availability, price, sale_price, product_type, brand, has_price)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO UPDATE SET
	company_id = EXCLUDED.company_id, title = EXCLUDED.title, link = EXCLUDED.link,
	image_link = EXCLUDED.image_link, availability = EXCLUDED.availability, price = EXCLUDED.price,
	sale_price = EXCLUDED.sale_price, product_type = EXCLUDED.product_type, brand = EXCLUDED.brand,
	has_price = EXCLUDED.has_price, updated_at = NOW()`

// DB is the subset of *pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type ProductRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveProducts(ctx context.Context, products []domain.Product) (int, error)
}

type productRepository struct {
	db DB
}

func NewProductRepository(db DB) ProductRepository {
	return &productRepository{
		db: db,
	}
}

func (r *productRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create products table: %w", err)
	}
	return nil
}

// SaveProducts upserts products in one batch and returns the number of affected rows.
func (r *productRepository) SaveProducts(ctx context.Context, products []domain.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	b := &pgx.Batch{}
	for _, p := range products {
		b.Queue(upsertProduct,
			p.ID, p.CompanyID, p.Title, p.Link, p.ImageLink, p.Availability,
			p.Price, p.SalePrice, p.ProductType, p.Brand, p.HasPrice,
		)
	}

	br := r.db.SendBatch(ctx, b)
	total := 0
	for range products {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return total, fmt.Errorf("failed to save products: %w", err)
		}
		total += int(tag.RowsAffected())
	}
	if err := br.Close(); err != nil {
		return total, fmt.Errorf("failed to save products: %w", err)
	}

	return total, nil
}
