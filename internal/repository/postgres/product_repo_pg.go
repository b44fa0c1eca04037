package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/kekec/storefront/internal/domain"
)

type ProductRepository struct {
	db *sqlx.DB
}

func NewProductRepo(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	const query = `
        INSERT INTO product (user_id, name, sku, category, quantity, price, description, image_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, user_id, name, sku, category, quantity, price, description, image_url, created_at, updated_at
    `
	row := r.db.QueryRowxContext(ctx, query,
		product.UserID, product.Name, product.SKU, product.Category,
		product.Quantity, product.Price, product.Description, product.ImageURL)
	var stored domain.Product
	if err := row.StructScan(&stored); err != nil {
		return nil, err
	}
	return &stored, nil
}
