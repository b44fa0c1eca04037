package ports

import (
	"context"

	"github.com/kekec/storefront/internal/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
}
