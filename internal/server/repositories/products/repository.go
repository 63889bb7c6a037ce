// Package products persists catalog products.
package products

import (
	"context"

	"github.com/dmitrijs2005/storefront/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	// List returns all products, newest first.
	List(ctx context.Context) ([]*models.Product, error)
	// Update overwrites every field of p except CreatedAt.
	Update(ctx context.Context, p *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
}
