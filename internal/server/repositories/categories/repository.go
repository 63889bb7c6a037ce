// Package categories persists catalog categories.
package categories

import (
	"context"

	"github.com/dmitrijs2005/storefront/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	// List returns all categories ordered by name.
	List(ctx context.Context) ([]*models.Category, error)
	Update(ctx context.Context, c *models.Category) (*models.Category, error)
	// Delete fails with common.ErrorValidation while products still reference
	// the category.
	Delete(ctx context.Context, id int64) error
}
