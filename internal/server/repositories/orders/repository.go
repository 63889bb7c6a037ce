// Package orders persists orders and their item snapshots.
package orders

import (
	"context"

	"github.com/dmitrijs2005/storefront/internal/server/models"
)

type Repository interface {
	// Create inserts the order row and every item row. Callers run it inside
	// a transaction so a failed item insert leaves no partial order.
	Create(ctx context.Context, o *models.Order) (*models.Order, error)
	// ListByUser returns the user's orders with items, newest first.
	ListByUser(ctx context.Context, userID int64) ([]*models.Order, error)
	// ListAll returns orders of every user matching f, with items and owner.
	ListAll(ctx context.Context, f models.OrderFilter) ([]*models.Order, error)
	// GetByID returns the order with items and owner.
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	SetStatus(ctx context.Context, id int64, status string) error
}
