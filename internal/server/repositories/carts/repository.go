// Package carts persists per-user carts and their items.
package carts

import (
	"context"

	"github.com/dmitrijs2005/storefront/internal/server/models"
)

// Repository defines cart storage. Item quantity changes are single
// statements so concurrent callers never lose an increment.
type Repository interface {
	// GetOrCreate returns the user's cart (without items), inserting an empty
	// one if none exists.
	GetOrCreate(ctx context.Context, userID int64) (*models.Cart, error)
	// GetByUserID returns common.ErrorNotFound if the user has no cart.
	GetByUserID(ctx context.Context, userID int64) (*models.Cart, error)
	// ListItems returns the cart's items with product details, oldest first.
	ListItems(ctx context.Context, cartID int64) ([]*models.CartItem, error)

	// AddItem inserts the item or increments the existing row's quantity by
	// quantity, returning the resulting row.
	AddItem(ctx context.Context, cartID, productID int64, quantity int) (*models.CartItem, error)
	// SetItemQuantity overwrites the quantity of an existing item.
	SetItemQuantity(ctx context.Context, itemID int64, quantity int) (*models.CartItem, error)
	DeleteItem(ctx context.Context, itemID int64) error
	// ClearItems deletes every item of the cart and reports how many were removed.
	ClearItems(ctx context.Context, cartID int64) (int64, error)
}
