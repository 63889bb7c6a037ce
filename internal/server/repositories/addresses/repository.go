// Package addresses persists user address books.
//
// The single-default rule is enforced by the service layer inside a
// transaction that first calls LockOwner; the partial unique index on
// (user_id) WHERE is_default backs it at the store level.
package addresses

import (
	"context"

	"github.com/dmitrijs2005/storefront/internal/server/models"
)

type Repository interface {
	// ListByUser returns the default address first, then newest first.
	ListByUser(ctx context.Context, userID int64) ([]*models.Address, error)
	GetByID(ctx context.Context, id int64) (*models.Address, error)

	// LockOwner takes a row lock on the owning user so that concurrent
	// address mutations for one user serialize. Must run inside a transaction.
	LockOwner(ctx context.Context, userID int64) error
	// ClearDefault unsets is_default on every address of the user.
	ClearDefault(ctx context.Context, userID int64) error

	Create(ctx context.Context, a *models.Address) (*models.Address, error)
	// Update overwrites every mutable field of a, matched by id.
	Update(ctx context.Context, a *models.Address) (*models.Address, error)
	Delete(ctx context.Context, id int64) error
	SetDefault(ctx context.Context, id int64) error
	// PromoteLatest marks the user's most recently created address as
	// default. It reports false when the user has no addresses left.
	PromoteLatest(ctx context.Context, userID int64) (bool, error)
}
