package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/storefront/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills its ID, Role and CreatedAt. A duplicate
	// email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateName(ctx context.Context, id int64, name string) (*models.User, error)
	SetRole(ctx context.Context, id int64, role string) error

	SetResetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error
	// GetByResetToken finds the user holding token if it has not expired at now.
	GetByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error)
	// UpdatePassword stores a new hash and clears any reset token.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}
