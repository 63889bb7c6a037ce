package httpapi

import (
	"context"

	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/dmitrijs2005/storefront/internal/server/services"
	"github.com/shopspring/decimal"
)

// The interfaces below are implemented by the types of package services.

type UserService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Authenticate(ctx context.Context, token string) (*models.User, error)
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, name string) (*models.Profile, error)
}

type CatalogService interface {
	ListCategories(ctx context.Context) ([]*models.Category, error)
	CreateCategory(ctx context.Context, name, description string) (*models.Category, error)
	UpdateCategory(ctx context.Context, id int64, name, description string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListProducts(ctx context.Context) ([]*models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, in services.ProductInput, image *services.ImageUpload) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, in services.ProductInput, image *services.ImageUpload) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type CartService interface {
	GetOrCreateCart(ctx context.Context, userID int64) (*models.Cart, error)
	AddItem(ctx context.Context, userID, productID int64, quantity int) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, itemID int64, quantity int) (*models.CartItem, error)
	RemoveItem(ctx context.Context, itemID int64) error
	ClearCart(ctx context.Context, userID int64) error
}

type AddressService interface {
	List(ctx context.Context, userID int64) ([]*models.Address, error)
	Create(ctx context.Context, userID int64, in services.AddressInput) (*models.Address, error)
	Update(ctx context.Context, userID, addressID int64, in services.AddressInput) (*models.Address, error)
	Delete(ctx context.Context, userID, addressID int64) error
	SetDefault(ctx context.Context, userID, addressID int64) (*models.Address, error)
}

type OrderService interface {
	Create(ctx context.Context, userID int64, items []services.OrderItemInput, total decimal.Decimal) (*models.Order, error)
	ListForUser(ctx context.Context, userID int64) ([]*models.Order, error)
	ListAll(ctx context.Context, q services.OrderQuery) ([]*models.Order, error)
	GetByID(ctx context.Context, orderID int64) (*models.Order, error)
	SetStatus(ctx context.Context, orderID int64, status string) (*models.Order, error)
}

var (
	_ UserService    = (*services.UserService)(nil)
	_ CatalogService = (*services.CatalogService)(nil)
	_ CartService    = (*services.CartService)(nil)
	_ AddressService = (*services.AddressService)(nil)
	_ OrderService   = (*services.OrderService)(nil)
)
