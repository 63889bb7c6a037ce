package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/repomanager"
)

// CartService keeps one cart per user and at most one item row per
// (cart, product). Adding a product already in the cart increases the
// quantity of the existing row.
type CartService struct {
	runner      dbx.Runner
	repomanager repomanager.RepositoryManager
}

func NewCartService(runner dbx.Runner, m repomanager.RepositoryManager) *CartService {
	return &CartService{runner: runner, repomanager: m}
}

// GetOrCreateCart returns the user's cart with its items and their products,
// creating an empty cart on first access.
func (s *CartService) GetOrCreateCart(ctx context.Context, userID int64) (*models.Cart, error) {
	repo := s.repomanager.Carts(s.runner.Conn())

	cart, err := repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting cart: %w", err)
	}
	items, err := repo.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing cart items: %w", err)
	}
	cart.Items = items
	return cart, nil
}

// AddItem merges quantity into the user's cart and returns the resulting
// item. The product must exist.
func (s *CartService) AddItem(ctx context.Context, userID, productID int64, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, common.Validationf("quantity must be at least 1, got %d", quantity)
	}

	conn := s.runner.Conn()
	if _, err := s.repomanager.Products(conn).GetByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("error searching product: %w", err)
	}

	repo := s.repomanager.Carts(conn)
	cart, err := repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting cart: %w", err)
	}

	item, err := repo.AddItem(ctx, cart.ID, productID, quantity)
	if err != nil {
		return nil, fmt.Errorf("error adding cart item: %w", err)
	}
	return item, nil
}

// UpdateQuantity overwrites the quantity of an item.
func (s *CartService) UpdateQuantity(ctx context.Context, itemID int64, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, common.Validationf("quantity must be at least 1, got %d", quantity)
	}
	item, err := s.repomanager.Carts(s.runner.Conn()).SetItemQuantity(ctx, itemID, quantity)
	if err != nil {
		return nil, fmt.Errorf("error updating cart item: %w", err)
	}
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, itemID int64) error {
	if err := s.repomanager.Carts(s.runner.Conn()).DeleteItem(ctx, itemID); err != nil {
		return fmt.Errorf("error removing cart item: %w", err)
	}
	return nil
}

// ClearCart removes every item from the user's cart. A user without a cart
// yields common.ErrorNotFound.
func (s *CartService) ClearCart(ctx context.Context, userID int64) error {
	repo := s.repomanager.Carts(s.runner.Conn())

	cart, err := repo.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("error getting cart: %w", err)
	}
	if _, err := repo.ClearItems(ctx, cart.ID); err != nil {
		return fmt.Errorf("error clearing cart: %w", err)
	}
	return nil
}
