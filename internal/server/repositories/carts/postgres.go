package carts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetOrCreate relies on the UNIQUE(user_id) constraint: the no-op update
// makes RETURNING yield the existing row on conflict.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, userID int64) (*models.Cart, error) {
	query := `
		INSERT INTO carts (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id
	`
	cart := &models.Cart{UserID: userID}
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&cart.ID); err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return cart, nil
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID int64) (*models.Cart, error) {
	query := `SELECT id, user_id FROM carts WHERE user_id = $1`

	cart := &models.Cart{}
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&cart.ID, &cart.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return cart, nil
}

func (r *PostgresRepository) ListItems(ctx context.Context, cartID int64) ([]*models.CartItem, error) {
	query := `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity,
		       p.id, p.name, p.description, p.price, p.stock, p.image, p.category_id, p.created_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id
	`
	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to select cart items: %w", err)
	}
	defer rows.Close()

	items := make([]*models.CartItem, 0)
	for rows.Next() {
		it := &models.CartItem{Product: &models.Product{}}
		p := it.Product
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity,
			&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Image, &p.CategoryID, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// AddItem merges into an existing (cart_id, product_id) row in the same
// statement that would insert it. A missing product yields
// common.ErrorNotFound.
func (r *PostgresRepository) AddItem(ctx context.Context, cartID, productID int64, quantity int) (*models.CartItem, error) {
	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, cart_id, product_id, quantity
	`
	it := &models.CartItem{}
	err := r.db.QueryRowContext(ctx, query, cartID, productID, quantity).
		Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return it, nil
}

func (r *PostgresRepository) SetItemQuantity(ctx context.Context, itemID int64, quantity int) (*models.CartItem, error) {
	query := `
		UPDATE cart_items SET quantity = $2
		WHERE id = $1
		RETURNING id, cart_id, product_id, quantity
	`
	it := &models.CartItem{}
	err := r.db.QueryRowContext(ctx, query, itemID, quantity).
		Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return it, nil
}

func (r *PostgresRepository) DeleteItem(ctx context.Context, itemID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ClearItems(ctx context.Context, cartID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
