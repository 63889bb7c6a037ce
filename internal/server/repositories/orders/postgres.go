package orders

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/shopspring/decimal"
)

// selectOrders yields one row per order item, or a single row with NULL item
// columns for an order without items.
const selectOrders = `
	SELECT o.id, o.user_id, o.total, o.status, o.created_at,
	       u.name, u.email,
	       oi.id, oi.product_id, oi.name, oi.price, oi.quantity
	FROM orders o
	JOIN users u ON u.id = o.user_id
	LEFT JOIN order_items oi ON oi.order_id = o.id
`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, o *models.Order) (*models.Order, error) {
	query := `
		INSERT INTO orders (user_id, total, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowContext(ctx, query, o.UserID, o.Total, o.Status).Scan(&o.ID, &o.CreatedAt); err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, name, price, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	for _, it := range o.Items {
		it.OrderID = o.ID
		err := r.db.QueryRowContext(ctx, itemQuery, o.ID, it.ProductID, it.Name, it.Price, it.Quantity).Scan(&it.ID)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
	}
	return o, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	query := selectOrders + ` WHERE o.user_id = $1 ORDER BY o.created_at DESC, o.id DESC, oi.id`
	return r.query(ctx, query, userID)
}

func (r *PostgresRepository) ListAll(ctx context.Context, f models.OrderFilter) ([]*models.Order, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Status != "" {
		conds = append(conds, "o.status = "+arg(f.Status))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		byName := "u.name ILIKE '%' || " + arg(escapeLike(s)) + " || '%'"
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			conds = append(conds, "(o.id = "+arg(id)+" OR "+byName+")")
		} else {
			conds = append(conds, byName)
		}
	}

	var sb strings.Builder
	sb.WriteString(selectOrders)
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	if f.Ascending {
		sb.WriteString(" ORDER BY o.created_at ASC, o.id ASC, oi.id")
	} else {
		sb.WriteString(" ORDER BY o.created_at DESC, o.id DESC, oi.id")
	}

	return r.query(ctx, sb.String(), args...)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	res, err := r.query(ctx, selectOrders+` WHERE o.id = $1 ORDER BY oi.id`, id)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, common.ErrorNotFound
	}
	return res[0], nil
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id int64, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
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

// query runs a selectOrders statement and folds item rows into their orders,
// preserving row order.
func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select orders: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Order, 0)
	byID := make(map[int64]*models.Order)

	for rows.Next() {
		var (
			o         models.Order
			u         models.Profile
			itemID    sql.NullInt64
			productID sql.NullInt64
			name      sql.NullString
			price     decimal.NullDecimal
			quantity  sql.NullInt64
		)
		if err := rows.Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.CreatedAt,
			&u.Name, &u.Email,
			&itemID, &productID, &name, &price, &quantity); err != nil {
			return nil, err
		}

		cur, ok := byID[o.ID]
		if !ok {
			u.ID = o.UserID
			o.User = &u
			o.Items = make([]*models.OrderItem, 0)
			cur = &o
			byID[o.ID] = cur
			result = append(result, cur)
		}
		if itemID.Valid {
			cur.Items = append(cur.Items, &models.OrderItem{
				ID:        itemID.Int64,
				OrderID:   cur.ID,
				ProductID: productID.Int64,
				Name:      name.String,
				Price:     price.Decimal,
				Quantity:  int(quantity.Int64),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
