package addresses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/server/models"
)

const addressColumns = `id, user_id, label, recipient, phone, line1, line2, city, state, postal_code, country, is_default, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAddress(s scanner) (*models.Address, error) {
	a := &models.Address{}
	err := s.Scan(&a.ID, &a.UserID, &a.Label, &a.Recipient, &a.Phone, &a.Line1, &a.Line2,
		&a.City, &a.State, &a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt)
	return a, err
}

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select addresses: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1`

	a, err := scanAddress(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) LockOwner(ctx context.Context, userID int64) error {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ClearDefault(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND is_default`, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Address) (*models.Address, error) {
	query := `
		INSERT INTO addresses (user_id, label, recipient, phone, line1, line2, city, state, postal_code, country, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		a.UserID, a.Label, a.Recipient, a.Phone, a.Line1, a.Line2,
		a.City, a.State, a.PostalCode, a.Country, a.IsDefault).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Update(ctx context.Context, a *models.Address) (*models.Address, error) {
	query := `
		UPDATE addresses
		SET label = $2, recipient = $3, phone = $4, line1 = $5, line2 = $6,
		    city = $7, state = $8, postal_code = $9, country = $10, is_default = $11
		WHERE id = $1
		RETURNING user_id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.Label, a.Recipient, a.Phone, a.Line1, a.Line2,
		a.City, a.State, a.PostalCode, a.Country, a.IsDefault).Scan(&a.UserID, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM addresses WHERE id = $1`, id)
}

func (r *PostgresRepository) SetDefault(ctx context.Context, id int64) error {
	return r.execOne(ctx, `UPDATE addresses SET is_default = TRUE WHERE id = $1`, id)
}

func (r *PostgresRepository) PromoteLatest(ctx context.Context, userID int64) (bool, error) {
	query := `
		UPDATE addresses SET is_default = TRUE
		WHERE id = (
			SELECT id FROM addresses
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		)
	`
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
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
