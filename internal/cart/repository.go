package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"litverse-be/internal/db"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// GetByUserID returns nil, nil when the user has no cart yet.
	GetByUserID(ctx context.Context, userID int64) (*Cart, error)
	// Save inserts a new cart (Version 0) or updates an existing one whose
	// stored version still matches. A lost race yields ErrCartConflict.
	Save(ctx context.Context, c *Cart) error
	// Clear empties the user's cart; a missing cart is not an error.
	Clear(ctx context.Context, userID int64) error
	WithTx(tx db.DBTX) Repository
}

type repository struct {
	db db.DBTX
}

func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx db.DBTX) Repository {
	return &repository{db: tx}
}

func (r *repository) GetByUserID(ctx context.Context, userID int64) (*Cart, error) {
	var c Cart
	err := sqlx.GetContext(ctx, r.db, &c, `
		SELECT id, user_id, items, total_price, version, updated_at
		FROM carts
		WHERE user_id = $1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart of user %d: %w", userID, err)
	}
	return &c, nil
}

type saveResult struct {
	ID        int64        `db:"id"`
	Version   int          `db:"version"`
	UpdatedAt sql.NullTime `db:"updated_at"`
}

func (r *repository) Save(ctx context.Context, c *Cart) error {
	var res saveResult
	var err error

	if c.Version == 0 {
		err = sqlx.GetContext(ctx, r.db, &res, `
			INSERT INTO carts (user_id, items, total_price, version, updated_at)
			VALUES ($1, $2, $3, 1, NOW())
			ON CONFLICT (user_id) DO NOTHING
			RETURNING id, version, updated_at
		`, c.UserID, c.Items, c.TotalPrice)
	} else {
		err = sqlx.GetContext(ctx, r.db, &res, `
			UPDATE carts
			SET items = $1, total_price = $2, version = version + 1, updated_at = NOW()
			WHERE user_id = $3 AND version = $4
			RETURNING id, version, updated_at
		`, c.Items, c.TotalPrice, c.UserID, c.Version)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrCartConflict
	}
	if err != nil {
		return fmt.Errorf("save cart of user %d: %w", c.UserID, err)
	}

	c.ID = res.ID
	c.Version = res.Version
	if res.UpdatedAt.Valid {
		c.UpdatedAt = &res.UpdatedAt.Time
	}
	return nil
}

func (r *repository) Clear(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE carts
		SET items = '[]'::jsonb, total_price = 0, version = version + 1, updated_at = NOW()
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("clear cart of user %d: %w", userID, err)
	}
	return nil
}
