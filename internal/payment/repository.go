package payment

import (
	"context"
	"fmt"

	"litverse-be/internal/db"

	"github.com/jmoiron/sqlx"
)

const selectPayment = `
	SELECT id, user_id, type, provider, card_last4, expires_at, created_at
	FROM payments`

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	ListByUser(ctx context.Context, userID int64) ([]Payment, error)
	ListAll(ctx context.Context) ([]Payment, error)
}

type repository struct {
	db db.DBTX
}

func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

func (r *repository) Create(ctx context.Context, p *Payment) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO payments (user_id, type, provider, card_last4, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, p.UserID, p.Type, p.Provider, p.CardLast4, p.ExpiresAt).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]Payment, error) {
	return r.list(ctx, selectPayment+` WHERE user_id = $1 ORDER BY id`, userID)
}

func (r *repository) ListAll(ctx context.Context) ([]Payment, error) {
	return r.list(ctx, selectPayment+` ORDER BY id`)
}

func (r *repository) list(ctx context.Context, query string, args ...interface{}) ([]Payment, error) {
	payments := []Payment{}
	if err := sqlx.SelectContext(ctx, r.db, &payments, query, args...); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	for i := range payments {
		payments[i].Mask()
	}
	return payments, nil
}
