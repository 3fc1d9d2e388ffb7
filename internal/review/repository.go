package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"litverse-be/internal/db"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"
)

var reviewColumns = []interface{}{
	"id", "user_id", "book_id", "rating", "comment", "created_at", "updated_at",
}

type Repository interface {
	Create(ctx context.Context, userID int64, in CreateInput) (*Review, error)
	GetByID(ctx context.Context, id int64) (*Review, error)
	List(ctx context.Context, f ListFilter) ([]Review, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*Review, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

func (r *repository) Create(ctx context.Context, userID int64, in CreateInput) (*Review, error) {
	var rv Review
	err := sqlx.GetContext(ctx, r.db, &rv, `
		INSERT INTO reviews (user_id, book_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, book_id, rating, comment, created_at, updated_at
	`, userID, in.BookID, in.Rating, in.Comment)
	if err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}
	return &rv, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Review, error) {
	var rv Review
	err := sqlx.GetContext(ctx, r.db, &rv, `
		SELECT id, user_id, book_id, rating, comment, created_at, updated_at
		FROM reviews WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review %d: %w", id, err)
	}
	return &rv, nil
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]Review, error) {
	ds := goqu.Dialect("postgres").From("reviews").Prepared(true).Select(reviewColumns...)
	if f.BookID > 0 {
		ds = ds.Where(goqu.C("book_id").Eq(f.BookID))
	}
	if f.UserID > 0 {
		ds = ds.Where(goqu.C("user_id").Eq(f.UserID))
	}

	query, args, err := ds.Order(goqu.I("id").Asc()).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	reviews := []Review{}
	if err := sqlx.SelectContext(ctx, r.db, &reviews, query, args...); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

func (r *repository) Update(ctx context.Context, id int64, in UpdateInput) (*Review, error) {
	rec := goqu.Record{"updated_at": goqu.L("NOW()")}
	if in.Rating != nil {
		rec["rating"] = *in.Rating
	}
	if in.Comment != nil {
		rec["comment"] = *in.Comment
	}

	query, args, err := goqu.Dialect("postgres").
		Update("reviews").
		Prepared(true).
		Set(rec).
		Where(goqu.C("id").Eq(id)).
		Returning(reviewColumns...).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build update query: %w", err)
	}

	var rv Review
	err = sqlx.GetContext(ctx, r.db, &rv, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update review %d: %w", id, err)
	}
	return &rv, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review %d: %w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}
