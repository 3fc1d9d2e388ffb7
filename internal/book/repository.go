package book

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"litverse-be/internal/db"
	"litverse-be/internal/logger"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const dialectPostgres = "postgres"

var bookColumns = []interface{}{
	"id", "title", "author", "description", "price", "stock",
	"category", "image", "created_at", "updated_at",
}

const selectBook = `
	SELECT id, title, author, description, price, stock,
	       category, image, created_at, updated_at
	FROM books`

var sortColumns = map[string]exp.OrderedExpression{
	"price":    goqu.I("price").Asc(),
	"-price":   goqu.I("price").Desc(),
	"title":    goqu.I("title").Asc(),
	"-title":   goqu.I("title").Desc(),
	"created":  goqu.I("created_at").Asc(),
	"-created": goqu.I("created_at").Desc(),
}

type Repository interface {
	Create(ctx context.Context, in CreateBookInput) (*Book, error)
	GetByID(ctx context.Context, id int64) (*Book, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]Book, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*Book, error)
	List(ctx context.Context, f ListFilter) ([]Book, int, error)
	Update(ctx context.Context, id int64, in UpdateBookInput) (*Book, error)
	// DecrementStock only succeeds while stock stays non-negative.
	DecrementStock(ctx context.Context, id int64, qty int) error
	Delete(ctx context.Context, id int64) error
	DeleteReviews(ctx context.Context, bookID int64) error
	DeleteAll(ctx context.Context) error
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

func (r *repository) Create(ctx context.Context, in CreateBookInput) (*Book, error) {
	var b Book
	err := sqlx.GetContext(ctx, r.db, &b, `
		INSERT INTO books (title, author, description, price, stock, category, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, title, author, description, price, stock,
		          category, image, created_at, updated_at
	`, in.Title, in.Author, in.Description, *in.Price, *in.Stock, in.Category, in.Image)
	if err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}
	return &b, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Book, error) {
	return r.get(ctx, selectBook+` WHERE id = $1`, id)
}

func (r *repository) GetForUpdate(ctx context.Context, id int64) (*Book, error) {
	return r.get(ctx, selectBook+` WHERE id = $1 FOR UPDATE`, id)
}

func (r *repository) get(ctx context.Context, query string, id int64) (*Book, error) {
	var b Book
	err := sqlx.GetContext(ctx, r.db, &b, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	return &b, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []int64) (map[int64]Book, error) {
	out := make(map[int64]Book, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := goqu.Dialect(dialectPostgres).
		From("books").
		Prepared(true).
		Select(bookColumns...).
		Where(goqu.C("id").In(ids)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build books by ids query: %w", err)
	}

	var books []Book
	if err := sqlx.SelectContext(ctx, r.db, &books, query, args...); err != nil {
		return nil, fmt.Errorf("get books by ids: %w", err)
	}

	for _, b := range books {
		out[b.ID] = b
	}
	return out, nil
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]Book, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	ds := goqu.Dialect(dialectPostgres).From("books").Prepared(true)
	if f.Category != "" {
		ds = ds.Where(goqu.C("category").Eq(string(f.Category)))
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		ds = ds.Where(goqu.Or(
			goqu.C("title").ILike(pattern),
			goqu.C("author").ILike(pattern),
		))
	}

	countQuery, countArgs, err := ds.Select(goqu.COUNT(goqu.Star())).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, countArgs...); err != nil {
		log.Error("failed to count books", zap.Error(err))
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	order, ok := sortColumns[f.Sort]
	if !ok {
		order = goqu.I("id").Asc()
	}

	listQuery, listArgs, err := ds.
		Select(bookColumns...).
		Order(order).
		Limit(uint(f.Limit)).
		Offset(uint((f.Page - 1) * f.Limit)).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	books := []Book{}
	if err := sqlx.SelectContext(ctx, r.db, &books, listQuery, listArgs...); err != nil {
		log.Error("failed to list books", zap.Error(err))
		return nil, 0, fmt.Errorf("list books: %w", err)
	}

	return books, total, nil
}

func (r *repository) Update(ctx context.Context, id int64, in UpdateBookInput) (*Book, error) {
	rec := goqu.Record{"updated_at": goqu.L("NOW()")}
	if in.Title != nil {
		rec["title"] = *in.Title
	}
	if in.Author != nil {
		rec["author"] = *in.Author
	}
	if in.Description != nil {
		rec["description"] = *in.Description
	}
	if in.Price != nil {
		rec["price"] = *in.Price
	}
	if in.Stock != nil {
		rec["stock"] = *in.Stock
	}
	if in.Category != nil {
		rec["category"] = string(*in.Category)
	}
	if in.Image != nil {
		rec["image"] = *in.Image
	}

	query, args, err := goqu.Dialect(dialectPostgres).
		Update("books").
		Prepared(true).
		Set(rec).
		Where(goqu.C("id").Eq(id)).
		Returning(bookColumns...).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build update query: %w", err)
	}

	var b Book
	err = sqlx.GetContext(ctx, r.db, &b, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update book %d: %w", id, err)
	}
	return &b, nil
}

func (r *repository) DecrementStock(ctx context.Context, id int64, qty int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE books
		SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1
	`, qty, id)
	if err != nil {
		return fmt.Errorf("decrement stock of book %d: %w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: book %d", ErrInsufficientStock, id)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

func (r *repository) DeleteReviews(ctx context.Context, bookID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE book_id = $1`, bookID); err != nil {
		return fmt.Errorf("delete reviews of book %d: %w", bookID, err)
	}
	return nil
}

func (r *repository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `TRUNCATE TABLE books RESTART IDENTITY CASCADE`); err != nil {
		return fmt.Errorf("delete all books: %w", err)
	}
	return nil
}
