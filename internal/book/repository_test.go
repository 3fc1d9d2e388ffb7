package book

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{
	"id", "title", "author", "description", "price", "stock",
	"category", "image", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewRepository(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func bookRow(rows *sqlmock.Rows, id int64, title string, price string, stock int) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, title, "Frank Herbert", "", price, stock, "Fiction", "dune.jpg", now, now)
}

func TestRepository_Create(t *testing.T) {
	ctx := context.Background()
	price := decimal.RequireFromString("10.50")
	stock := 5
	in := CreateBookInput{Title: "Dune", Author: "Frank Herbert", Price: &price, Stock: &stock, Category: CategoryFiction}

	t.Run("Success", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`INSERT INTO books`).
			WithArgs("Dune", "Frank Herbert", "", price, 5, CategoryFiction, "").
			WillReturnRows(bookRow(sqlmock.NewRows(columns), 1, "Dune", "10.50", 5))

		b, err := repo.Create(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, int64(1), b.ID)
		assert.True(t, b.Price.Equal(price))
		assert.Equal(t, CategoryFiction, b.Category)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DBError", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`INSERT INTO books`).WillReturnError(errors.New("db down"))

		_, err := repo.Create(ctx, in)
		assert.ErrorContains(t, err, "insert book")
	})
}

func TestRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`(?s)SELECT .* FROM books WHERE id = \$1$`).
			WithArgs(int64(1)).
			WillReturnRows(bookRow(sqlmock.NewRows(columns), 1, "Dune", "10", 5))

		b, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Dune", b.Title)
		assert.Equal(t, 5, b.Stock)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`SELECT .* FROM books`).
			WithArgs(int64(9)).
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.GetByID(ctx, 9)
		assert.ErrorIs(t, err, ErrBookNotFound)
	})
}

func TestRepository_GetForUpdate(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`(?s)SELECT .* FROM books WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(bookRow(sqlmock.NewRows(columns), 1, "Dune", "10", 5))

	b, err := repo.GetForUpdate(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty", func(t *testing.T) {
		repo, _ := newMockRepo(t)
		out, err := repo.GetByIDs(ctx, nil)
		assert.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("Success", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		rows := sqlmock.NewRows(columns)
		bookRow(rows, 1, "Dune", "10", 5)
		bookRow(rows, 2, "Emma", "7", 1)
		mock.ExpectQuery(`SELECT .* FROM "books" WHERE \("id" IN \(\$1, ?\$2\)\)`).
			WithArgs(int64(1), int64(2)).
			WillReturnRows(rows)

		out, err := repo.GetByIDs(ctx, []int64{1, 2})
		require.NoError(t, err)
		assert.Len(t, out, 2)
		assert.Equal(t, "Emma", out[2].Title)
	})
}

func TestRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Filtered", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "books" WHERE \(\("category" = \$1\) AND \(\("title" ILIKE \$2\) OR \("author" ILIKE \$3\)\)\)`).
			WithArgs("Fiction", "%dune%", "%dune%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT "id", "title", .* FROM "books" WHERE .* ORDER BY "price" DESC LIMIT \$4`).
			WillReturnRows(bookRow(sqlmock.NewRows(columns), 1, "Dune", "10", 5))

		books, total, err := repo.List(ctx, ListFilter{Category: CategoryFiction, Search: "dune", Sort: "-price", Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Len(t, books, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DefaultOrder", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "books"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`ORDER BY "id" ASC`).
			WillReturnRows(sqlmock.NewRows(columns))

		books, total, err := repo.List(ctx, ListFilter{Page: 2, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 0, total)
		assert.NotNil(t, books)
		assert.Empty(t, books)
	})

	t.Run("CountError", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`SELECT COUNT`).WillReturnError(errors.New("db error"))

		_, _, err := repo.List(ctx, ListFilter{Page: 1, Limit: 10})
		assert.ErrorContains(t, err, "count books")
	})
}

func TestRepository_Update(t *testing.T) {
	ctx := context.Background()
	title := "Dune Messiah"

	t.Run("Success", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`UPDATE "books" SET .*"title"\s?=\s?\$1.* WHERE \("id" = \$2\) RETURNING`).
			WithArgs("Dune Messiah", int64(1)).
			WillReturnRows(bookRow(sqlmock.NewRows(columns), 1, "Dune Messiah", "10", 5))

		b, err := repo.Update(ctx, 1, UpdateBookInput{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "Dune Messiah", b.Title)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`UPDATE "books"`).WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.Update(ctx, 1, UpdateBookInput{Title: &title})
		assert.ErrorIs(t, err, ErrBookNotFound)
	})
}

func TestRepository_DecrementStock(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`UPDATE books\s+SET stock = stock - \$1, updated_at = NOW\(\)\s+WHERE id = \$2 AND stock >= \$1`).
			WithArgs(2, int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.DecrementStock(ctx, 1, 2))
	})

	t.Run("GuardRejects", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`UPDATE books`).
			WithArgs(10, int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DecrementStock(ctx, 1, 10)
		assert.ErrorIs(t, err, ErrInsufficientStock)
	})
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`DELETE FROM books WHERE id = \$1`).
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.Delete(ctx, 1))
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`DELETE FROM books`).WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.Delete(ctx, 1), ErrBookNotFound)
	})

	t.Run("Reviews", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`DELETE FROM reviews WHERE book_id = \$1`).
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 3))
		assert.NoError(t, repo.DeleteReviews(ctx, 1))
	})

	t.Run("All", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`TRUNCATE TABLE books RESTART IDENTITY`).WillReturnResult(sqlmock.NewResult(0, 0))
		assert.NoError(t, repo.DeleteAll(ctx))
	})
}
