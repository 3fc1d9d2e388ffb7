package order

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

var orderColumns = []string{"id", "user_id", "total_price", "status", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewRepository(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func TestRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`INSERT INTO orders \(user_id, total_price, status\)`).
			WithArgs(int64(4), sqlmock.AnyArg(), "pending").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(10, now, now))
		mock.ExpectExec(`INSERT INTO "order_items" \("book_id", "order_id", "position", "quantity"\) VALUES \(\$1, \$2, \$3, \$4\), \(\$5, \$6, \$7, \$8\)`).
			WithArgs(int64(2), int64(10), 0, 1, int64(1), int64(10), 1, 3).
			WillReturnResult(sqlmock.NewResult(0, 2))

		o := &Order{
			UserID:     4,
			Books:      []Line{{BookID: 2, Quantity: 1}, {BookID: 1, Quantity: 3}},
			TotalPrice: decimal.NewFromInt(40),
			Status:     StatusPending,
		}
		require.NoError(t, repo.Create(ctx, o))
		assert.Equal(t, int64(10), o.ID)
		assert.Equal(t, now, o.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ItemsFail", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(10, now, now))
		mock.ExpectExec(`INSERT INTO "order_items"`).
			WillReturnError(errors.New("db down"))

		err := repo.Create(ctx, &Order{UserID: 4, Books: []Line{{BookID: 1, Quantity: 1}}, Status: StatusPending})
		assert.ErrorContains(t, err, "insert order items")
	})
}

func TestRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("WithLines", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`FROM orders WHERE id = \$1`).
			WithArgs(int64(10)).
			WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(10, 4, "40.00", "pending", now, now))
		mock.ExpectQuery(`SELECT "order_id", "book_id", "quantity" FROM "order_items" WHERE \("order_id" IN \(\$1\)\) ORDER BY "order_id" ASC, "position" ASC`).
			WithArgs(int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"order_id", "book_id", "quantity"}).
				AddRow(10, 2, 1).
				AddRow(10, 1, 3))

		o, err := repo.GetByID(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, o.Status)
		assert.True(t, decimal.NewFromInt(40).Equal(o.TotalPrice))
		assert.Equal(t, []Line{{BookID: 2, Quantity: 1}, {BookID: 1, Quantity: 3}}, o.Books)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`FROM orders WHERE id = \$1`).
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(orderColumns))

		_, err := repo.GetByID(ctx, 99)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestRepository_ListByUser(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	mock.ExpectQuery(`FROM orders WHERE user_id = \$1 ORDER BY id`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(orderColumns).
			AddRow(10, 4, "40.00", "pending", now, now).
			AddRow(11, 4, "5.00", "shipped", now, now))
	mock.ExpectQuery(`FROM "order_items" WHERE \("order_id" IN \(\$1, ?\$2\)\)`).
		WithArgs(int64(10), int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "book_id", "quantity"}).
			AddRow(10, 1, 4).
			AddRow(11, 2, 1))

	orders, err := repo.ListByUser(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, []Line{{BookID: 1, Quantity: 4}}, orders[0].Books)
	assert.Equal(t, []Line{{BookID: 2, Quantity: 1}}, orders[1].Books)
}

func TestRepository_ListAll_Empty(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`FROM orders ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(orderColumns))

	orders, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`UPDATE orders\s+SET status = \$1, updated_at = NOW\(\)\s+WHERE id = \$2 AND status = \$3`).
			WithArgs("shipped", int64(10), "pending").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`FROM orders WHERE id = \$1`).
			WithArgs(int64(10)).
			WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(10, 4, "40.00", "shipped", now, now))
		mock.ExpectQuery(`FROM "order_items"`).
			WillReturnRows(sqlmock.NewRows([]string{"order_id", "book_id", "quantity"}).AddRow(10, 1, 4))

		o, err := repo.UpdateStatus(ctx, 10, StatusPending, StatusShipped)
		require.NoError(t, err)
		assert.Equal(t, StatusShipped, o.Status)
	})

	t.Run("ChangedConcurrently", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`UPDATE orders`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := repo.UpdateStatus(ctx, 10, StatusPending, StatusShipped)
		assert.ErrorIs(t, err, ErrStatusChanged)
	})
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("NotFound", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`DELETE FROM orders WHERE id = \$1`).
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, 3), ErrOrderNotFound)
	})

	t.Run("All", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`TRUNCATE TABLE order_items, orders RESTART IDENTITY`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.DeleteAll(ctx))
	})
}
