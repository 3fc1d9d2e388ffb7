package cart

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewRepository(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func TestRepository_GetByUserID(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		now := time.Now()
		rows := sqlmock.NewRows([]string{"id", "user_id", "items", "total_price", "version", "updated_at"}).
			AddRow(3, 7, []byte(`[{"book_id":1,"quantity":2,"price":"10"}]`), "20", 4, now)
		mock.ExpectQuery(`SELECT id, user_id, items, total_price, version, updated_at\s+FROM carts\s+WHERE user_id = \$1`).
			WithArgs(int64(7)).
			WillReturnRows(rows)

		c, err := repo.GetByUserID(ctx, 7)
		require.NoError(t, err)
		require.Len(t, c.Items, 1)
		assert.Equal(t, int64(1), c.Items[0].BookID)
		assert.Equal(t, 2, c.Items[0].Quantity)
		assert.True(t, c.Items[0].Price.Equal(decimal.NewFromInt(10)))
		assert.True(t, c.TotalPrice.Equal(decimal.NewFromInt(20)))
		assert.Equal(t, 4, c.Version)
	})

	t.Run("Missing", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`FROM carts`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		c, err := repo.GetByUserID(ctx, 7)
		assert.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("DBError", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`FROM carts`).WillReturnError(errors.New("db down"))

		_, err := repo.GetByUserID(ctx, 7)
		assert.Error(t, err)
	})
}

type itemsJSON string

func (j itemsJSON) Match(v driver.Value) bool {
	b, ok := v.([]byte)
	return ok && string(b) == string(j)
}

func TestRepository_Save(t *testing.T) {
	ctx := context.Background()
	saveCols := []string{"id", "version", "updated_at"}

	t.Run("InsertNew", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		c := &Cart{UserID: 7, Items: Items{{BookID: 1, Quantity: 1, Price: decimal.NewFromInt(5)}}, TotalPrice: decimal.NewFromInt(5)}
		mock.ExpectQuery(`INSERT INTO carts .* ON CONFLICT \(user_id\) DO NOTHING`).
			WithArgs(int64(7), itemsJSON(`[{"book_id":1,"quantity":1,"price":"5"}]`), "5").
			WillReturnRows(sqlmock.NewRows(saveCols).AddRow(11, 1, time.Now()))

		require.NoError(t, repo.Save(ctx, c))
		assert.Equal(t, int64(11), c.ID)
		assert.Equal(t, 1, c.Version)
		assert.NotNil(t, c.UpdatedAt)
	})

	t.Run("InsertRace", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`INSERT INTO carts`).WillReturnRows(sqlmock.NewRows(saveCols))

		err := repo.Save(ctx, &Cart{UserID: 7, Items: Items{}})
		assert.ErrorIs(t, err, ErrCartConflict)
	})

	t.Run("UpdateMatchingVersion", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		c := &Cart{ID: 11, UserID: 7, Items: Items{}, TotalPrice: decimal.Zero, Version: 3}
		mock.ExpectQuery(`UPDATE carts\s+SET items = \$1, total_price = \$2, version = version \+ 1.*WHERE user_id = \$3 AND version = \$4`).
			WithArgs(itemsJSON(`[]`), "0", int64(7), 3).
			WillReturnRows(sqlmock.NewRows(saveCols).AddRow(11, 4, time.Now()))

		require.NoError(t, repo.Save(ctx, c))
		assert.Equal(t, 4, c.Version)
	})

	t.Run("UpdateStaleVersion", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`UPDATE carts`).WillReturnRows(sqlmock.NewRows(saveCols))

		err := repo.Save(ctx, &Cart{UserID: 7, Items: Items{}, Version: 2})
		assert.ErrorIs(t, err, ErrCartConflict)
	})

	t.Run("DBError", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`UPDATE carts`).WillReturnError(errors.New("db down"))

		err := repo.Save(ctx, &Cart{UserID: 7, Items: Items{}, Version: 2})
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrCartConflict)
	})
}

func TestRepository_Clear(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`UPDATE carts\s+SET items = '\[\]'::jsonb, total_price = 0`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Clear(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItems_ScanValue(t *testing.T) {
	var it Items
	require.NoError(t, it.Scan(nil))
	assert.Equal(t, Items{}, it)

	require.NoError(t, it.Scan(`null`))
	assert.Equal(t, Items{}, it)

	assert.Error(t, it.Scan(42))
	assert.Error(t, it.Scan([]byte("{")))

	v, err := Items(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)
}

func TestItems_Total(t *testing.T) {
	it := Items{
		{BookID: 1, Quantity: 2, Price: decimal.RequireFromString("10.25")},
		{BookID: 2, Quantity: 3, Price: decimal.RequireFromString("0.10")},
	}
	assert.True(t, it.Total().Equal(decimal.RequireFromString("20.80")))
	assert.True(t, Items{}.Total().IsZero())
}
