package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "user_id", "type", "provider", "card_last4", "expires_at", "created_at"}

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewRepository(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func TestRepository_Create(t *testing.T) {
	ctx := context.Background()
	expires := time.Now().AddDate(1, 0, 0)

	t.Run("Success", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		now := time.Now()
		mock.ExpectQuery(`INSERT INTO payments \(user_id, type, provider, card_last4, expires_at\)`).
			WithArgs(int64(3), "credit", "Visa", "4242", expires).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, now))

		p := &Payment{UserID: 3, Type: TypeCredit, Provider: "Visa", CardLast4: "4242", ExpiresAt: &expires}
		require.NoError(t, repo.Create(ctx, p))
		assert.Equal(t, int64(7), p.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DBError", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`INSERT INTO payments`).WillReturnError(errors.New("db down"))

		err := repo.Create(ctx, &Payment{UserID: 3, Type: TypePaypal})
		assert.ErrorContains(t, err, "insert payment")
	})
}

func TestRepository_ListByUser_Masks(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	mock.ExpectQuery(`FROM payments WHERE user_id = \$1 ORDER BY id`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(1, 3, "debit", "Mastercard", "1111", now.AddDate(1, 0, 0), now).
			AddRow(2, 3, "paypal", "", "", nil, now))

	payments, err := repo.ListByUser(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "**** **** **** 1111", payments[0].CardNumber)
	assert.Empty(t, payments[1].CardNumber)
	assert.Nil(t, payments[1].ExpiresAt)
}

func TestRepository_ListAll(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`FROM payments ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(columns))

	payments, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, payments)
}
