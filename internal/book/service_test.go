package book

import (
	"context"
	"errors"
	"testing"

	"litverse-be/internal/apperror"
	"litverse-be/internal/cache"
	"litverse-be/internal/db"
	"litverse-be/internal/validation"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, in CreateBookInput) (*Book, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Book), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Book), args.Error(1)
}

func (m *MockRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]Book, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]Book), args.Error(1)
}

func (m *MockRepository) GetForUpdate(ctx context.Context, id int64) (*Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Book), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, f ListFilter) ([]Book, int, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]Book), args.Int(1), args.Error(2)
}

func (m *MockRepository) Update(ctx context.Context, id int64, in UpdateBookInput) (*Book, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Book), args.Error(1)
}

func (m *MockRepository) DecrementStock(ctx context.Context, id int64, qty int) error {
	return m.Called(ctx, id, qty).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) DeleteReviews(ctx context.Context, bookID int64) error {
	return m.Called(ctx, bookID).Error(0)
}

func (m *MockRepository) DeleteAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRepository) WithTx(tx db.DBTX) Repository {
	return m
}

// --- Helpers ---

type fixture struct {
	svc  Service
	repo *MockRepository
	sql  sqlmock.Sqlmock
	mr   *miniredis.Miniredis
}

func setup(t *testing.T) fixture {
	mockDB, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := new(MockRepository)
	svc := NewService(sqlx.NewDb(mockDB, "sqlmock"), repo, cache.NewRedisCache(client, ""), validation.New())
	return fixture{svc: svc, repo: repo, sql: sqlMock, mr: mr}
}

func ptr[T any](v T) *T { return &v }

func sampleBook() *Book {
	return &Book{ID: 1, Title: "Dune", Author: "Frank Herbert", Price: decimal.NewFromInt(10), Stock: 5, Category: CategoryFiction}
}

// --- Tests ---

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := setup(t)
		in := CreateBookInput{Title: " Dune ", Author: "Frank Herbert", Price: ptr(decimal.NewFromInt(10)), Stock: ptr(5), Category: CategoryFiction, Image: "dune.png"}
		f.repo.On("Create", ctx, mock.MatchedBy(func(in CreateBookInput) bool { return in.Title == "Dune" })).
			Return(sampleBook(), nil)

		b, err := f.svc.Create(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, int64(1), b.ID)
		f.repo.AssertExpectations(t)
	})

	t.Run("ValidationListsEveryField", func(t *testing.T) {
		f := setup(t)
		in := CreateBookInput{Author: "Al", Price: ptr(decimal.NewFromInt(-1)), Category: "Poetry", Image: "cover.bmp"}

		_, err := f.svc.Create(ctx, in)
		require.Error(t, err)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

		fields := map[string]string{}
		for _, fe := range apperror.FieldsOf(err) {
			fields[fe.Field] = fe.Code
		}
		assert.Equal(t, "required", fields["title"])
		assert.Equal(t, "min", fields["author"])
		assert.Equal(t, "gte", fields["price"])
		assert.Equal(t, "required", fields["stock"])
		assert.Equal(t, "oneof", fields["category"])
		assert.Equal(t, "bookimage", fields["image"])
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Defaults", func(t *testing.T) {
		f := setup(t)
		f.repo.On("List", ctx, ListFilter{Page: 1, Limit: DefaultPageSize}).Return([]Book{*sampleBook()}, 1, nil)

		res, err := f.svc.List(ctx, ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Equal(t, 1, res.Page)
		assert.Equal(t, DefaultPageSize, res.Limit)
	})

	t.Run("ClampsLimit", func(t *testing.T) {
		f := setup(t)
		f.repo.On("List", ctx, ListFilter{Search: "dune", Page: 3, Limit: MaxPageSize}).Return([]Book{}, 0, nil)

		res, err := f.svc.List(ctx, ListFilter{Search: "  dune ", Page: 3, Limit: 500})
		require.NoError(t, err)
		assert.Equal(t, MaxPageSize, res.Limit)
	})

	t.Run("InvalidCategory", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.List(ctx, ListFilter{Category: "Poetry"})
		assert.ErrorIs(t, err, ErrInvalidCategory)
	})

	t.Run("InvalidSort", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.List(ctx, ListFilter{Sort: "stock"})
		assert.ErrorIs(t, err, ErrInvalidSort)
	})
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("ReadThrough", func(t *testing.T) {
		f := setup(t)
		f.repo.On("GetByID", ctx, int64(1)).Return(sampleBook(), nil).Once()

		first, err := f.svc.Get(ctx, 1)
		require.NoError(t, err)
		assert.True(t, f.mr.Exists("book:1"))
		assert.Greater(t, f.mr.TTL("book:1").Seconds(), float64(0))

		second, err := f.svc.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, first.Title, second.Title)
		assert.True(t, first.Price.Equal(second.Price))
		f.repo.AssertNumberOfCalls(t, "GetByID", 1)
	})

	t.Run("NotFound", func(t *testing.T) {
		f := setup(t)
		f.repo.On("GetByID", ctx, int64(9)).Return(nil, ErrBookNotFound)

		_, err := f.svc.Get(ctx, 9)
		assert.ErrorIs(t, err, ErrBookNotFound)
		assert.False(t, f.mr.Exists("book:9"))
	})

	t.Run("CacheDownFallsBackToDB", func(t *testing.T) {
		f := setup(t)
		f.mr.Close()
		f.repo.On("GetByID", ctx, int64(1)).Return(sampleBook(), nil)

		b, err := f.svc.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Dune", b.Title)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("InvalidatesCache", func(t *testing.T) {
		f := setup(t)
		require.NoError(t, f.mr.Set("book:1", `{"id":1}`))
		in := UpdateBookInput{Stock: ptr(7)}
		updated := sampleBook()
		updated.Stock = 7
		f.repo.On("Update", ctx, int64(1), in).Return(updated, nil)

		b, err := f.svc.Update(ctx, 1, in)
		require.NoError(t, err)
		assert.Equal(t, 7, b.Stock)
		assert.False(t, f.mr.Exists("book:1"))
	})

	t.Run("PartialChecksOnlyPresentFields", func(t *testing.T) {
		f := setup(t)
		in := UpdateBookInput{Author: ptr("Al"), Image: ptr("cover.txt")}

		_, err := f.svc.Update(ctx, 1, in)
		require.Error(t, err)
		fields := apperror.FieldsOf(err)
		require.Len(t, fields, 2)
		assert.Equal(t, "author", fields[0].Field)
		assert.Equal(t, "image", fields[1].Field)
	})

	t.Run("Empty", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.Update(ctx, 1, UpdateBookInput{})
		assert.ErrorIs(t, err, ErrEmptyUpdate)
	})

	t.Run("NotFound", func(t *testing.T) {
		f := setup(t)
		in := UpdateBookInput{Stock: ptr(1)}
		f.repo.On("Update", ctx, int64(2), in).Return(nil, ErrBookNotFound)

		_, err := f.svc.Update(ctx, 2, in)
		assert.ErrorIs(t, err, ErrBookNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("DeletesReviewsInSameTx", func(t *testing.T) {
		f := setup(t)
		require.NoError(t, f.mr.Set("book:1", `{"id":1}`))
		f.sql.ExpectBegin()
		f.repo.On("DeleteReviews", ctx, int64(1)).Return(nil)
		f.repo.On("Delete", ctx, int64(1)).Return(nil)
		f.sql.ExpectCommit()

		require.NoError(t, f.svc.Delete(ctx, 1))
		assert.False(t, f.mr.Exists("book:1"))
		assert.NoError(t, f.sql.ExpectationsWereMet())
		f.repo.AssertExpectations(t)
	})

	t.Run("RollsBackWhenMissing", func(t *testing.T) {
		f := setup(t)
		f.sql.ExpectBegin()
		f.repo.On("DeleteReviews", ctx, int64(4)).Return(nil)
		f.repo.On("Delete", ctx, int64(4)).Return(ErrBookNotFound)
		f.sql.ExpectRollback()

		err := f.svc.Delete(ctx, 4)
		assert.ErrorIs(t, err, ErrBookNotFound)
		assert.NoError(t, f.sql.ExpectationsWereMet())
	})

	t.Run("ReviewDeleteFails", func(t *testing.T) {
		f := setup(t)
		f.sql.ExpectBegin()
		f.repo.On("DeleteReviews", ctx, int64(1)).Return(errors.New("db error"))
		f.sql.ExpectRollback()

		assert.Error(t, f.svc.Delete(ctx, 1))
		f.repo.AssertNotCalled(t, "Delete", ctx, int64(1))
	})
}

func TestService_DeleteAll(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	require.NoError(t, f.mr.Set("book:1", "{}"))
	require.NoError(t, f.mr.Set("book:2", "{}"))
	f.repo.On("DeleteAll", ctx).Return(nil)

	require.NoError(t, f.svc.DeleteAll(ctx))
	assert.False(t, f.mr.Exists("book:1"))
	assert.False(t, f.mr.Exists("book:2"))
}
