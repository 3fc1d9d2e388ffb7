package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"litverse-be/internal/cache"
	"litverse-be/internal/db"
	"litverse-be/internal/logger"
	"litverse-be/internal/validation"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const cacheTTL = time.Hour

func cacheKey(id int64) string {
	return fmt.Sprintf("book:%d", id)
}

type Service interface {
	Create(ctx context.Context, in CreateBookInput) (*Book, error)
	List(ctx context.Context, f ListFilter) (*ListResult, error)
	Get(ctx context.Context, id int64) (*Book, error)
	Update(ctx context.Context, id int64, in UpdateBookInput) (*Book, error)
	// Delete removes the book and its reviews in one transaction.
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	// InvalidateCache drops cached copies after a stock change elsewhere.
	InvalidateCache(ctx context.Context, ids ...int64)
}

type service struct {
	db       *sqlx.DB
	repo     Repository
	cache    cache.Cache
	validate *validation.Validator
}

func NewService(conn *sqlx.DB, repo Repository, c cache.Cache, v *validation.Validator) Service {
	if c == nil {
		c = cache.Noop()
	}
	return &service{db: conn, repo: repo, cache: c, validate: v}
}

func (s *service) Create(ctx context.Context, in CreateBookInput) (*Book, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	if err := s.validate.ValidateFull(in); err != nil {
		return nil, err
	}

	b, err := s.repo.Create(ctx, in)
	if err != nil {
		log.Error("failed to create book", zap.Error(err))
		return nil, err
	}

	log.Info("book created", zap.Int64("book_id", b.ID))
	return b, nil
}

func (s *service) List(ctx context.Context, f ListFilter) (*ListResult, error) {
	if f.Category != "" && !f.Category.IsValid() {
		return nil, ErrInvalidCategory
	}
	if f.Sort != "" {
		if _, ok := sortColumns[f.Sort]; !ok {
			return nil, ErrInvalidSort
		}
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	f.Search = strings.TrimSpace(f.Search)

	books, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	return &ListResult{Books: books, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Book, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Get"),
		zap.Int64("book_id", id),
	)

	var cached Book
	found, err := s.cache.Get(ctx, cacheKey(id), &cached)
	if err != nil {
		log.Warn("book cache read failed", zap.Error(err))
	}
	if found {
		return &cached, nil
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey(id), b, cacheTTL); err != nil {
		log.Warn("book cache write failed", zap.Error(err))
	}
	return b, nil
}

func (s *service) Update(ctx context.Context, id int64, in UpdateBookInput) (*Book, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Update"),
		zap.Int64("book_id", id),
	)

	if in.IsEmpty() {
		return nil, ErrEmptyUpdate
	}
	if err := s.validate.ValidatePartial(in); err != nil {
		return nil, err
	}

	b, err := s.repo.Update(ctx, id, in)
	if err != nil {
		if !errors.Is(err, ErrBookNotFound) {
			log.Error("failed to update book", zap.Error(err))
		}
		return nil, err
	}

	s.InvalidateCache(ctx, id)
	log.Info("book updated")
	return b, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Delete"),
		zap.Int64("book_id", id),
	)

	err := db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteReviews(ctx, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		if !errors.Is(err, ErrBookNotFound) {
			log.Error("failed to delete book", zap.Error(err))
		}
		return err
	}

	s.InvalidateCache(ctx, id)
	log.Info("book deleted")
	return nil
}

func (s *service) DeleteAll(ctx context.Context) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "DeleteAll"),
	)

	if err := s.repo.DeleteAll(ctx); err != nil {
		log.Error("failed to delete all books", zap.Error(err))
		return err
	}

	if err := s.cache.DeleteMatching(ctx, "book:*"); err != nil {
		log.Warn("book cache flush failed", zap.Error(err))
	}
	log.Info("all books deleted")
	return nil
}

func (s *service) InvalidateCache(ctx context.Context, ids ...int64) {
	if len(ids) == 0 {
		return
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cacheKey(id)
	}

	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.FromCtx(ctx).Warn("book cache invalidation failed",
			zap.Int64s("book_ids", ids),
			zap.Error(err),
		)
	}
}
