package review

import (
	"context"
	"strings"

	"litverse-be/internal/auth"
	"litverse-be/internal/book"
	"litverse-be/internal/logger"
	"litverse-be/internal/validation"

	"go.uber.org/zap"
)

// BookReader confirms the reviewed book exists.
type BookReader interface {
	Get(ctx context.Context, id int64) (*book.Book, error)
}

type Service interface {
	Create(ctx context.Context, userID int64, in CreateInput) (*Review, error)
	List(ctx context.Context, f ListFilter) ([]Review, error)
	Get(ctx context.Context, id int64) (*Review, error)
	Update(ctx context.Context, caller auth.Caller, id int64, in UpdateInput) (*Review, error)
	Delete(ctx context.Context, caller auth.Caller, id int64) error
}

type service struct {
	repo     Repository
	books    BookReader
	validate *validation.Validator
}

func NewService(repo Repository, books BookReader, v *validation.Validator) Service {
	return &service{repo: repo, books: books, validate: v}
}

func (s *service) Create(ctx context.Context, userID int64, in CreateInput) (*Review, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	in.Comment = strings.TrimSpace(in.Comment)
	if err := s.validate.ValidateFull(in); err != nil {
		return nil, err
	}

	if _, err := s.books.Get(ctx, in.BookID); err != nil {
		return nil, err
	}

	rv, err := s.repo.Create(ctx, userID, in)
	if err != nil {
		log.Error("failed to create review", zap.Error(err))
		return nil, err
	}

	log.Info("review created", zap.Int64("review_id", rv.ID), zap.Int64("book_id", rv.BookID))
	return rv, nil
}

func (s *service) List(ctx context.Context, f ListFilter) ([]Review, error) {
	return s.repo.List(ctx, f)
}

func (s *service) Get(ctx context.Context, id int64) (*Review, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Update(ctx context.Context, caller auth.Caller, id int64, in UpdateInput) (*Review, error) {
	if in.IsEmpty() {
		return nil, ErrEmptyUpdate
	}
	if in.Comment != nil {
		comment := strings.TrimSpace(*in.Comment)
		in.Comment = &comment
	}
	if err := s.validate.ValidatePartial(in); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.UserID != caller.ID {
		return nil, ErrNotOwner
	}

	return s.repo.Update(ctx, id, in)
}

func (s *service) Delete(ctx context.Context, caller auth.Caller, id int64) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !caller.CanAccess(current.UserID) {
		return ErrNotOwner
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("review deleted",
		zap.String("layer", "service"),
		zap.Int64("review_id", id),
		zap.Int64("by", caller.ID),
	)
	return nil
}
