package payment

import (
	"context"
	"strings"

	"litverse-be/internal/auth"
	"litverse-be/internal/logger"
	"litverse-be/internal/validation"

	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, userID int64, in CreateInput) (*Payment, error)
	ListByUser(ctx context.Context, caller auth.Caller, userID int64) ([]Payment, error)
	ListAll(ctx context.Context) ([]Payment, error)
}

type service struct {
	repo     Repository
	validate *validation.Validator
}

func NewService(repo Repository, v *validation.Validator) Service {
	return &service{repo: repo, validate: v}
}

func (s *service) Create(ctx context.Context, userID int64, in CreateInput) (*Payment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	if err := s.validate.ValidateFull(typeInput{Type: in.Type}); err != nil {
		return nil, err
	}

	p := &Payment{UserID: userID, Type: in.Type}
	if in.Type.IsCard() {
		in.Provider = strings.TrimSpace(in.Provider)
		if err := s.validate.ValidateFull(in.CardDetails); err != nil {
			return nil, err
		}
		expires := in.ExpirationDate
		p.Provider = in.Provider
		p.CardLast4 = in.CardNumber[len(in.CardNumber)-4:]
		p.ExpiresAt = &expires
	}

	if err := s.repo.Create(ctx, p); err != nil {
		log.Error("failed to store payment", zap.Error(err))
		return nil, err
	}
	p.Mask()

	log.Info("payment stored", zap.Int64("payment_id", p.ID), zap.String("type", string(p.Type)))
	return p, nil
}

func (s *service) ListByUser(ctx context.Context, caller auth.Caller, userID int64) ([]Payment, error) {
	if !caller.CanAccess(userID) {
		return nil, ErrForbidden
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListAll(ctx context.Context) ([]Payment, error) {
	return s.repo.ListAll(ctx)
}
