package user

import (
	"context"
	"errors"
	"strings"

	"litverse-be/internal/apperror"
	"litverse-be/internal/auth"
	"litverse-be/internal/logger"
	"litverse-be/internal/notify"
	"litverse-be/internal/validation"

	"go.uber.org/zap"
)

type Service interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	// Get and Update only allow callers to act on their own account.
	Get(ctx context.Context, caller auth.Caller, id int64) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, caller auth.Caller, id int64, in UpdateInput) (*User, error)
	// Delete is allowed for the account owner and for admins.
	Delete(ctx context.Context, caller auth.Caller, id int64) error
}

type service struct {
	repo     Repository
	tokens   *auth.TokenManager
	notifier notify.Notifier
	validate *validation.Validator
}

func NewService(repo Repository, tokens *auth.TokenManager, n notify.Notifier, v *validation.Validator) Service {
	if n == nil {
		n = notify.NewLogNotifier()
	}
	return &service{repo: repo, tokens: tokens, notifier: n, validate: v}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Signup"),
	)

	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := s.validate.ValidateFull(in); err != nil {
		return nil, err
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	u := &User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hashed,
		Role:     auth.RoleCustomer,
		Address:  in.Address,
		Phone:    in.Phone,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if !errors.Is(err, ErrEmailExists) {
			log.Error("failed to create user", zap.String("email", in.Email), zap.Error(err))
		}
		return nil, err
	}

	msg := notify.Welcome(u.Name)
	if err := s.notifier.Send(ctx, u.Email, msg.Subject, msg.Body); err != nil {
		log.Warn("welcome e-mail failed", zap.Int64("user_id", u.ID), zap.Error(err))
	}

	token, err := s.tokens.Generate(u.ID, u.Role, u.Email)
	if err != nil {
		log.Error("failed to generate jwt", zap.Int64("user_id", u.ID), zap.Error(err))
		return nil, err
	}

	log.Info("user signed up", zap.Int64("user_id", u.ID))
	return &AuthResult{Token: token, User: u}, nil
}

func (s *service) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	in.Email = normalizeEmail(in.Email)
	if err := s.validate.ValidateFull(in); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByEmail(ctx, in.Email)
	if errors.Is(err, ErrUserNotFound) {
		log.Info("login with unknown email")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !CheckPasswordHash(in.Password, u.Password) {
		log.Info("password mismatch", zap.Int64("user_id", u.ID))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(u.ID, u.Role, u.Email)
	if err != nil {
		log.Error("failed to generate jwt", zap.Int64("user_id", u.ID), zap.Error(err))
		return nil, err
	}
	return &AuthResult{Token: token, User: u}, nil
}

func (s *service) Get(ctx context.Context, caller auth.Caller, id int64) (*User, error) {
	if caller.ID != id {
		return nil, ErrForbidden
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, caller auth.Caller, id int64, in UpdateInput) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Update"),
		zap.Int64("user_id", id),
	)

	if caller.ID != id {
		return nil, ErrForbidden
	}
	if in.IsEmpty() {
		return nil, ErrEmptyUpdate
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}
	if err := s.validate.ValidatePartial(in); err != nil {
		return nil, err
	}

	changes := Changes{Name: in.Name, Email: in.Email, Phone: in.Phone, Address: in.Address}

	if in.Password != nil {
		if err := checkPasswordChange(in); err != nil {
			return nil, err
		}

		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !CheckPasswordHash(*in.OldPassword, current.Password) {
			return nil, ErrWrongPassword
		}

		hashed, err := HashPassword(*in.Password)
		if err != nil {
			log.Error("failed to hash password", zap.Error(err))
			return nil, err
		}
		changes.PasswordHash = &hashed
	}

	u, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) && !errors.Is(err, ErrEmailExists) {
			log.Error("failed to update user", zap.Error(err))
		}
		return nil, err
	}

	log.Info("user updated", zap.Bool("password_changed", changes.PasswordHash != nil))
	return u, nil
}

func checkPasswordChange(in UpdateInput) error {
	var fields []apperror.FieldError
	if in.OldPassword == nil || *in.OldPassword == "" {
		fields = append(fields, apperror.FieldError{
			Field:   "old_password",
			Message: "old_password is required to change the password",
			Code:    "required",
		})
	}
	if in.PasswordConfirm == nil || *in.PasswordConfirm != *in.Password {
		fields = append(fields, apperror.FieldError{
			Field:   "password_confirm",
			Message: "password_confirm must match password",
			Code:    "eqfield",
		})
	}
	if len(fields) > 0 {
		return apperror.Validation("invalid input", fields)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, caller auth.Caller, id int64) error {
	if !caller.CanAccess(id) {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("user deleted",
		zap.String("layer", "service"),
		zap.Int64("user_id", id),
		zap.Int64("by", caller.ID),
	)
	return nil
}
