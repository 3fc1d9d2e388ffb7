package user

import "litverse-be/internal/apperror"

var (
	ErrUserNotFound       = apperror.New(apperror.KindNotFound, "user not found")
	ErrEmailExists        = apperror.New(apperror.KindConflict, "email already registered")
	ErrInvalidCredentials = apperror.New(apperror.KindAuth, "invalid email or password")
	ErrWrongPassword      = apperror.New(apperror.KindAuth, "current password is incorrect")
	ErrForbidden          = apperror.New(apperror.KindForbidden, "you can only access your own account")
	ErrEmptyUpdate        = apperror.New(apperror.KindValidation, "no fields to update")
)
