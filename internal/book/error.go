package book

import "litverse-be/internal/apperror"

var (
	ErrBookNotFound      = apperror.New(apperror.KindNotFound, "book not found")
	ErrInsufficientStock = apperror.New(apperror.KindDomain, "insufficient stock")
	ErrEmptyUpdate       = apperror.New(apperror.KindValidation, "no fields to update")
	ErrInvalidSort       = apperror.New(apperror.KindValidation, "invalid sort field")
	ErrInvalidCategory   = apperror.New(apperror.KindValidation, "invalid category")
)
