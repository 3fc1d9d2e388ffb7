package review

import "litverse-be/internal/apperror"

var (
	ErrReviewNotFound = apperror.New(apperror.KindNotFound, "review not found")
	ErrNotOwner       = apperror.New(apperror.KindForbidden, "only the author can change this review")
	ErrEmptyUpdate    = apperror.New(apperror.KindValidation, "no fields to update")
)
