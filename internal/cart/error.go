package cart

import "litverse-be/internal/apperror"

var (
	// -- Validation & Input --
	ErrInvalidQuantity = apperror.New(apperror.KindValidation, "quantity must be a non-negative integer")
	ErrInvalidBookID   = apperror.New(apperror.KindValidation, "book_id must be a positive integer")

	// -- Resource State --
	ErrCartNotFound     = apperror.New(apperror.KindNotFound, "cart not found")
	ErrCartItemNotFound = apperror.New(apperror.KindNotFound, "item not found in cart")

	// -- Concurrency --
	ErrCartConflict = apperror.New(apperror.KindConflict, "cart was modified concurrently, please retry")
)
