package order

import "litverse-be/internal/apperror"

var (
	ErrOrderNotFound     = apperror.New(apperror.KindNotFound, "order not found")
	ErrEmptyCart         = apperror.New(apperror.KindDomain, "cart is empty")
	ErrInvalidTransition = apperror.New(apperror.KindDomain, "order status transition not allowed")
	ErrStatusChanged     = apperror.New(apperror.KindConflict, "order status changed concurrently, please retry")
)
