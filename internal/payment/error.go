package payment

import "litverse-be/internal/apperror"

var ErrForbidden = apperror.New(apperror.KindForbidden, "you can only view your own payments")
