package ledger

import "errors"

var (
	ErrNotFound        = errors.New("record not found")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrOutOfStock      = errors.New("insufficient stock")
	ErrProductInactive = errors.New("product is not active")
	ErrNoOpenTab       = errors.New("table has no open tab")
	ErrConflict        = errors.New("concurrent update conflict")
)
