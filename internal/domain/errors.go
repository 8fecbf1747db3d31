package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	ErrInvalidSKU       = errors.New("invalid sku")
	ErrNegativeAmount   = errors.New("amount must be non-negative")
	ErrCurrencyMismatch = errors.New("currency mismatch")

	ErrQtyNotPositive    = errors.New("qty must be positive")
	ErrInsufficientStock = errors.New("insufficient inventory")

	ErrOrderNotDraft           = errors.New("order is not in draft")
	ErrOrderEmpty              = errors.New("order has no lines")
	ErrOrderNotSubmitted       = errors.New("order is not submitted")
	ErrOrderNotPaid            = errors.New("order is not paid")
	ErrOrderNotCancelable      = errors.New("order can no longer be canceled")
	ErrDiscountExceedsSubtotal = errors.New("discount exceeds subtotal")
)
