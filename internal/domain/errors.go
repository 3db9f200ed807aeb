package domain

import "errors"

// Domain-specific errors for business logic validation.
var (
	// Cart errors
	ErrCartNotFound          = errors.New("cart not found")
	ErrItemNotFound          = errors.New("cart item not found")
	ErrQuantityLimitExceeded = errors.New("item quantity limit exceeded")
	ErrCartFull              = errors.New("cart line limit reached")

	// Validation errors
	ErrInvalidUserID    = errors.New("invalid user id")
	ErrInvalidProductID = errors.New("invalid product id")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidPrice     = errors.New("invalid unit price")
	ErrInvalidName      = errors.New("invalid item name")
)
