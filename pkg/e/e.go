package e

import (
	"errors"
	"fmt"
)

var (
	// 400 Bad Request
	ErrInvalidQuantity      = errors.New("quantity must be a positive integer within range")
	ErrInvalidDelta         = errors.New("quantity change must be non-zero and within range")
	ErrInvalidSession       = errors.New("invalid cart session")
	ErrInvalidPrice         = errors.New("invalid price")
	ErrPricePrecision       = errors.New("price must have at most 2 decimal places")
	ErrMissingFields        = errors.New("missing required fields")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrWeakPassword         = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrStockLimit           = errors.New("stock would exceed the maximum quantity")
	ErrCartEmpty            = errors.New("cart is empty")
	ErrIncorrectEnvVariable = errors.New("incorrect environment variable")

	// 403 / 404 / 409 / 429
	ErrForbidden           = errors.New("forbidden")
	ErrVendorInactive      = errors.New("vendor account is not active")
	ErrProductNotFound     = errors.New("product not found")
	ErrReservationNotFound = errors.New("item not in cart")
	ErrVendorNotFound      = errors.New("vendor not found")
	ErrDuplicatedValue     = errors.New("duplicated value")
	ErrTooManyAttempts     = errors.New("too many failed attempts")

	// 500
	ErrInternalServerError = errors.New("internal server error")
)

// Wrap prefixes err with msg, keeping it matchable with errors.Is.
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
