package handlers

import (
	"math"
	"strings"

	"github.com/fejiro0/gomart/internal/models"
	"github.com/fejiro0/gomart/pkg/e"
	"github.com/shopspring/decimal"
)

type ProductValidationError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

var maxCents = decimal.NewFromInt(math.MaxInt64)

// priceToCents converts a positive price with at most two decimals to cents.
func priceToCents(price decimal.Decimal) (int64, error) {
	if !price.IsPositive() {
		return 0, e.ErrInvalidPrice
	}
	if !price.Equal(price.Truncate(2)) {
		return 0, e.ErrPricePrecision
	}
	cents := price.Shift(2)
	if cents.GreaterThan(maxCents) {
		return 0, e.ErrInvalidPrice
	}
	return cents.IntPart(), nil
}

func validateProduct(p ProductRequest) []ProductValidationError {
	errs := []ProductValidationError{}
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ProductValidationError{Field: "Name", Description: "Name is required"})
	}
	if _, err := priceToCents(p.Price); err != nil {
		errs = append(errs, ProductValidationError{Field: "Price", Description: err.Error()})
	}
	if p.Quantity < 0 || p.Quantity > models.MaxQuantity {
		errs = append(errs, ProductValidationError{Field: "Quantity", Description: "Quantity must be between 0 and 2147483647"})
	}
	if p.Threshold < 0 || p.Threshold > models.MaxQuantity {
		errs = append(errs, ProductValidationError{Field: "Threshold", Description: "Threshold must be between 0 and 2147483647"})
	}
	return errs
}
