package inventory

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrLotNotFound is returned when no stock lot exists for an (order, ingredient) key.
	ErrLotNotFound = errors.New("inventory: stock lot not found")
	// ErrOrderNotFound is returned when the requested order does not exist.
	ErrOrderNotFound = errors.New("inventory: order not found")
	// ErrIngredientNotFound is returned when the requested ingredient does not exist.
	ErrIngredientNotFound = errors.New("inventory: ingredient not found")
	// ErrDuplicateIngredient is returned when an ingredient name is already taken.
	ErrDuplicateIngredient = errors.New("inventory: ingredient already exists")
	// ErrDuplicateLot is returned when an order already holds a lot for the ingredient.
	ErrDuplicateLot = errors.New("inventory: ingredient already recorded for order")
)

// ValidationError reports malformed input. It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InsufficientStockError reports a consumption larger than the on-hand quantity.
// No part of the requested quantity has been applied when it is returned.
type InsufficientStockError struct {
	OrderID      uint
	IngredientID uint
	Available    decimal.Decimal
	Requested    decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	if e.OrderID == 0 && e.IngredientID == 0 {
		return fmt.Sprintf("insufficient stock: requested %s, available %s", e.Requested, e.Available)
	}
	return fmt.Sprintf("insufficient stock for order %d ingredient %d: requested %s, available %s",
		e.OrderID, e.IngredientID, e.Requested, e.Available)
}
