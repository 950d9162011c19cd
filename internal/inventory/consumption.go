package inventory

import "github.com/shopspring/decimal"

// ApplyConsumption returns the quantity left after using quantityUsed from
// currentQuantity. It never clamps: a request larger than the on-hand quantity is
// rejected with *InsufficientStockError and nothing is consumed.
func ApplyConsumption(currentQuantity, quantityUsed decimal.Decimal) (decimal.Decimal, error) {
	if err := validateQuantityUsed(quantityUsed); err != nil {
		return decimal.Zero, err
	}
	if currentQuantity.IsNegative() {
		return decimal.Zero, newValidationError("current_quantity", "must not be negative, got %s", currentQuantity)
	}
	if quantityUsed.GreaterThan(currentQuantity) {
		return decimal.Zero, &InsufficientStockError{
			Available: currentQuantity,
			Requested: quantityUsed,
		}
	}
	return currentQuantity.Sub(quantityUsed), nil
}

func validateQuantityUsed(quantityUsed decimal.Decimal) error {
	return validateQuantity("quantity_used", quantityUsed)
}

// validateQuantity accepts positive quantities that fit the stored precision of
// quantityScale decimal places. Finer quantities are rejected rather than rounded.
func validateQuantity(field string, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return newValidationError(field, "must be greater than zero, got %s", quantity)
	}
	if !quantity.Equal(quantity.Round(quantityScale)) {
		return newValidationError(field, "must have at most %d decimal places, got %s", quantityScale, quantity)
	}
	return nil
}
