package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a medicine id does not reference a row.
var ErrNotFound = errors.New("medicine not found")

// ValidationError reports malformed input. Message is safe to show to
// clients.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid builds a ValidationError for field.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// InsufficientStockError is returned when a dispense asks for more than is
// on hand.
type InsufficientStockError struct {
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient quantity: available %d, requested %d", e.Available, e.Requested)
}
