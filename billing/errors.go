package billing

import (
	"errors"
	"fmt"
)

var (
	// ErrAllocationMismatch is returned when manual allocations do not add up to the payment amount.
	ErrAllocationMismatch = errors.New("allocations do not sum to payment amount")

	// ErrInvalidInvoice is returned when an invoice fails save-time validation.
	ErrInvalidInvoice = errors.New("invalid invoice")

	// ErrInvalidPayment is returned when a payment request is malformed.
	ErrInvalidPayment = errors.New("invalid payment")

	// ErrUnknownInvoice is returned when an allocation names an invoice that does
	// not exist or belongs to another party.
	ErrUnknownInvoice = errors.New("unknown invoice")
)

// ValidationError is a business-rule violation on one field, surfaced to the
// user before anything is persisted.
type ValidationError struct {
	// Op is the operation that rejected the input (e.g. "ValidateInvoice").
	Op string

	// Field is the offending json field, may be empty.
	Field string

	Message string

	// Err is the sentinel classifying the failure.
	Err error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("billing: %s: %s: %s", e.Op, e.Field, e.Message)
	}
	return fmt.Sprintf("billing: %s: %s", e.Op, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func newValidationError(op string, err error, field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Op:      op,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}
