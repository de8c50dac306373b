// Package apperror holds the error kinds shared by the payroll calculation
// components. Domain packages keep their own not-found and conflict sentinels.
package apperror

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrFutureDate    = errors.New("date cannot be in the future")
	ErrOverpayment   = errors.New("payment exceeds remaining balance")
	ErrAdvanceLimit  = errors.New("advance exceeds allowed limit")
	ErrDataIntegrity = errors.New("data integrity violation")
)

// InvalidInput wraps ErrInvalidInput with a formatted reason.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// DataIntegrity wraps ErrDataIntegrity with a formatted reason.
func DataIntegrity(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDataIntegrity, fmt.Sprintf(format, args...))
}

// FutureDate wraps ErrFutureDate naming the rejected field.
func FutureDate(field string) error {
	return fmt.Errorf("%w: %s", ErrFutureDate, field)
}

// LimitError is returned when an amount breaks a ceiling. Limit is the
// largest amount that would still have been accepted.
type LimitError struct {
	Kind    error
	Limit   decimal.Decimal
	Message string
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s (max remaining: %s)", e.Message, e.Limit.StringFixed(2))
}

func (e *LimitError) Unwrap() error {
	return e.Kind
}

// Overpayment builds the error for a payment above the remaining headroom.
func Overpayment(headroom decimal.Decimal) error {
	return &LimitError{
		Kind:    ErrOverpayment,
		Limit:   headroom,
		Message: "payment exceeds remaining balance",
	}
}

// AdvanceLimit builds the error for an advance above the department cap.
func AdvanceLimit(headroom decimal.Decimal, percentage decimal.Decimal) error {
	return &LimitError{
		Kind:    ErrAdvanceLimit,
		Limit:   headroom,
		Message: fmt.Sprintf("advance exceeds %s%% of gross salary", percentage.String()),
	}
}
