/*
errors.go - Centralized error types for the back office

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Input errors - amounts and clock times that cannot be parsed
  2. Lifecycle errors - shift open/close rule violations
  3. Store errors - missing records

USAGE:
  if errors.Is(err, generic.ErrShiftAlreadyOpen) {
      // show the current shift instead of opening a new one
  }

SEE ALSO:
  - api/handlers.go: maps these errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidAmount is returned when an amount is not a number or is not
	// greater than zero where it must be.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidClock is returned when a wall-clock time is not "HH:MM".
	ErrInvalidClock = errors.New("invalid clock time")

	// ErrShiftAlreadyOpen is returned when opening a shift while another one
	// is still open. Only one cash shift and one inventory session may be
	// open at a time.
	ErrShiftAlreadyOpen = errors.New("a shift is already open")

	// ErrNoOpenShift is returned when an operation needs the open shift and
	// there is none.
	ErrNoOpenShift = errors.New("no open shift")

	// ErrShiftClosed is returned when mutating a shift that was already closed.
	ErrShiftClosed = errors.New("shift already closed")

	// ErrInsufficientBalance is returned when a payment exceeds what is owed.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrMissingCount is returned when closing an inventory session without a
	// final count for every item.
	ErrMissingCount = errors.New("missing inventory count")

	// ErrInvalidInput is returned for malformed records (negative salary,
	// unknown transaction type, empty name).
	ErrInvalidInput = errors.New("invalid input")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ParseError reports operator input that could not be read as an amount.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid amount %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrInvalidAmount
}

// ClockError reports a time-of-day that is not "HH:MM".
type ClockError struct {
	Input string
}

func (e *ClockError) Error() string {
	return fmt.Sprintf("invalid clock time %q (use HH:MM)", e.Input)
}

func (e *ClockError) Unwrap() error {
	return ErrInvalidClock
}

// InsufficientBalanceError provides details about a payment larger than the
// balance it draws from.
type InsufficientBalanceError struct {
	Available Amount
	Requested Amount
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %s, requested %s",
		e.Available.Value.StringFixed(MoneyPlaces), e.Requested.Value.StringFixed(MoneyPlaces))
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// MissingCountError lists the items left without a closing count.
type MissingCountError struct {
	Items []string
}

func (e *MissingCountError) Error() string {
	return fmt.Sprintf("missing final count for %v", e.Items)
}

func (e *MissingCountError) Unwrap() error {
	return ErrMissingCount
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidClock) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrMissingCount)
}

// IsConflict returns true if the error is a shift lifecycle violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrShiftAlreadyOpen) ||
		errors.Is(err, ErrNoOpenShift) ||
		errors.Is(err, ErrShiftClosed)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
