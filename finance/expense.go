package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/parrilla/backoffice/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// FIXED EXPENSES
// =============================================================================

// FixedExpense is a recurring bill (rent, utilities) that may be paid in
// several instalments.
type FixedExpense struct {
	ID         string
	Name       string
	Category   string
	Amount     decimal.Decimal
	PaidAmount decimal.Decimal
	DueDate    generic.TimePoint
	CreatedAt  time.Time
}

func (e FixedExpense) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: expense name is required", generic.ErrInvalidInput)
	}
	if !e.Amount.IsPositive() {
		return fmt.Errorf("%w: expense amount must be greater than zero", generic.ErrInvalidAmount)
	}
	if e.PaidAmount.IsNegative() {
		return fmt.Errorf("%w: paid amount must not be negative", generic.ErrInvalidAmount)
	}
	return nil
}

// IsPaid is derived: paid ≥ amount.
func (e FixedExpense) IsPaid() bool {
	return e.PaidAmount.GreaterThanOrEqual(e.Amount)
}

// Outstanding is what is left to pay, never negative.
func (e FixedExpense) Outstanding() decimal.Decimal {
	return decimal.Max(e.Amount.Sub(e.PaidAmount), decimal.Zero)
}

// IsOverdue reports an unpaid expense whose due date is before asOf.
func (e FixedExpense) IsOverdue(asOf generic.TimePoint) bool {
	return !e.IsPaid() && !e.DueDate.IsZero() && e.DueDate.Before(asOf)
}

// Pay records an instalment. Paying more than what is outstanding is
// rejected.
func (e *FixedExpense) Pay(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: payment must be greater than zero", generic.ErrInvalidAmount)
	}
	if amount.GreaterThan(e.Outstanding()) {
		return &generic.InsufficientBalanceError{
			Available: generic.Money(e.Outstanding()),
			Requested: generic.Money(amount),
		}
	}
	e.PaidAmount = e.PaidAmount.Add(generic.RoundMoney(amount))
	return nil
}
