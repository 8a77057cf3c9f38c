/*
Package generic provides the domain-agnostic building blocks of the back office.

PURPOSE:
  Everything the payroll, shift and finance packages share lives here:
  quantities with units, wall-clock arithmetic, calendar periods, holiday
  lookup, income/expense tallies and the error vocabulary. Nothing in this
  package knows about employees, cash drawers or partners.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: a value with its unit, for messages shown to operators
  - ParseAmount: strict numeric parsing of operator input
  - NewID: record identifiers

DESIGN PRINCIPLES:
  1. Precision: money is decimal.Decimal, rounded to cents when a record is
     created, never float64
  2. Explicit failure: operator input that is not a number is reported with
     a *ParseError instead of being coerced to zero

USAGE:
  v, err := generic.ParseAmount("1.234,50") // 1234.50
  kg, err := generic.ParseAmount("2.500")    // 2.5
  _, err = generic.ParsePositiveAmount("0")  // *ParseError
  fmt.Println(generic.Money(v))              // 1234.50 ARS

SEE ALSO:
  - clock.go: "HH:MM" arithmetic
  - ledger.go: income/expense tallies
  - errors.go: sentinel and structured errors
*/
package generic

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

// Amount is a value tagged with its unit, used where a number is reported
// back to an operator.
type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const UnitARS Unit = "ARS"

// MoneyPlaces is the number of decimal places money is rounded to.
const MoneyPlaces = 2

func Money(value decimal.Decimal) Amount { return Amount{Value: value, Unit: UnitARS} }

// RoundMoney rounds a monetary value to cents.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

func (a Amount) String() string { return a.Value.StringFixed(MoneyPlaces) + " " + string(a.Unit) }

// =============================================================================
// PARSING - Operator input
// =============================================================================

// ParseAmount parses a numeric amount typed by an operator.
//
// Accepted forms:
//   - "1234.5", "2.500"  a single dot is always the decimal point
//   - "1234,5"           decimal comma
//   - "1.234,50"         dots group thousands when a decimal comma follows
//   - "1.234.567"        several dot groups are thousands separators
//   - "$ 1.500,00"       leading currency sign and spaces are ignored
//
// A comma before the last dot ("1,234.50") is rejected rather than guessed.
// Empty or non-numeric input returns a *ParseError wrapping ErrInvalidAmount.
func ParseAmount(input string) (decimal.Decimal, error) {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, &ParseError{Input: input, Reason: "empty"}
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma < lastDot {
			return decimal.Zero, &ParseError{Input: input, Reason: "comma before decimal point"}
		}
		// 1.234,50
		whole := s[:lastComma]
		if !isThousandsGrouped(whole) {
			return decimal.Zero, &ParseError{Input: input, Reason: "misplaced thousands separator"}
		}
		s = strings.ReplaceAll(whole, ".", "") + "." + s[lastComma+1:]
	case lastComma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		// 1.234.567
		if !isThousandsGrouped(s) {
			return decimal.Zero, &ParseError{Input: input, Reason: "misplaced thousands separator"}
		}
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ParseError{Input: input, Reason: "not a number"}
	}
	return d, nil
}

// isThousandsGrouped reports whether s is a run of digits with dots every
// three places: "1.234", "1.234.567", or no dot at all.
func isThousandsGrouped(s string) bool {
	parts := strings.Split(strings.TrimPrefix(s, "-"), ".")
	if parts[0] == "" || (len(parts) > 1 && len(parts[0]) > 3) {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}

// ParsePositiveAmount is ParseAmount plus the "> 0" rule applied to every
// transaction and payment amount.
func ParsePositiveAmount(input string) (decimal.Decimal, error) {
	d, err := ParseAmount(input)
	if err != nil {
		return d, err
	}
	if !d.IsPositive() {
		return decimal.Zero, &ParseError{Input: input, Reason: "must be greater than zero"}
	}
	return d, nil
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

// NewID returns a random record identifier.
func NewID() string {
	return uuid.NewString()
}
