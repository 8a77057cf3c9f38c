/*
Package shift implements cash-register shifts and kitchen inventory sessions.

LIFECYCLE:
  Both a cash shift and an inventory session are created OPEN and move to
  CLOSED exactly once. At most one of each may be open at a time; the
  Service refuses to open a second one and the SQLite store backs that with
  a partial unique index.

CASH RECONCILIATION:
  cash     = initialAmount + Σ cash income − Σ cash expense
  transfer = Σ transfer income − Σ transfer expense   (no opening float)
  variance = declared final cash − cash
  balanced = |variance| < 10

INVENTORY RECONCILIATION:
  consumption = initial − final, computed on close. A negative consumption
  (stock went up) is kept as is for a human to review.

SEE ALSO:
  - generic/ledger.go: Tally and Trail used for the running balances
  - service.go: open/record/close flows over a Repository
*/
package shift

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/parrilla/backoffice/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// STATUS
// =============================================================================

type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// BalanceTolerance is the largest cash variance, exclusive, at which a shift
// still counts as balanced.
var BalanceTolerance = decimal.NewFromInt(10)

// =============================================================================
// CASH TRANSACTION
// =============================================================================

type CashTransaction struct {
	ID          string
	ShiftID     string
	Type        generic.Direction
	Method      generic.Method
	Category    string
	Description string
	Amount      decimal.Decimal
	CreatedAt   time.Time
}

func (t CashTransaction) MovementDirection() generic.Direction { return t.Type }
func (t CashTransaction) MovementAmount() decimal.Decimal      { return t.Amount }
func (t CashTransaction) Voided() bool                         { return false }

// Validate enforces amount > 0 and known type/method.
func (t CashTransaction) Validate() error {
	if !t.Type.Valid() {
		return fmt.Errorf("%w: unknown transaction type %q", generic.ErrInvalidInput, t.Type)
	}
	if !t.Method.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", generic.ErrInvalidInput, t.Method)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: transaction amount must be greater than zero", generic.ErrInvalidAmount)
	}
	return nil
}

func isCash(t CashTransaction) bool     { return t.Method == generic.MethodCash }
func isTransfer(t CashTransaction) bool { return t.Method == generic.MethodTransfer }

// =============================================================================
// CASH SHIFT
// =============================================================================

type CashShift struct {
	ID            string
	Status        Status
	InitialAmount decimal.Decimal
	OpenedBy      string
	OpenedAt      time.Time

	// Set on close.
	FinalCash     decimal.Decimal
	FinalTransfer decimal.Decimal
	OrderCounts   map[string]int // orders per channel (salon, delivery, ...)
	ClosedBy      string
	ClosedAt      *time.Time

	Transactions []CashTransaction // in the order they were recorded
}

// NewCashShift opens a shift with an opening float.
func NewCashShift(initial decimal.Decimal, openedBy string, now time.Time) (CashShift, error) {
	if initial.IsNegative() {
		return CashShift{}, fmt.Errorf("%w: opening float must not be negative", generic.ErrInvalidAmount)
	}
	return CashShift{
		ID:            generic.NewID(),
		Status:        StatusOpen,
		InitialAmount: generic.RoundMoney(initial),
		OpenedBy:      openedBy,
		OpenedAt:      now,
		FinalCash:     decimal.Zero,
		FinalTransfer: decimal.Zero,
	}, nil
}

func (s CashShift) IsOpen() bool { return s.Status == StatusOpen }

// Add appends a transaction to an open shift.
func (s *CashShift) Add(t CashTransaction) error {
	if !s.IsOpen() {
		return generic.ErrShiftClosed
	}
	if err := t.Validate(); err != nil {
		return err
	}
	s.Transactions = append(s.Transactions, t)
	return nil
}

// Close records the declared counts and moves the shift to CLOSED.
func (s *CashShift) Close(finalCash, finalTransfer decimal.Decimal, orders map[string]int, closedBy string, now time.Time) (CloseReport, error) {
	if !s.IsOpen() {
		return CloseReport{}, generic.ErrShiftClosed
	}
	if finalCash.IsNegative() || finalTransfer.IsNegative() {
		return CloseReport{}, fmt.Errorf("%w: declared counts must not be negative", generic.ErrInvalidAmount)
	}
	for channel, n := range orders {
		if n < 0 {
			return CloseReport{}, fmt.Errorf("%w: negative order count for %q", generic.ErrInvalidInput, channel)
		}
	}
	s.Status = StatusClosed
	s.FinalCash = generic.RoundMoney(finalCash)
	s.FinalTransfer = generic.RoundMoney(finalTransfer)
	s.OrderCounts = orders
	s.ClosedBy = closedBy
	s.ClosedAt = &now
	return Reconcile(*s, s.FinalCash, s.FinalTransfer), nil
}

// =============================================================================
// RECONCILIATION
// =============================================================================

// RunningCash is the cash expected in the drawer right now.
func RunningCash(s CashShift) decimal.Decimal {
	return s.InitialAmount.Add(generic.Tally(s.Transactions, isCash).Net())
}

// RunningTransfer is the net of transfer movements; there is no opening float.
func RunningTransfer(s CashShift) decimal.Decimal {
	return generic.Tally(s.Transactions, isTransfer).Net()
}

// CashTrail returns the cash balance after each transaction.
func CashTrail(s CashShift) []decimal.Decimal {
	return generic.Trail(s.InitialAmount, s.Transactions, isCash)
}

// IsBalanced reports whether a variance is within BalanceTolerance.
func IsBalanced(variance decimal.Decimal) bool {
	return variance.Abs().LessThan(BalanceTolerance)
}

// CloseReport is the end-of-shift reconciliation.
type CloseReport struct {
	ExpectedCash     decimal.Decimal
	ExpectedTransfer decimal.Decimal
	FinalCash        decimal.Decimal
	FinalTransfer    decimal.Decimal
	CashVariance     decimal.Decimal // FinalCash − ExpectedCash
	TransferVariance decimal.Decimal // FinalTransfer − ExpectedTransfer
	Balanced         bool            // |CashVariance| < 10

	Cash       generic.Totals
	Transfer   generic.Totals
	ByCategory map[string]generic.Totals
	Orders     int
}

// Reconcile compares declared counts with the expected balances.
func Reconcile(s CashShift, finalCash, finalTransfer decimal.Decimal) CloseReport {
	expectedCash := RunningCash(s)
	expectedTransfer := RunningTransfer(s)
	variance := finalCash.Sub(expectedCash)

	orders := 0
	for _, n := range s.OrderCounts {
		orders += n
	}

	return CloseReport{
		ExpectedCash:     expectedCash,
		ExpectedTransfer: expectedTransfer,
		FinalCash:        finalCash,
		FinalTransfer:    finalTransfer,
		CashVariance:     variance,
		TransferVariance: finalTransfer.Sub(expectedTransfer),
		Balanced:         IsBalanced(variance),
		Cash:             generic.Tally(s.Transactions, isCash),
		Transfer:         generic.Tally(s.Transactions, isTransfer),
		ByCategory: generic.ByCategory(s.Transactions, func(t CashTransaction) string {
			return normalizeCategory(t.Category)
		}),
		Orders: orders,
	}
}

// Categories lists the categories used in the shift, sorted.
func Categories(s CashShift) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range s.Transactions {
		c := normalizeCategory(t.Category)
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

func normalizeCategory(c string) string {
	c = strings.TrimSpace(c)
	if c == "" {
		return "General"
	}
	return c
}
