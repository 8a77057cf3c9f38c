/*
ledger.go - Income/expense tallies

PURPOSE:
  Cash shifts and the company wallet are both ordered lists of income and
  expense movements. Their balances are never stored: they are computed by
  replaying the movements, so there is no separate "balance" field that can
  drift out of sync.

CRITICAL INVARIANTS:
  1. Balance = opening + Σ income − Σ expense, over the movements replayed
  2. Movements that report Voided() are excluded from every sum
  3. Amounts are positive; the direction carries the sign

EXAMPLE FLOW:
  opening 5000, +2000 cash income, −500 cash expense
  Tally(...).Net() = 1500, balance = 6500

SEE ALSO:
  - shift/cash.go: running cash and transfer balances of a shift
  - finance/wallet.go: company wallet balance
*/
package generic

import "github.com/shopspring/decimal"

// =============================================================================
// MOVEMENT - Income or expense line
// =============================================================================

type Direction string

const (
	Income  Direction = "INCOME"
	Expense Direction = "EXPENSE"
)

// Valid reports whether d is INCOME or EXPENSE.
func (d Direction) Valid() bool { return d == Income || d == Expense }

// Method is how money moved.
type Method string

const (
	MethodCash     Method = "CASH"
	MethodTransfer Method = "TRANSFER"
)

func (m Method) Valid() bool { return m == MethodCash || m == MethodTransfer }

// Movement is anything that moves money in one direction.
type Movement interface {
	MovementDirection() Direction
	MovementAmount() decimal.Decimal
	Voided() bool
}

// =============================================================================
// TOTALS
// =============================================================================

// Totals holds the income and expense sums of a set of movements.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Count   int
}

// Net returns income minus expense.
func (t Totals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// Add folds one movement into the totals.
func (t Totals) Add(m Movement) Totals {
	if m.Voided() {
		return t
	}
	switch m.MovementDirection() {
	case Income:
		t.Income = t.Income.Add(m.MovementAmount())
	case Expense:
		t.Expense = t.Expense.Add(m.MovementAmount())
	default:
		return t
	}
	t.Count++
	return t
}

// Tally sums the movements accepted by keep. A nil keep accepts all.
func Tally[M Movement](movements []M, keep func(M) bool) Totals {
	t := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, m := range movements {
		if keep != nil && !keep(m) {
			continue
		}
		t = t.Add(m)
	}
	return t
}

// Trail returns the balance after each movement, starting from opening.
// trail[i] is the balance once movements[0..i] have been applied; movements
// rejected by keep or voided leave the balance unchanged at their index.
func Trail[M Movement](opening decimal.Decimal, movements []M, keep func(M) bool) []decimal.Decimal {
	trail := make([]decimal.Decimal, len(movements))
	balance := opening
	for i, m := range movements {
		if (keep == nil || keep(m)) && !m.Voided() {
			switch m.MovementDirection() {
			case Income:
				balance = balance.Add(m.MovementAmount())
			case Expense:
				balance = balance.Sub(m.MovementAmount())
			}
		}
		trail[i] = balance
	}
	return trail
}

// ByCategory groups totals by the key returned for each movement.
func ByCategory[M Movement](movements []M, key func(M) string) map[string]Totals {
	out := make(map[string]Totals)
	for _, m := range movements {
		k := key(m)
		t, ok := out[k]
		if !ok {
			t = Totals{Income: decimal.Zero, Expense: decimal.Zero}
		}
		out[k] = t.Add(m)
	}
	return out
}
