package finance

import (
	"fmt"
	"time"

	"github.com/parrilla/backoffice/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// WALLET
// =============================================================================

// Categories written by the finance flows themselves.
const (
	CategorySales        = "Ventas"
	CategoryRoyalties    = "Regalías"
	CategoryFixedExpense = "Gastos Fijos"
)

// WalletTransaction is an entry in the company ledger. It is independent of
// cash shifts. Voided entries stay stored for audit and are left out of
// every balance.
type WalletTransaction struct {
	ID          string
	Type        generic.Direction
	Category    string
	Description string
	Amount      decimal.Decimal
	Date        generic.TimePoint
	Reference   string // projection, partner or expense id that produced it
	CreatedBy   string
	CreatedAt   time.Time
	DeletedAt   *time.Time
	DeletedBy   string
}

func (t WalletTransaction) MovementDirection() generic.Direction { return t.Type }
func (t WalletTransaction) MovementAmount() decimal.Decimal      { return t.Amount }
func (t WalletTransaction) Voided() bool                         { return t.DeletedAt != nil }

func (t WalletTransaction) Validate() error {
	if !t.Type.Valid() {
		return fmt.Errorf("%w: unknown transaction type %q", generic.ErrInvalidInput, t.Type)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: wallet amount must be greater than zero", generic.ErrInvalidAmount)
	}
	return nil
}

// Void soft-deletes the entry.
func (t *WalletTransaction) Void(by string, now time.Time) error {
	if t.Voided() {
		return fmt.Errorf("%w: wallet transaction %s already voided", generic.ErrInvalidInput, t.ID)
	}
	t.DeletedAt = &now
	t.DeletedBy = by
	return nil
}

// WalletBalance sums the entries that are not voided.
func WalletBalance(txs []WalletTransaction) generic.Totals {
	return generic.Tally(txs, nil)
}

// WalletByCategory groups the live entries by category.
func WalletByCategory(txs []WalletTransaction) map[string]generic.Totals {
	live := make([]WalletTransaction, 0, len(txs))
	for _, t := range txs {
		if !t.Voided() {
			live = append(live, t)
		}
	}
	return generic.ByCategory(live, func(t WalletTransaction) string { return t.Category })
}
