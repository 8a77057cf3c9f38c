/*
Package finance implements the profitability calculator, partner royalties,
the company wallet and fixed expenses.

PROFITABILITY:
  Each Product carries four per-unit buckets. Aggregate multiplies them by
  the requested quantities:

    labor     = Σ laborCost    × qty
    material  = Σ materialCost × qty
    royalties = Σ royalties    × qty   shown as "Ganancia Neta"
    profit    = Σ profit       × qty   shown as "Regalías"
    total     = labor + material + royalties + profit

  The two last labels look swapped. Partner payouts are computed from the
  profit field, so the field-to-label mapping is kept exactly as operators
  know it (see Labels).

CLOSING A PROJECTION:
  diff                  = realSales − total
  adjustedPartnerProfit = profit + diff

  The whole variance lands on the partner bucket. Closing writes a wallet
  INCOME for realSales, credits every partner with
  adjustedPartnerProfit × share / 100, and stores an immutable Projection.

SEE ALSO:
  - royalty.go: Distribute and ApplyPayment
  - service.go: the atomic close over a Repository
*/
package finance

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/parrilla/backoffice/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// PRODUCT
// =============================================================================

type Product struct {
	ID           string
	Name         string
	LaborCost    decimal.Decimal
	MaterialCost decimal.Decimal
	Royalties    decimal.Decimal
	Profit       decimal.Decimal
	CreatedAt    time.Time
}

// UnitPrice is the sum of the four buckets for one unit.
func (p Product) UnitPrice() decimal.Decimal {
	return p.LaborCost.Add(p.MaterialCost).Add(p.Royalties).Add(p.Profit)
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", generic.ErrInvalidInput)
	}
	for field, v := range map[string]decimal.Decimal{
		"labor cost":    p.LaborCost,
		"material cost": p.MaterialCost,
		"royalties":     p.Royalties,
		"profit":        p.Profit,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", generic.ErrInvalidAmount, field)
		}
	}
	return nil
}

// =============================================================================
// LABELS
// =============================================================================

// Labels are the display names of the four buckets. Royalties and Profit are
// labelled the other way round from their field names; downstream partner
// payments depend on this mapping.
var Labels = struct {
	Labor     string
	Material  string
	Royalties string
	Profit    string
	Total     string
}{
	Labor:     "Mano de Obra",
	Material:  "Materiales",
	Royalties: "Ganancia Neta",
	Profit:    "Regalías",
	Total:     "Total",
}

// =============================================================================
// AGGREGATE
// =============================================================================

// Line is one product's contribution to a quote.
type Line struct {
	ProductID string
	Name      string
	Quantity  int
	Subtotal  decimal.Decimal
}

// Totals are the theoretical bucket sums for a set of quantities.
type Totals struct {
	Labor     decimal.Decimal
	Material  decimal.Decimal
	Royalties decimal.Decimal
	Profit    decimal.Decimal
	Total     decimal.Decimal
	Lines     []Line
}

func zeroTotals() Totals {
	return Totals{
		Labor:     decimal.Zero,
		Material:  decimal.Zero,
		Royalties: decimal.Zero,
		Profit:    decimal.Zero,
		Total:     decimal.Zero,
	}
}

// Aggregate sums the buckets of every product with a positive quantity.
// Lines come out in catalog order. A quantity for a product that is not in
// the catalog wraps generic.ErrNotFound; a negative quantity is invalid.
func Aggregate(catalog []Product, quantities map[string]int) (Totals, error) {
	known := make(map[string]bool, len(catalog))
	for _, p := range catalog {
		known[p.ID] = true
	}
	ids := make([]string, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		qty := quantities[id]
		if qty < 0 {
			return Totals{}, fmt.Errorf("%w: negative quantity for product %s", generic.ErrInvalidInput, id)
		}
		if qty > 0 && !known[id] {
			return Totals{}, fmt.Errorf("product %s: %w", id, generic.ErrNotFound)
		}
	}

	t := zeroTotals()
	for _, p := range catalog {
		qty := quantities[p.ID]
		if qty <= 0 {
			continue
		}
		q := decimal.NewFromInt(int64(qty))
		t.Labor = t.Labor.Add(p.LaborCost.Mul(q))
		t.Material = t.Material.Add(p.MaterialCost.Mul(q))
		t.Royalties = t.Royalties.Add(p.Royalties.Mul(q))
		t.Profit = t.Profit.Add(p.Profit.Mul(q))
		t.Lines = append(t.Lines, Line{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  qty,
			Subtotal:  p.UnitPrice().Mul(q),
		})
	}
	t.Total = t.Labor.Add(t.Material).Add(t.Royalties).Add(t.Profit)
	return t, nil
}

// =============================================================================
// PROJECTION
// =============================================================================

// Projection is the immutable record of a closed calculation.
type Projection struct {
	ID                    string
	Quantities            map[string]int
	Totals                Totals
	RealSales             decimal.Decimal
	Diff                  decimal.Decimal // RealSales − Totals.Total
	AdjustedPartnerProfit decimal.Decimal // Totals.Profit + Diff
	CreatedBy             string
	CreatedAt             time.Time
}

// CloseProjection applies the operator's real sales figure. A nil realSales
// means the theoretical total was accepted as is.
func CloseProjection(t Totals, realSales *decimal.Decimal) Projection {
	sales := t.Total
	if realSales != nil {
		sales = *realSales
	}
	sales = generic.RoundMoney(sales)
	diff := sales.Sub(t.Total)
	return Projection{
		Totals:                t,
		RealSales:             sales,
		Diff:                  diff,
		AdjustedPartnerProfit: t.Profit.Add(diff),
	}
}
