package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/parrilla/backoffice/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// PARTNERS
// =============================================================================

var hundred = decimal.NewFromInt(100)

// Partner holds a share of the partner profit. Shares across partners are
// not required to add up to 100.
type Partner struct {
	ID              string
	Name            string
	SharePercentage decimal.Decimal
	Balance         decimal.Decimal
	CreatedAt       time.Time
}

func (p Partner) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: partner name is required", generic.ErrInvalidInput)
	}
	if p.SharePercentage.IsNegative() || p.SharePercentage.GreaterThan(hundred) {
		return fmt.Errorf("%w: share must be between 0 and 100", generic.ErrInvalidInput)
	}
	return nil
}

// Share is one partner's cut of a distribution.
type Share struct {
	PartnerID  string
	Name       string
	Percentage decimal.Decimal
	Amount     decimal.Decimal
}

// Distribute splits amount by share percentage, rounded to cents. The sum
// of the amounts equals amount × Σshares / 100 up to rounding; with shares
// that add to 100 it equals amount. A negative amount produces negative
// shares.
func Distribute(partners []Partner, amount decimal.Decimal) []Share {
	out := make([]Share, 0, len(partners))
	for _, p := range partners {
		out = append(out, Share{
			PartnerID:  p.ID,
			Name:       p.Name,
			Percentage: p.SharePercentage,
			Amount:     generic.RoundMoney(amount.Mul(p.SharePercentage).Div(hundred)),
		})
	}
	return out
}

// Credit adds a distributed share to the partner's balance.
func (p *Partner) Credit(amount decimal.Decimal) {
	p.Balance = p.Balance.Add(amount)
}

// ApplyPayment subtracts a payment from the balance, clamped at zero. It
// returns the updated partner and the amount actually drawn from the
// balance.
func ApplyPayment(p Partner, amount decimal.Decimal) (Partner, decimal.Decimal) {
	drawn := amount
	if amount.GreaterThan(p.Balance) {
		drawn = decimal.Max(p.Balance, decimal.Zero)
	}
	p.Balance = decimal.Max(p.Balance.Sub(amount), decimal.Zero)
	return p, drawn
}

// RoyaltyPool is the total owed to partners.
func RoyaltyPool(partners []Partner) decimal.Decimal {
	total := decimal.Zero
	for _, p := range partners {
		total = total.Add(p.Balance)
	}
	return total
}

// TotalShare is Σ share percentages; anything other than 100 leaves part of
// a distribution unassigned or over-assigned.
func TotalShare(partners []Partner) decimal.Decimal {
	total := decimal.Zero
	for _, p := range partners {
		total = total.Add(p.SharePercentage)
	}
	return total
}
