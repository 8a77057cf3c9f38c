package finance

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/parrilla/backoffice/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// REPOSITORY
// =============================================================================

// Repository persists finance records. WithTx runs fn against a repository
// bound to one transaction; fn returning an error rolls everything back.
type Repository interface {
	WithTx(ctx context.Context, fn func(Repository) error) error

	SaveProduct(ctx context.Context, p Product) error
	GetProduct(ctx context.Context, id string) (Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context) ([]Product, error)

	SaveProjection(ctx context.Context, p Projection) error
	ListProjections(ctx context.Context, limit int) ([]Projection, error)

	SavePartner(ctx context.Context, p Partner) error
	GetPartner(ctx context.Context, id string) (Partner, error)
	DeletePartner(ctx context.Context, id string) error
	ListPartners(ctx context.Context) ([]Partner, error)

	SaveWalletTransaction(ctx context.Context, t WalletTransaction) error
	GetWalletTransaction(ctx context.Context, id string) (WalletTransaction, error)
	ListWalletTransactions(ctx context.Context, period generic.Period, includeVoided bool) ([]WalletTransaction, error)

	SaveFixedExpense(ctx context.Context, e FixedExpense) error
	GetFixedExpense(ctx context.Context, id string) (FixedExpense, error)
	DeleteFixedExpense(ctx context.Context, id string) error
	ListFixedExpenses(ctx context.Context) ([]FixedExpense, error)
}

// =============================================================================
// SERVICE
// =============================================================================

type Service struct {
	Repo   Repository
	Logger *slog.Logger
	Now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{Repo: repo, Logger: logger, Now: time.Now}
}

// -----------------------------------------------------------------------------
// Products
// -----------------------------------------------------------------------------

// SaveProduct creates the product when ID is empty and replaces it otherwise.
func (s *Service) SaveProduct(ctx context.Context, p Product) (Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	if p.ID == "" {
		p.ID = generic.NewID()
		p.CreatedAt = s.Now().UTC()
	} else {
		existing, err := s.Repo.GetProduct(ctx, p.ID)
		if err != nil {
			return Product{}, err
		}
		p.CreatedAt = existing.CreatedAt
	}
	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		return Product{}, fmt.Errorf("save product: %w", err)
	}
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.Repo.DeleteProduct(ctx, id)
}

func (s *Service) Product(ctx context.Context, id string) (Product, error) {
	return s.Repo.GetProduct(ctx, id)
}

func (s *Service) Products(ctx context.Context) ([]Product, error) {
	return s.Repo.ListProducts(ctx)
}

// Quote aggregates the quantities against the current catalog.
func (s *Service) Quote(ctx context.Context, quantities map[string]int) (Totals, error) {
	catalog, err := s.Repo.ListProducts(ctx)
	if err != nil {
		return Totals{}, err
	}
	return Aggregate(catalog, quantities)
}

// -----------------------------------------------------------------------------
// Projections
// -----------------------------------------------------------------------------

// ProjectionResult is what closing a projection produced.
type ProjectionResult struct {
	Projection Projection
	Wallet     WalletTransaction
	Shares     []Share
}

// CloseProjection quotes the quantities, applies realSales (nil accepts the
// theoretical total) and commits the wallet income, the partner credits and
// the projection snapshot in one transaction.
func (s *Service) CloseProjection(ctx context.Context, quantities map[string]int, realSales *decimal.Decimal, by string) (ProjectionResult, error) {
	if realSales != nil && realSales.IsNegative() {
		return ProjectionResult{}, fmt.Errorf("%w: real sales must not be negative", generic.ErrInvalidAmount)
	}
	totals, err := s.Quote(ctx, quantities)
	if err != nil {
		return ProjectionResult{}, err
	}
	if len(totals.Lines) == 0 {
		return ProjectionResult{}, fmt.Errorf("%w: projection has no products", generic.ErrInvalidInput)
	}

	now := s.Now().UTC()
	proj := CloseProjection(totals, realSales)
	proj.ID = generic.NewID()
	proj.Quantities = positive(quantities)
	proj.CreatedBy = by
	proj.CreatedAt = now

	var result ProjectionResult
	err = s.Repo.WithTx(ctx, func(tx Repository) error {
		partners, err := tx.ListPartners(ctx)
		if err != nil {
			return err
		}

		var wallet WalletTransaction
		if proj.RealSales.IsPositive() {
			wallet = WalletTransaction{
				ID:          generic.NewID(),
				Type:        generic.Income,
				Category:    CategorySales,
				Description: "Cierre de proyección",
				Amount:      proj.RealSales,
				Date:        generic.DateOf(now),
				Reference:   proj.ID,
				CreatedBy:   by,
				CreatedAt:   now,
			}
			if err := tx.SaveWalletTransaction(ctx, wallet); err != nil {
				return fmt.Errorf("save wallet income: %w", err)
			}
		}

		shares := Distribute(partners, proj.AdjustedPartnerProfit)
		for i := range partners {
			partners[i].Credit(shares[i].Amount)
			if err := tx.SavePartner(ctx, partners[i]); err != nil {
				return fmt.Errorf("credit partner %s: %w", partners[i].ID, err)
			}
		}

		if err := tx.SaveProjection(ctx, proj); err != nil {
			return fmt.Errorf("save projection: %w", err)
		}
		result = ProjectionResult{Projection: proj, Wallet: wallet, Shares: shares}
		return nil
	})
	if err != nil {
		return ProjectionResult{}, err
	}

	s.Logger.Info("projection closed",
		"projection_id", proj.ID,
		"total", proj.Totals.Total.StringFixed(2),
		"real_sales", proj.RealSales.StringFixed(2),
		"adjusted_partner_profit", proj.AdjustedPartnerProfit.StringFixed(2),
		"partners", len(result.Shares),
	)
	return result, nil
}

// Projections lists closed projections newest first. limit <= 0 means all.
func (s *Service) Projections(ctx context.Context, limit int) ([]Projection, error) {
	return s.Repo.ListProjections(ctx, limit)
}

func positive(quantities map[string]int) map[string]int {
	out := make(map[string]int, len(quantities))
	for id, q := range quantities {
		if q > 0 {
			out[id] = q
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// Partners
// -----------------------------------------------------------------------------

// SavePartner creates or updates a partner. The balance is only changed by
// projections and payments; updates keep the stored one.
func (s *Service) SavePartner(ctx context.Context, p Partner) (Partner, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return Partner{}, err
	}
	if p.ID == "" {
		p.ID = generic.NewID()
		p.Balance = decimal.Zero
		p.CreatedAt = s.Now().UTC()
	} else {
		existing, err := s.Repo.GetPartner(ctx, p.ID)
		if err != nil {
			return Partner{}, err
		}
		p.Balance = existing.Balance
		p.CreatedAt = existing.CreatedAt
	}
	if err := s.Repo.SavePartner(ctx, p); err != nil {
		return Partner{}, fmt.Errorf("save partner: %w", err)
	}
	if partners, err := s.Repo.ListPartners(ctx); err == nil {
		if total := TotalShare(partners); !total.Equal(hundred) {
			s.Logger.Warn("partner shares do not add up to 100", "total", total.String())
		}
	}
	return p, nil
}

func (s *Service) DeletePartner(ctx context.Context, id string) error {
	return s.Repo.DeletePartner(ctx, id)
}

func (s *Service) Partner(ctx context.Context, id string) (Partner, error) {
	return s.Repo.GetPartner(ctx, id)
}

func (s *Service) Partners(ctx context.Context) ([]Partner, error) {
	return s.Repo.ListPartners(ctx)
}

// PayRoyalty pays a partner. A nil amount pays the full balance. The amount
// must be positive; amounts above the balance still clamp the balance at
// zero, callers that must refuse them check Partner.Balance first.
func (s *Service) PayRoyalty(ctx context.Context, partnerID string, amount *decimal.Decimal, by string) (Partner, WalletTransaction, error) {
	var (
		paid   Partner
		wallet WalletTransaction
	)
	err := s.Repo.WithTx(ctx, func(tx Repository) error {
		p, err := tx.GetPartner(ctx, partnerID)
		if err != nil {
			return err
		}
		pay := p.Balance
		if amount != nil {
			pay = generic.RoundMoney(*amount)
		}
		if !pay.IsPositive() {
			return fmt.Errorf("%w: payment must be greater than zero", generic.ErrInvalidAmount)
		}

		now := s.Now().UTC()
		wallet = WalletTransaction{
			ID:          generic.NewID(),
			Type:        generic.Expense,
			Category:    CategoryRoyalties,
			Description: "Pago a " + p.Name,
			Amount:      pay,
			Date:        generic.DateOf(now),
			Reference:   p.ID,
			CreatedBy:   by,
			CreatedAt:   now,
		}
		if err := tx.SaveWalletTransaction(ctx, wallet); err != nil {
			return fmt.Errorf("save wallet expense: %w", err)
		}

		paid, _ = ApplyPayment(p, pay)
		return tx.SavePartner(ctx, paid)
	})
	if err != nil {
		return Partner{}, WalletTransaction{}, err
	}
	s.Logger.Info("royalty paid", "partner_id", partnerID, "amount", wallet.Amount.StringFixed(2), "balance", paid.Balance.StringFixed(2))
	return paid, wallet, nil
}

// -----------------------------------------------------------------------------
// Wallet
// -----------------------------------------------------------------------------

// WalletInput is a manual ledger entry.
type WalletInput struct {
	Type        generic.Direction
	Category    string
	Description string
	Amount      decimal.Decimal
	Date        generic.TimePoint
}

func (s *Service) RecordWallet(ctx context.Context, in WalletInput, by string) (WalletTransaction, error) {
	now := s.Now().UTC()
	date := in.Date
	if date.IsZero() {
		date = generic.DateOf(now)
	}
	t := WalletTransaction{
		ID:          generic.NewID(),
		Type:        in.Type,
		Category:    strings.TrimSpace(in.Category),
		Description: in.Description,
		Amount:      generic.RoundMoney(in.Amount),
		Date:        date,
		CreatedBy:   by,
		CreatedAt:   now,
	}
	if err := t.Validate(); err != nil {
		return WalletTransaction{}, err
	}
	if err := s.Repo.SaveWalletTransaction(ctx, t); err != nil {
		return WalletTransaction{}, fmt.Errorf("save wallet transaction: %w", err)
	}
	return t, nil
}

// VoidWallet soft-deletes an entry. It stays listed with includeVoided.
func (s *Service) VoidWallet(ctx context.Context, id, by string) (WalletTransaction, error) {
	t, err := s.Repo.GetWalletTransaction(ctx, id)
	if err != nil {
		return WalletTransaction{}, err
	}
	if err := t.Void(by, s.Now().UTC()); err != nil {
		return WalletTransaction{}, err
	}
	if err := s.Repo.SaveWalletTransaction(ctx, t); err != nil {
		return WalletTransaction{}, fmt.Errorf("void wallet transaction: %w", err)
	}
	s.Logger.Info("wallet transaction voided", "id", id, "by", by)
	return t, nil
}

func (s *Service) Wallet(ctx context.Context, period generic.Period, includeVoided bool) ([]WalletTransaction, error) {
	return s.Repo.ListWalletTransactions(ctx, period, includeVoided)
}

// WalletBalance sums the live entries in the period.
func (s *Service) WalletBalance(ctx context.Context, period generic.Period) (generic.Totals, error) {
	txs, err := s.Repo.ListWalletTransactions(ctx, period, false)
	if err != nil {
		return generic.Totals{}, err
	}
	return WalletBalance(txs), nil
}

// -----------------------------------------------------------------------------
// Fixed expenses
// -----------------------------------------------------------------------------

func (s *Service) SaveFixedExpense(ctx context.Context, e FixedExpense) (FixedExpense, error) {
	e.Name = strings.TrimSpace(e.Name)
	if e.ID == "" {
		e.ID = generic.NewID()
		e.PaidAmount = decimal.Zero
		e.CreatedAt = s.Now().UTC()
	} else {
		existing, err := s.Repo.GetFixedExpense(ctx, e.ID)
		if err != nil {
			return FixedExpense{}, err
		}
		e.PaidAmount = existing.PaidAmount
		e.CreatedAt = existing.CreatedAt
	}
	if err := e.Validate(); err != nil {
		return FixedExpense{}, err
	}
	if err := s.Repo.SaveFixedExpense(ctx, e); err != nil {
		return FixedExpense{}, fmt.Errorf("save fixed expense: %w", err)
	}
	return e, nil
}

func (s *Service) DeleteFixedExpense(ctx context.Context, id string) error {
	return s.Repo.DeleteFixedExpense(ctx, id)
}

// FixedExpenses lists expenses by due date, earliest first.
func (s *Service) FixedExpenses(ctx context.Context) ([]FixedExpense, error) {
	out, err := s.Repo.ListFixedExpenses(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

// PayExpense records an instalment and the matching wallet expense. A nil
// amount pays what is outstanding.
func (s *Service) PayExpense(ctx context.Context, id string, amount *decimal.Decimal, by string) (FixedExpense, WalletTransaction, error) {
	var (
		paid   FixedExpense
		wallet WalletTransaction
	)
	err := s.Repo.WithTx(ctx, func(tx Repository) error {
		e, err := tx.GetFixedExpense(ctx, id)
		if err != nil {
			return err
		}
		pay := e.Outstanding()
		if amount != nil {
			pay = generic.RoundMoney(*amount)
		}
		if err := e.Pay(pay); err != nil {
			return err
		}

		now := s.Now().UTC()
		category := e.Category
		if category == "" {
			category = CategoryFixedExpense
		}
		wallet = WalletTransaction{
			ID:          generic.NewID(),
			Type:        generic.Expense,
			Category:    category,
			Description: e.Name,
			Amount:      pay,
			Date:        generic.DateOf(now),
			Reference:   e.ID,
			CreatedBy:   by,
			CreatedAt:   now,
		}
		if err := tx.SaveWalletTransaction(ctx, wallet); err != nil {
			return fmt.Errorf("save wallet expense: %w", err)
		}
		paid = e
		return tx.SaveFixedExpense(ctx, e)
	})
	if err != nil {
		return FixedExpense{}, WalletTransaction{}, err
	}
	s.Logger.Info("fixed expense paid", "expense_id", id, "amount", wallet.Amount.StringFixed(2), "paid", paid.IsPaid())
	return paid, wallet, nil
}
