package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/parrilla/backoffice/finance"
	"github.com/parrilla/backoffice/generic"
	"github.com/parrilla/backoffice/payroll"
	"github.com/parrilla/backoffice/shift"
)

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(finance.Repository) error) error {
	return s.withTx(ctx, func(tx *Store) error { return fn(tx) })
}

// =============================================================================
// PRODUCTS
// =============================================================================

func (s *Store) SaveProduct(ctx context.Context, p finance.Product) error {
	defer s.lock()()

	query := `
		INSERT INTO products (id, name, labor_cost, material_cost, royalties, profit, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			labor_cost = excluded.labor_cost,
			material_cost = excluded.material_cost,
			royalties = excluded.royalties,
			profit = excluded.profit
	`
	_, err := s.q.ExecContext(ctx, query,
		p.ID, p.Name, p.LaborCost, p.MaterialCost, p.Royalties, p.Profit, formatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

const productColumns = "id, name, labor_cost, material_cost, royalties, profit, created_at"

func scanProduct(row interface{ Scan(...any) error }) (finance.Product, error) {
	var p finance.Product
	var createdAt string
	if err := row.Scan(&p.ID, &p.Name, &p.LaborCost, &p.MaterialCost, &p.Royalties, &p.Profit, &createdAt); err != nil {
		return p, err
	}
	p.CreatedAt = parseTime(createdAt)
	return p, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (finance.Product, error) {
	defer s.rlock()()

	p, err := scanProduct(s.q.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return finance.Product{}, fmt.Errorf("product %s: %w", id, generic.ErrNotFound)
	}
	return p, err
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	defer s.lock()()

	res, err := s.q.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return expectOne(res, "product", id)
}

func (s *Store) ListProducts(ctx context.Context) ([]finance.Product, error) {
	defer s.rlock()()

	rows, err := s.q.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var out []finance.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// PROJECTIONS (append-only)
// =============================================================================

func (s *Store) SaveProjection(ctx context.Context, p finance.Projection) error {
	defer s.lock()()

	quantities, err := json.Marshal(p.Quantities)
	if err != nil {
		return fmt.Errorf("failed to encode quantities: %w", err)
	}
	totals, err := json.Marshal(p.Totals)
	if err != nil {
		return fmt.Errorf("failed to encode totals: %w", err)
	}
	_, err = s.q.ExecContext(ctx, `
		INSERT INTO projections
		(id, quantities_json, totals_json, real_sales, diff, adjusted_partner_profit, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, string(quantities), string(totals), p.RealSales, p.Diff, p.AdjustedPartnerProfit,
		p.CreatedBy, formatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save projection: %w", err)
	}
	return nil
}

// ListProjections returns projections newest first.
func (s *Store) ListProjections(ctx context.Context, limit int) ([]finance.Projection, error) {
	defer s.rlock()()

	rows, err := s.q.QueryContext(ctx, `
		SELECT id, quantities_json, totals_json, real_sales, diff, adjusted_partner_profit, created_by, created_at
		FROM projections ORDER BY created_at DESC`+limitClause(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query projections: %w", err)
	}
	defer rows.Close()

	var out []finance.Projection
	for rows.Next() {
		var (
			p                  finance.Projection
			quantities, totals string
			createdAt          string
		)
		if err := rows.Scan(&p.ID, &quantities, &totals, &p.RealSales, &p.Diff, &p.AdjustedPartnerProfit, &p.CreatedBy, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(quantities), &p.Quantities); err != nil {
			return nil, fmt.Errorf("failed to decode quantities: %w", err)
		}
		if err := json.Unmarshal([]byte(totals), &p.Totals); err != nil {
			return nil, fmt.Errorf("failed to decode totals: %w", err)
		}
		p.CreatedAt = parseTime(createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// PARTNERS
// =============================================================================

func (s *Store) SavePartner(ctx context.Context, p finance.Partner) error {
	defer s.lock()()

	query := `
		INSERT INTO partners (id, name, share_percentage, balance, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			share_percentage = excluded.share_percentage,
			balance = excluded.balance
	`
	_, err := s.q.ExecContext(ctx, query, p.ID, p.Name, p.SharePercentage, p.Balance, formatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save partner: %w", err)
	}
	return nil
}

const partnerColumns = "id, name, share_percentage, balance, created_at"

func scanPartner(row interface{ Scan(...any) error }) (finance.Partner, error) {
	var p finance.Partner
	var createdAt string
	if err := row.Scan(&p.ID, &p.Name, &p.SharePercentage, &p.Balance, &createdAt); err != nil {
		return p, err
	}
	p.CreatedAt = parseTime(createdAt)
	return p, nil
}

func (s *Store) GetPartner(ctx context.Context, id string) (finance.Partner, error) {
	defer s.rlock()()

	p, err := scanPartner(s.q.QueryRowContext(ctx, "SELECT "+partnerColumns+" FROM partners WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return finance.Partner{}, fmt.Errorf("partner %s: %w", id, generic.ErrNotFound)
	}
	return p, err
}

func (s *Store) DeletePartner(ctx context.Context, id string) error {
	defer s.lock()()

	res, err := s.q.ExecContext(ctx, "DELETE FROM partners WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete partner: %w", err)
	}
	return expectOne(res, "partner", id)
}

func (s *Store) ListPartners(ctx context.Context) ([]finance.Partner, error) {
	defer s.rlock()()

	rows, err := s.q.QueryContext(ctx, "SELECT "+partnerColumns+" FROM partners ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query partners: %w", err)
	}
	defer rows.Close()

	var out []finance.Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// WALLET
// =============================================================================

// SaveWalletTransaction inserts an entry, or records its void. Amounts of an
// existing entry never change.
func (s *Store) SaveWalletTransaction(ctx context.Context, t finance.WalletTransaction) error {
	defer s.lock()()

	query := `
		INSERT INTO wallet_transactions
		(id, type, category, description, amount, date, reference, created_by, created_at, deleted_at, deleted_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			deleted_at = excluded.deleted_at,
			deleted_by = excluded.deleted_by
	`
	_, err := s.q.ExecContext(ctx, query,
		t.ID, string(t.Type), t.Category, t.Description, t.Amount, formatDate(t.Date),
		nullString(t.Reference), t.CreatedBy, formatTime(t.CreatedAt),
		nullTime(t.DeletedAt), nullString(t.DeletedBy),
	)
	if err != nil {
		return fmt.Errorf("failed to save wallet transaction: %w", err)
	}
	return nil
}

const walletColumns = "id, type, category, description, amount, date, reference, created_by, created_at, deleted_at, deleted_by"

func scanWallet(row interface{ Scan(...any) error }) (finance.WalletTransaction, error) {
	var (
		t                    finance.WalletTransaction
		typ, date, createdAt string
		reference, deletedBy sql.NullString
		deletedAt            sql.NullString
	)
	err := row.Scan(&t.ID, &typ, &t.Category, &t.Description, &t.Amount, &date,
		&reference, &t.CreatedBy, &createdAt, &deletedAt, &deletedBy)
	if err != nil {
		return t, err
	}
	t.Type = generic.Direction(typ)
	t.Date = parseDate(date)
	t.Reference = reference.String
	t.CreatedAt = parseTime(createdAt)
	t.DeletedAt = parseNullTime(deletedAt)
	t.DeletedBy = deletedBy.String
	return t, nil
}

func (s *Store) GetWalletTransaction(ctx context.Context, id string) (finance.WalletTransaction, error) {
	defer s.rlock()()

	t, err := scanWallet(s.q.QueryRowContext(ctx, "SELECT "+walletColumns+" FROM wallet_transactions WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return finance.WalletTransaction{}, fmt.Errorf("wallet transaction %s: %w", id, generic.ErrNotFound)
	}
	return t, err
}

func (s *Store) ListWalletTransactions(ctx context.Context, period generic.Period, includeVoided bool) ([]finance.WalletTransaction, error) {
	defer s.rlock()()

	query := "SELECT " + walletColumns + " FROM wallet_transactions WHERE 1 = 1"
	if !includeVoided {
		query += " AND deleted_at IS NULL"
	}
	clause, args := periodClause("date", period, nil)
	rows, err := s.q.QueryContext(ctx, query+clause+" ORDER BY created_at, rowid", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet: %w", err)
	}
	defer rows.Close()

	var out []finance.WalletTransaction
	for rows.Next() {
		t, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// =============================================================================
// FIXED EXPENSES
// =============================================================================

func (s *Store) SaveFixedExpense(ctx context.Context, e finance.FixedExpense) error {
	defer s.lock()()

	var due sql.NullString
	if !e.DueDate.IsZero() {
		due = sql.NullString{String: formatDate(e.DueDate), Valid: true}
	}
	query := `
		INSERT INTO fixed_expenses (id, name, category, amount, paid_amount, due_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			amount = excluded.amount,
			paid_amount = excluded.paid_amount,
			due_date = excluded.due_date
	`
	_, err := s.q.ExecContext(ctx, query, e.ID, e.Name, e.Category, e.Amount, e.PaidAmount, due, formatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save fixed expense: %w", err)
	}
	return nil
}

const expenseColumns = "id, name, category, amount, paid_amount, due_date, created_at"

func scanExpense(row interface{ Scan(...any) error }) (finance.FixedExpense, error) {
	var (
		e         finance.FixedExpense
		due       sql.NullString
		createdAt string
	)
	if err := row.Scan(&e.ID, &e.Name, &e.Category, &e.Amount, &e.PaidAmount, &due, &createdAt); err != nil {
		return e, err
	}
	if due.Valid {
		e.DueDate = parseDate(due.String)
	}
	e.CreatedAt = parseTime(createdAt)
	return e, nil
}

func (s *Store) GetFixedExpense(ctx context.Context, id string) (finance.FixedExpense, error) {
	defer s.rlock()()

	e, err := scanExpense(s.q.QueryRowContext(ctx, "SELECT "+expenseColumns+" FROM fixed_expenses WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return finance.FixedExpense{}, fmt.Errorf("fixed expense %s: %w", id, generic.ErrNotFound)
	}
	return e, err
}

func (s *Store) DeleteFixedExpense(ctx context.Context, id string) error {
	defer s.lock()()

	res, err := s.q.ExecContext(ctx, "DELETE FROM fixed_expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete fixed expense: %w", err)
	}
	return expectOne(res, "fixed expense", id)
}

func (s *Store) ListFixedExpenses(ctx context.Context) ([]finance.FixedExpense, error) {
	defer s.rlock()()

	rows, err := s.q.QueryContext(ctx, "SELECT "+expenseColumns+" FROM fixed_expenses ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query fixed expenses: %w", err)
	}
	defer rows.Close()

	var out []finance.FixedExpense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var (
	_ payroll.Repository = (*Store)(nil)
	_ shift.Repository   = (*Store)(nil)
	_ finance.Repository = (*Store)(nil)
)
