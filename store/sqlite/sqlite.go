/*
Package sqlite provides a SQLite-backed implementation of the repositories.

PURPOSE:
  One Store implements payroll.Repository, shift.Repository and
  finance.Repository over a single database file.

KEY TABLES:
  employees, attendance, absences, sanctions, holidays   payroll
  cash_shifts, cash_transactions                         cash register
  inventory_sessions, inventory_items                    kitchen counts
  products, projections, partners                        calculator/royalties
  wallet_transactions, fixed_expenses                    company ledger

SINGLE OPEN SHIFT:
  Partial unique indexes allow at most one row with status 'OPEN' in
  cash_shifts and in inventory_sessions. A second open insert fails with a
  unique constraint error, which is reported as generic.ErrShiftAlreadyOpen.

VALUES:
  Money and counts are stored as TEXT through decimal.Decimal's own
  driver.Valuer / sql.Scanner, so no float ever touches the database.
  Instants are RFC3339 text in UTC, calendar dates are "2006-01-02".

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. WithTx hands the callback a Store
  bound to the *sql.Tx that skips the mutex, since the outer call holds it.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./backoffice.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - payroll.go, shift.go, finance.go: per-domain queries
  - store/memory: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/parrilla/backoffice/generic"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements the repositories using SQLite.
type Store struct {
	db   *sql.DB
	q    querier
	mu   *sync.RWMutex
	inTx bool
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: SQLite has a single writer, and each ":memory:"
	// connection would otherwise be a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, q: db, mu: &sync.RWMutex{}}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Payroll
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		position TEXT NOT NULL DEFAULT '',
		scheduled_start TEXT NOT NULL,
		scheduled_end TEXT NOT NULL,
		monthly_salary TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		date TEXT NOT NULL,
		check_in TEXT NOT NULL,
		check_out TEXT NOT NULL,
		overtime_hours TEXT NOT NULL,
		overtime_amount TEXT NOT NULL,
		paid INTEGER NOT NULL DEFAULT 0,
		is_holiday INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_employee_date
		ON attendance(employee_id, date);

	CREATE TABLE IF NOT EXISTS absences (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		date TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_absences_employee_date
		ON absences(employee_id, date);

	CREATE TABLE IF NOT EXISTS sanctions (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		date TEXT NOT NULL,
		kind TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		suspension_days INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		recurring INTEGER NOT NULL DEFAULT 0
	);

	-- Cash register
	CREATE TABLE IF NOT EXISTS cash_shifts (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		initial_amount TEXT NOT NULL,
		opened_by TEXT NOT NULL DEFAULT '',
		opened_at TEXT NOT NULL,
		final_cash TEXT NOT NULL DEFAULT '0',
		final_transfer TEXT NOT NULL DEFAULT '0',
		order_counts_json TEXT,
		closed_by TEXT,
		closed_at TEXT
	);

	-- At most one open shift
	CREATE UNIQUE INDEX IF NOT EXISTS idx_cash_shifts_single_open
		ON cash_shifts(status) WHERE status = 'OPEN';

	CREATE TABLE IF NOT EXISTS cash_transactions (
		id TEXT PRIMARY KEY,
		shift_id TEXT NOT NULL REFERENCES cash_shifts(id),
		type TEXT NOT NULL,
		method TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		amount TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cash_transactions_shift
		ON cash_transactions(shift_id);

	-- Kitchen inventory
	CREATE TABLE IF NOT EXISTS inventory_sessions (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		opened_by TEXT NOT NULL DEFAULT '',
		opened_at TEXT NOT NULL,
		closed_by TEXT,
		closed_at TEXT
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_inventory_sessions_single_open
		ON inventory_sessions(status) WHERE status = 'OPEN';

	CREATE TABLE IF NOT EXISTS inventory_items (
		session_id TEXT NOT NULL REFERENCES inventory_sessions(id),
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		unit TEXT NOT NULL DEFAULT '',
		initial TEXT NOT NULL,
		final TEXT NOT NULL DEFAULT '0',
		consumption TEXT NOT NULL DEFAULT '0',
		PRIMARY KEY (session_id, position)
	);

	-- Calculator and royalties
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		labor_cost TEXT NOT NULL,
		material_cost TEXT NOT NULL,
		royalties TEXT NOT NULL,
		profit TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS projections (
		id TEXT PRIMARY KEY,
		quantities_json TEXT NOT NULL,
		totals_json TEXT NOT NULL,
		real_sales TEXT NOT NULL,
		diff TEXT NOT NULL,
		adjusted_partner_profit TEXT NOT NULL,
		created_by TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS partners (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		share_percentage TEXT NOT NULL,
		balance TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Company ledger
	CREATE TABLE IF NOT EXISTS wallet_transactions (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		amount TEXT NOT NULL,
		date TEXT NOT NULL,
		reference TEXT,
		created_by TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		deleted_at TEXT,
		deleted_by TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_wallet_date
		ON wallet_transactions(date);

	CREATE TABLE IF NOT EXISTS fixed_expenses (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		amount TEXT NOT NULL,
		paid_amount TEXT NOT NULL DEFAULT '0',
		due_date TEXT,
		created_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LOCKING & TRANSACTIONS
// =============================================================================

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) rlock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

// withTx runs fn on a Store bound to a database transaction. Inside an
// existing transaction it reuses it.
func (s *Store) withTx(ctx context.Context, fn func(*Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	txStore := &Store{db: s.db, q: sqlTx, mu: s.mu, inTx: true}
	if err := fn(txStore); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// Reset clears all data (for demo scenarios).
func (s *Store) Reset(ctx context.Context) error {
	return s.withTx(ctx, func(tx *Store) error {
		tables := []string{
			"attendance", "absences", "sanctions", "employees", "holidays",
			"cash_transactions", "cash_shifts",
			"inventory_items", "inventory_sessions",
			"projections", "partners", "products",
			"wallet_transactions", "fixed_expenses",
		}
		for _, table := range tables {
			if _, err := tx.q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("reset %s: %w", table, err)
			}
		}
		return nil
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

func formatDate(tp generic.TimePoint) string {
	return tp.String()
}

func parseDate(s string) generic.TimePoint {
	tp, _ := generic.ParseDate(s)
	return tp
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// expectOne turns "no row affected" into a not-found error.
func expectOne(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, generic.ErrNotFound)
	}
	return nil
}

// periodClause adds a date filter on column when the period is set.
func periodClause(column string, period generic.Period, args []any) (string, []any) {
	if period.IsZero() {
		return "", args
	}
	return " AND " + column + " BETWEEN ? AND ?", append(args, formatDate(period.Start), formatDate(period.End))
}

func limitClause(limit int) string {
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d", limit)
}
