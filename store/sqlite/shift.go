package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/parrilla/backoffice/generic"
	"github.com/parrilla/backoffice/shift"
)

// =============================================================================
// CASH SHIFTS
// =============================================================================

// CreateCashShift inserts an open shift. The partial unique index rejects a
// second open shift.
func (s *Store) CreateCashShift(ctx context.Context, cs shift.CashShift) error {
	defer s.lock()()

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO cash_shifts (id, status, initial_amount, opened_by, opened_at)
		VALUES (?, ?, ?, ?, ?)`,
		cs.ID, string(cs.Status), cs.InitialAmount, cs.OpenedBy, formatTime(cs.OpenedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: cash shift", generic.ErrShiftAlreadyOpen)
		}
		return fmt.Errorf("failed to create cash shift: %w", err)
	}
	return nil
}

const cashShiftColumns = `id, status, initial_amount, opened_by, opened_at,
	final_cash, final_transfer, order_counts_json, closed_by, closed_at`

func scanCashShift(row interface{ Scan(...any) error }) (shift.CashShift, error) {
	var (
		cs       shift.CashShift
		status   string
		openedAt string
		orders   sql.NullString
		closedBy sql.NullString
		closedAt sql.NullString
	)
	err := row.Scan(&cs.ID, &status, &cs.InitialAmount, &cs.OpenedBy, &openedAt,
		&cs.FinalCash, &cs.FinalTransfer, &orders, &closedBy, &closedAt)
	if err != nil {
		return cs, err
	}
	cs.Status = shift.Status(status)
	cs.OpenedAt = parseTime(openedAt)
	cs.ClosedBy = closedBy.String
	cs.ClosedAt = parseNullTime(closedAt)
	if orders.Valid && orders.String != "" {
		if err := json.Unmarshal([]byte(orders.String), &cs.OrderCounts); err != nil {
			return cs, fmt.Errorf("failed to decode order counts: %w", err)
		}
	}
	return cs, nil
}

// loadCashTransactions fills in the transactions of each shift, in insertion
// order. Rows of the shift query must already be closed.
func (s *Store) loadCashTransactions(ctx context.Context, shifts []shift.CashShift) error {
	for i := range shifts {
		rows, err := s.q.QueryContext(ctx, `
			SELECT id, shift_id, type, method, category, description, amount, created_at
			FROM cash_transactions WHERE shift_id = ? ORDER BY rowid`, shifts[i].ID)
		if err != nil {
			return fmt.Errorf("failed to query cash transactions: %w", err)
		}
		var txs []shift.CashTransaction
		for rows.Next() {
			var t shift.CashTransaction
			var typ, method, createdAt string
			if err := rows.Scan(&t.ID, &t.ShiftID, &typ, &method, &t.Category, &t.Description, &t.Amount, &createdAt); err != nil {
				rows.Close()
				return err
			}
			t.Type = generic.Direction(typ)
			t.Method = generic.Method(method)
			t.CreatedAt = parseTime(createdAt)
			txs = append(txs, t)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return err
		}
		shifts[i].Transactions = txs
	}
	return nil
}

func (s *Store) queryCashShifts(ctx context.Context, query string, args ...any) ([]shift.CashShift, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash shifts: %w", err)
	}
	var out []shift.CashShift
	for rows.Next() {
		cs, err := scanCashShift(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, cs)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}
	if err := s.loadCashTransactions(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetCashShift(ctx context.Context, id string) (shift.CashShift, error) {
	defer s.rlock()()

	shifts, err := s.queryCashShifts(ctx, "SELECT "+cashShiftColumns+" FROM cash_shifts WHERE id = ?", id)
	if err != nil {
		return shift.CashShift{}, err
	}
	if len(shifts) == 0 {
		return shift.CashShift{}, fmt.Errorf("cash shift %s: %w", id, generic.ErrNotFound)
	}
	return shifts[0], nil
}

// CurrentCashShift returns the open shift, or nil when there is none.
func (s *Store) CurrentCashShift(ctx context.Context) (*shift.CashShift, error) {
	defer s.rlock()()

	shifts, err := s.queryCashShifts(ctx, "SELECT "+cashShiftColumns+" FROM cash_shifts WHERE status = 'OPEN'")
	if err != nil || len(shifts) == 0 {
		return nil, err
	}
	return &shifts[0], nil
}

// AppendCashTransaction adds a transaction to an open shift.
func (s *Store) AppendCashTransaction(ctx context.Context, t shift.CashTransaction) error {
	return s.withTx(ctx, func(tx *Store) error {
		var status string
		err := tx.q.QueryRowContext(ctx, "SELECT status FROM cash_shifts WHERE id = ?", t.ShiftID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("cash shift %s: %w", t.ShiftID, generic.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if shift.Status(status) != shift.StatusOpen {
			return generic.ErrShiftClosed
		}

		_, err = tx.q.ExecContext(ctx, `
			INSERT INTO cash_transactions (id, shift_id, type, method, category, description, amount, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.ShiftID, string(t.Type), string(t.Method), t.Category, t.Description, t.Amount, formatTime(t.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to append cash transaction: %w", err)
		}
		return nil
	})
}

// CloseCashShift stores the declared counts and flips the status.
func (s *Store) CloseCashShift(ctx context.Context, cs shift.CashShift) error {
	defer s.lock()()

	orders, err := json.Marshal(cs.OrderCounts)
	if err != nil {
		return fmt.Errorf("failed to encode order counts: %w", err)
	}
	res, err := s.q.ExecContext(ctx, `
		UPDATE cash_shifts SET
			status = ?, final_cash = ?, final_transfer = ?, order_counts_json = ?, closed_by = ?, closed_at = ?
		WHERE id = ? AND status = 'OPEN'`,
		string(shift.StatusClosed), cs.FinalCash, cs.FinalTransfer, string(orders),
		nullString(cs.ClosedBy), nullTime(cs.ClosedAt), cs.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to close cash shift: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return s.closedOrMissing(ctx, "cash_shifts", "cash shift", cs.ID)
	}
	return nil
}

func (s *Store) closedOrMissing(ctx context.Context, table, kind, id string) error {
	var count int
	if err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table+" WHERE id = ?", id).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, generic.ErrNotFound)
	}
	return generic.ErrShiftClosed
}

// ListCashShifts returns shifts newest first.
func (s *Store) ListCashShifts(ctx context.Context, limit int) ([]shift.CashShift, error) {
	defer s.rlock()()

	return s.queryCashShifts(ctx, "SELECT "+cashShiftColumns+" FROM cash_shifts ORDER BY opened_at DESC"+limitClause(limit))
}

// =============================================================================
// INVENTORY SESSIONS
// =============================================================================

func (s *Store) CreateInventorySession(ctx context.Context, is shift.InventorySession) error {
	return s.withTx(ctx, func(tx *Store) error {
		_, err := tx.q.ExecContext(ctx, `
			INSERT INTO inventory_sessions (id, status, opened_by, opened_at)
			VALUES (?, ?, ?, ?)`,
			is.ID, string(is.Status), is.OpenedBy, formatTime(is.OpenedAt),
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("%w: inventory session", generic.ErrShiftAlreadyOpen)
			}
			return fmt.Errorf("failed to create inventory session: %w", err)
		}
		for i, it := range is.Items {
			_, err := tx.q.ExecContext(ctx, `
				INSERT INTO inventory_items (session_id, position, name, unit, initial, final, consumption)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				is.ID, i, it.Name, it.Unit, it.Initial, it.Final, it.Consumption,
			)
			if err != nil {
				return fmt.Errorf("failed to save inventory item %q: %w", it.Name, err)
			}
		}
		return nil
	})
}

const inventoryColumns = "id, status, opened_by, opened_at, closed_by, closed_at"

func (s *Store) queryInventorySessions(ctx context.Context, query string, args ...any) ([]shift.InventorySession, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory sessions: %w", err)
	}
	var out []shift.InventorySession
	for rows.Next() {
		var (
			is       shift.InventorySession
			status   string
			openedAt string
			closedBy sql.NullString
			closedAt sql.NullString
		)
		if err := rows.Scan(&is.ID, &status, &is.OpenedBy, &openedAt, &closedBy, &closedAt); err != nil {
			rows.Close()
			return nil, err
		}
		is.Status = shift.Status(status)
		is.OpenedAt = parseTime(openedAt)
		is.ClosedBy = closedBy.String
		is.ClosedAt = parseNullTime(closedAt)
		out = append(out, is)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	for i := range out {
		items, err := s.loadInventoryItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (s *Store) loadInventoryItems(ctx context.Context, sessionID string) ([]shift.InventoryItem, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT name, unit, initial, final, consumption
		FROM inventory_items WHERE session_id = ? ORDER BY position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory items: %w", err)
	}
	defer rows.Close()

	var items []shift.InventoryItem
	for rows.Next() {
		var it shift.InventoryItem
		if err := rows.Scan(&it.Name, &it.Unit, &it.Initial, &it.Final, &it.Consumption); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) GetInventorySession(ctx context.Context, id string) (shift.InventorySession, error) {
	defer s.rlock()()

	sessions, err := s.queryInventorySessions(ctx, "SELECT "+inventoryColumns+" FROM inventory_sessions WHERE id = ?", id)
	if err != nil {
		return shift.InventorySession{}, err
	}
	if len(sessions) == 0 {
		return shift.InventorySession{}, fmt.Errorf("inventory session %s: %w", id, generic.ErrNotFound)
	}
	return sessions[0], nil
}

func (s *Store) CurrentInventorySession(ctx context.Context) (*shift.InventorySession, error) {
	defer s.rlock()()

	sessions, err := s.queryInventorySessions(ctx, "SELECT "+inventoryColumns+" FROM inventory_sessions WHERE status = 'OPEN'")
	if err != nil || len(sessions) == 0 {
		return nil, err
	}
	return &sessions[0], nil
}

// CloseInventorySession stores the closing counts and flips the status.
func (s *Store) CloseInventorySession(ctx context.Context, is shift.InventorySession) error {
	return s.withTx(ctx, func(tx *Store) error {
		res, err := tx.q.ExecContext(ctx, `
			UPDATE inventory_sessions SET status = ?, closed_by = ?, closed_at = ?
			WHERE id = ? AND status = 'OPEN'`,
			string(shift.StatusClosed), nullString(is.ClosedBy), nullTime(is.ClosedAt), is.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to close inventory session: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return tx.closedOrMissing(ctx, "inventory_sessions", "inventory session", is.ID)
		}
		for i, it := range is.Items {
			_, err := tx.q.ExecContext(ctx, `
				UPDATE inventory_items SET final = ?, consumption = ?
				WHERE session_id = ? AND position = ?`,
				it.Final, it.Consumption, is.ID, i,
			)
			if err != nil {
				return fmt.Errorf("failed to save count for %q: %w", it.Name, err)
			}
		}
		return nil
	})
}

func (s *Store) ListInventorySessions(ctx context.Context, limit int) ([]shift.InventorySession, error) {
	defer s.rlock()()

	return s.queryInventorySessions(ctx, "SELECT "+inventoryColumns+" FROM inventory_sessions ORDER BY opened_at DESC"+limitClause(limit))
}
