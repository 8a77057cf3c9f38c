// Package memory provides an in-memory implementation of the payroll, shift
// and finance repositories, for tests and local development.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/parrilla/backoffice/finance"
	"github.com/parrilla/backoffice/generic"
	"github.com/parrilla/backoffice/payroll"
	"github.com/parrilla/backoffice/shift"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

// Store keeps every record in maps guarded by one RWMutex. A Store handed to
// a WithTx callback shares the maps and skips locking, since the outer call
// already holds the write lock.
type Store struct {
	mu   *sync.RWMutex
	st   *state
	inTx bool
}

type state struct {
	employees  map[string]payroll.Employee
	attendance map[string]payroll.AttendanceRecord
	absences   map[string]payroll.AbsenceRecord
	sanctions  map[string]payroll.Sanction
	holidays   map[string]generic.Holiday

	cashShifts  map[string]shift.CashShift
	inventories map[string]shift.InventorySession

	products    map[string]finance.Product
	projections map[string]finance.Projection
	partners    map[string]finance.Partner
	wallet      map[string]finance.WalletTransaction
	expenses    map[string]finance.FixedExpense
}

func newState() *state {
	return &state{
		employees:   make(map[string]payroll.Employee),
		attendance:  make(map[string]payroll.AttendanceRecord),
		absences:    make(map[string]payroll.AbsenceRecord),
		sanctions:   make(map[string]payroll.Sanction),
		holidays:    make(map[string]generic.Holiday),
		cashShifts:  make(map[string]shift.CashShift),
		inventories: make(map[string]shift.InventorySession),
		products:    make(map[string]finance.Product),
		projections: make(map[string]finance.Projection),
		partners:    make(map[string]finance.Partner),
		wallet:      make(map[string]finance.WalletTransaction),
		expenses:    make(map[string]finance.FixedExpense),
	}
}

// clone copies the maps. Records are values; nested slices are never
// mutated in place, so a shallow copy per map is a full snapshot.
func (s *state) clone() *state {
	return &state{
		employees:   maps.Clone(s.employees),
		attendance:  maps.Clone(s.attendance),
		absences:    maps.Clone(s.absences),
		sanctions:   maps.Clone(s.sanctions),
		holidays:    maps.Clone(s.holidays),
		cashShifts:  maps.Clone(s.cashShifts),
		inventories: maps.Clone(s.inventories),
		products:    maps.Clone(s.products),
		projections: maps.Clone(s.projections),
		partners:    maps.Clone(s.partners),
		wallet:      maps.Clone(s.wallet),
		expenses:    maps.Clone(s.expenses),
	}
}

func New() *Store {
	return &Store{mu: &sync.RWMutex{}, st: newState()}
}

func (m *Store) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *Store) rlock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.RLock()
	return m.mu.RUnlock
}

// WithTx runs fn with the write lock held and restores the previous state if
// fn fails.
func (m *Store) WithTx(ctx context.Context, fn func(finance.Repository) error) error {
	if m.inTx {
		return fn(m)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.st.clone()
	view := &Store{mu: m.mu, st: m.st, inTx: true}
	if err := fn(view); err != nil {
		*m.st = *snapshot
		return err
	}
	return nil
}

// Reset clears all data (for demo scenarios).
func (m *Store) Reset(_ context.Context) error {
	defer m.lock()()
	*m.st = *newState()
	return nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, generic.ErrNotFound)
}

func limited[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// =============================================================================
// PAYROLL
// =============================================================================

func (m *Store) SaveEmployee(_ context.Context, e payroll.Employee) error {
	defer m.lock()()
	m.st.employees[e.ID] = e
	return nil
}

func (m *Store) GetEmployee(_ context.Context, id string) (payroll.Employee, error) {
	defer m.rlock()()
	e, ok := m.st.employees[id]
	if !ok {
		return payroll.Employee{}, notFound("employee", id)
	}
	return e, nil
}

func (m *Store) ListEmployees(_ context.Context, includeArchived bool) ([]payroll.Employee, error) {
	defer m.rlock()()
	var out []payroll.Employee
	for _, e := range m.st.employees {
		if e.Active || includeArchived {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Store) SaveAttendance(_ context.Context, r payroll.AttendanceRecord) error {
	defer m.lock()()
	m.st.attendance[r.ID] = r
	return nil
}

func (m *Store) GetAttendance(_ context.Context, id string) (payroll.AttendanceRecord, error) {
	defer m.rlock()()
	r, ok := m.st.attendance[id]
	if !ok {
		return payroll.AttendanceRecord{}, notFound("attendance", id)
	}
	return r, nil
}

func (m *Store) SetAttendancePaid(_ context.Context, id string, paid bool) error {
	defer m.lock()()
	r, ok := m.st.attendance[id]
	if !ok {
		return notFound("attendance", id)
	}
	r.Paid = paid
	m.st.attendance[id] = r
	return nil
}

func (m *Store) DeleteAttendance(_ context.Context, id string) error {
	defer m.lock()()
	if _, ok := m.st.attendance[id]; !ok {
		return notFound("attendance", id)
	}
	delete(m.st.attendance, id)
	return nil
}

func (m *Store) ListAttendance(_ context.Context, employeeID string, period generic.Period) ([]payroll.AttendanceRecord, error) {
	defer m.rlock()()
	var out []payroll.AttendanceRecord
	for _, r := range m.st.attendance {
		if (employeeID == "" || r.EmployeeID == employeeID) && period.Includes(r.Date) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (m *Store) SaveAbsence(_ context.Context, a payroll.AbsenceRecord) error {
	defer m.lock()()
	m.st.absences[a.ID] = a
	return nil
}

func (m *Store) DeleteAbsence(_ context.Context, id string) error {
	defer m.lock()()
	if _, ok := m.st.absences[id]; !ok {
		return notFound("absence", id)
	}
	delete(m.st.absences, id)
	return nil
}

func (m *Store) ListAbsences(_ context.Context, employeeID string, period generic.Period) ([]payroll.AbsenceRecord, error) {
	defer m.rlock()()
	var out []payroll.AbsenceRecord
	for _, a := range m.st.absences {
		if (employeeID == "" || a.EmployeeID == employeeID) && period.Includes(a.Date) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Store) SaveSanction(_ context.Context, s payroll.Sanction) error {
	defer m.lock()()
	m.st.sanctions[s.ID] = s
	return nil
}

func (m *Store) DeleteSanction(_ context.Context, id string) error {
	defer m.lock()()
	if _, ok := m.st.sanctions[id]; !ok {
		return notFound("sanction", id)
	}
	delete(m.st.sanctions, id)
	return nil
}

func (m *Store) ListSanctions(_ context.Context, employeeID string) ([]payroll.Sanction, error) {
	defer m.rlock()()
	var out []payroll.Sanction
	for _, s := range m.st.sanctions {
		if employeeID == "" || s.EmployeeID == employeeID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *Store) SaveHoliday(_ context.Context, h generic.Holiday) error {
	defer m.lock()()
	m.st.holidays[h.ID] = h
	return nil
}

func (m *Store) DeleteHoliday(_ context.Context, id string) error {
	defer m.lock()()
	if _, ok := m.st.holidays[id]; !ok {
		return notFound("holiday", id)
	}
	delete(m.st.holidays, id)
	return nil
}

func (m *Store) ListHolidays(_ context.Context) ([]generic.Holiday, error) {
	defer m.rlock()()
	out := slices.Collect(maps.Values(m.st.holidays))
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// =============================================================================
// SHIFTS
// =============================================================================

func copyShift(s shift.CashShift) shift.CashShift {
	s.Transactions = slices.Clone(s.Transactions)
	s.OrderCounts = maps.Clone(s.OrderCounts)
	return s
}

func (m *Store) CreateCashShift(_ context.Context, s shift.CashShift) error {
	defer m.lock()()
	for _, existing := range m.st.cashShifts {
		if existing.IsOpen() {
			return fmt.Errorf("%w: shift %s", generic.ErrShiftAlreadyOpen, existing.ID)
		}
	}
	m.st.cashShifts[s.ID] = copyShift(s)
	return nil
}

func (m *Store) GetCashShift(_ context.Context, id string) (shift.CashShift, error) {
	defer m.rlock()()
	s, ok := m.st.cashShifts[id]
	if !ok {
		return shift.CashShift{}, notFound("cash shift", id)
	}
	return copyShift(s), nil
}

func (m *Store) CurrentCashShift(_ context.Context) (*shift.CashShift, error) {
	defer m.rlock()()
	for _, s := range m.st.cashShifts {
		if s.IsOpen() {
			c := copyShift(s)
			return &c, nil
		}
	}
	return nil, nil
}

func (m *Store) AppendCashTransaction(_ context.Context, t shift.CashTransaction) error {
	defer m.lock()()
	s, ok := m.st.cashShifts[t.ShiftID]
	if !ok {
		return notFound("cash shift", t.ShiftID)
	}
	if !s.IsOpen() {
		return generic.ErrShiftClosed
	}
	s.Transactions = append(slices.Clone(s.Transactions), t)
	m.st.cashShifts[s.ID] = s
	return nil
}

func (m *Store) CloseCashShift(_ context.Context, closed shift.CashShift) error {
	defer m.lock()()
	s, ok := m.st.cashShifts[closed.ID]
	if !ok {
		return notFound("cash shift", closed.ID)
	}
	if !s.IsOpen() {
		return generic.ErrShiftClosed
	}
	s.Status = shift.StatusClosed
	s.FinalCash = closed.FinalCash
	s.FinalTransfer = closed.FinalTransfer
	s.OrderCounts = maps.Clone(closed.OrderCounts)
	s.ClosedBy = closed.ClosedBy
	s.ClosedAt = closed.ClosedAt
	m.st.cashShifts[s.ID] = s
	return nil
}

func (m *Store) ListCashShifts(_ context.Context, limit int) ([]shift.CashShift, error) {
	defer m.rlock()()
	out := make([]shift.CashShift, 0, len(m.st.cashShifts))
	for _, s := range m.st.cashShifts {
		out = append(out, copyShift(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.After(out[j].OpenedAt) })
	return limited(out, limit), nil
}

func copySession(s shift.InventorySession) shift.InventorySession {
	s.Items = slices.Clone(s.Items)
	return s
}

func (m *Store) CreateInventorySession(_ context.Context, s shift.InventorySession) error {
	defer m.lock()()
	for _, existing := range m.st.inventories {
		if existing.IsOpen() {
			return fmt.Errorf("%w: inventory %s", generic.ErrShiftAlreadyOpen, existing.ID)
		}
	}
	m.st.inventories[s.ID] = copySession(s)
	return nil
}

func (m *Store) GetInventorySession(_ context.Context, id string) (shift.InventorySession, error) {
	defer m.rlock()()
	s, ok := m.st.inventories[id]
	if !ok {
		return shift.InventorySession{}, notFound("inventory session", id)
	}
	return copySession(s), nil
}

func (m *Store) CurrentInventorySession(_ context.Context) (*shift.InventorySession, error) {
	defer m.rlock()()
	for _, s := range m.st.inventories {
		if s.IsOpen() {
			c := copySession(s)
			return &c, nil
		}
	}
	return nil, nil
}

func (m *Store) CloseInventorySession(_ context.Context, closed shift.InventorySession) error {
	defer m.lock()()
	s, ok := m.st.inventories[closed.ID]
	if !ok {
		return notFound("inventory session", closed.ID)
	}
	if !s.IsOpen() {
		return generic.ErrShiftClosed
	}
	m.st.inventories[closed.ID] = copySession(closed)
	return nil
}

func (m *Store) ListInventorySessions(_ context.Context, limit int) ([]shift.InventorySession, error) {
	defer m.rlock()()
	out := make([]shift.InventorySession, 0, len(m.st.inventories))
	for _, s := range m.st.inventories {
		out = append(out, copySession(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.After(out[j].OpenedAt) })
	return limited(out, limit), nil
}

// =============================================================================
// FINANCE
// =============================================================================

func (m *Store) SaveProduct(_ context.Context, p finance.Product) error {
	defer m.lock()()
	m.st.products[p.ID] = p
	return nil
}

func (m *Store) GetProduct(_ context.Context, id string) (finance.Product, error) {
	defer m.rlock()()
	p, ok := m.st.products[id]
	if !ok {
		return finance.Product{}, notFound("product", id)
	}
	return p, nil
}

func (m *Store) DeleteProduct(_ context.Context, id string) error {
	defer m.lock()()
	if _, ok := m.st.products[id]; !ok {
		return notFound("product", id)
	}
	delete(m.st.products, id)
	return nil
}

func (m *Store) ListProducts(_ context.Context) ([]finance.Product, error) {
	defer m.rlock()()
	out := slices.Collect(maps.Values(m.st.products))
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Store) SaveProjection(_ context.Context, p finance.Projection) error {
	defer m.lock()()
	p.Quantities = maps.Clone(p.Quantities)
	p.Totals.Lines = slices.Clone(p.Totals.Lines)
	m.st.projections[p.ID] = p
	return nil
}

func (m *Store) ListProjections(_ context.Context, limit int) ([]finance.Projection, error) {
	defer m.rlock()()
	out := slices.Collect(maps.Values(m.st.projections))
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return limited(out, limit), nil
}

func (m *Store) SavePartner(_ context.Context, p finance.Partner) error {
	defer m.lock()()
	m.st.partners[p.ID] = p
	return nil
}

func (m *Store) GetPartner(_ context.Context, id string) (finance.Partner, error) {
	defer m.rlock()()
	p, ok := m.st.partners[id]
	if !ok {
		return finance.Partner{}, notFound("partner", id)
	}
	return p, nil
}

func (m *Store) DeletePartner(_ context.Context, id string) error {
	defer m.lock()()
	if _, ok := m.st.partners[id]; !ok {
		return notFound("partner", id)
	}
	delete(m.st.partners, id)
	return nil
}

func (m *Store) ListPartners(_ context.Context) ([]finance.Partner, error) {
	defer m.rlock()()
	out := slices.Collect(maps.Values(m.st.partners))
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Store) SaveWalletTransaction(_ context.Context, t finance.WalletTransaction) error {
	defer m.lock()()
	m.st.wallet[t.ID] = t
	return nil
}

func (m *Store) GetWalletTransaction(_ context.Context, id string) (finance.WalletTransaction, error) {
	defer m.rlock()()
	t, ok := m.st.wallet[id]
	if !ok {
		return finance.WalletTransaction{}, notFound("wallet transaction", id)
	}
	return t, nil
}

func (m *Store) ListWalletTransactions(_ context.Context, period generic.Period, includeVoided bool) ([]finance.WalletTransaction, error) {
	defer m.rlock()()
	var out []finance.WalletTransaction
	for _, t := range m.st.wallet {
		if (includeVoided || !t.Voided()) && period.Includes(t.Date) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Store) SaveFixedExpense(_ context.Context, e finance.FixedExpense) error {
	defer m.lock()()
	m.st.expenses[e.ID] = e
	return nil
}

func (m *Store) GetFixedExpense(_ context.Context, id string) (finance.FixedExpense, error) {
	defer m.rlock()()
	e, ok := m.st.expenses[id]
	if !ok {
		return finance.FixedExpense{}, notFound("fixed expense", id)
	}
	return e, nil
}

func (m *Store) DeleteFixedExpense(_ context.Context, id string) error {
	defer m.lock()()
	if _, ok := m.st.expenses[id]; !ok {
		return notFound("fixed expense", id)
	}
	delete(m.st.expenses, id)
	return nil
}

func (m *Store) ListFixedExpenses(_ context.Context) ([]finance.FixedExpense, error) {
	defer m.rlock()()
	out := slices.Collect(maps.Values(m.st.expenses))
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

var (
	_ payroll.Repository = (*Store)(nil)
	_ shift.Repository   = (*Store)(nil)
	_ finance.Repository = (*Store)(nil)
)
