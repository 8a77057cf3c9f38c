package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/parrilla/backoffice/generic"
	"github.com/parrilla/backoffice/payroll"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// SaveEmployee inserts or replaces an employee.
func (s *Store) SaveEmployee(ctx context.Context, e payroll.Employee) error {
	defer s.lock()()

	query := `
		INSERT INTO employees
		(id, name, position, scheduled_start, scheduled_end, monthly_salary, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			position = excluded.position,
			scheduled_start = excluded.scheduled_start,
			scheduled_end = excluded.scheduled_end,
			monthly_salary = excluded.monthly_salary,
			active = excluded.active
	`
	_, err := s.q.ExecContext(ctx, query,
		e.ID, e.Name, e.Position, e.ScheduledStart, e.ScheduledEnd,
		e.MonthlySalary, boolInt(e.Active), formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

const employeeColumns = "id, name, position, scheduled_start, scheduled_end, monthly_salary, active, created_at"

func scanEmployee(row interface{ Scan(...any) error }) (payroll.Employee, error) {
	var (
		e         payroll.Employee
		active    int
		createdAt string
	)
	err := row.Scan(&e.ID, &e.Name, &e.Position, &e.ScheduledStart, &e.ScheduledEnd, &e.MonthlySalary, &active, &createdAt)
	if err != nil {
		return e, err
	}
	e.Active = active == 1
	e.CreatedAt = parseTime(createdAt)
	return e, nil
}

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id string) (payroll.Employee, error) {
	defer s.rlock()()

	row := s.q.QueryRowContext(ctx, "SELECT "+employeeColumns+" FROM employees WHERE id = ?", id)
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return payroll.Employee{}, fmt.Errorf("employee %s: %w", id, generic.ErrNotFound)
	}
	return e, err
}

// ListEmployees returns employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context, includeArchived bool) ([]payroll.Employee, error) {
	defer s.rlock()()

	query := "SELECT " + employeeColumns + " FROM employees"
	if !includeArchived {
		query += " WHERE active = 1"
	}
	rows, err := s.q.QueryContext(ctx, query+" ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var out []payroll.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (s *Store) SaveAttendance(ctx context.Context, r payroll.AttendanceRecord) error {
	defer s.lock()()

	query := `
		INSERT INTO attendance
		(id, employee_id, date, check_in, check_out, overtime_hours, overtime_amount, paid, is_holiday, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.q.ExecContext(ctx, query,
		r.ID, r.EmployeeID, formatDate(r.Date), r.CheckIn, r.CheckOut,
		r.OvertimeHours, r.OvertimeAmount, boolInt(r.Paid), boolInt(r.IsHoliday),
		formatTime(r.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save attendance: %w", err)
	}
	return nil
}

const attendanceColumns = "id, employee_id, date, check_in, check_out, overtime_hours, overtime_amount, paid, is_holiday, created_at"

func scanAttendance(row interface{ Scan(...any) error }) (payroll.AttendanceRecord, error) {
	var (
		r               payroll.AttendanceRecord
		date, createdAt string
		paid, holiday   int
	)
	err := row.Scan(&r.ID, &r.EmployeeID, &date, &r.CheckIn, &r.CheckOut,
		&r.OvertimeHours, &r.OvertimeAmount, &paid, &holiday, &createdAt)
	if err != nil {
		return r, err
	}
	r.Date = parseDate(date)
	r.Paid = paid == 1
	r.IsHoliday = holiday == 1
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

func (s *Store) GetAttendance(ctx context.Context, id string) (payroll.AttendanceRecord, error) {
	defer s.rlock()()

	row := s.q.QueryRowContext(ctx, "SELECT "+attendanceColumns+" FROM attendance WHERE id = ?", id)
	r, err := scanAttendance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return payroll.AttendanceRecord{}, fmt.Errorf("attendance %s: %w", id, generic.ErrNotFound)
	}
	return r, err
}

// SetAttendancePaid is the only update an attendance row accepts.
func (s *Store) SetAttendancePaid(ctx context.Context, id string, paid bool) error {
	defer s.lock()()

	res, err := s.q.ExecContext(ctx, "UPDATE attendance SET paid = ? WHERE id = ?", boolInt(paid), id)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	return expectOne(res, "attendance", id)
}

func (s *Store) DeleteAttendance(ctx context.Context, id string) error {
	defer s.lock()()

	res, err := s.q.ExecContext(ctx, "DELETE FROM attendance WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	return expectOne(res, "attendance", id)
}

func (s *Store) ListAttendance(ctx context.Context, employeeID string, period generic.Period) ([]payroll.AttendanceRecord, error) {
	defer s.rlock()()

	query := "SELECT " + attendanceColumns + " FROM attendance WHERE (? = '' OR employee_id = ?)"
	args := []any{employeeID, employeeID}
	clause, args := periodClause("date", period, args)
	rows, err := s.q.QueryContext(ctx, query+clause+" ORDER BY date, created_at", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var out []payroll.AttendanceRecord
	for rows.Next() {
		r, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// ABSENCES
// =============================================================================

func (s *Store) SaveAbsence(ctx context.Context, a payroll.AbsenceRecord) error {
	defer s.lock()()

	_, err := s.q.ExecContext(ctx,
		"INSERT INTO absences (id, employee_id, date, reason, created_at) VALUES (?, ?, ?, ?, ?)",
		a.ID, a.EmployeeID, formatDate(a.Date), a.Reason, formatTime(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save absence: %w", err)
	}
	return nil
}

func (s *Store) DeleteAbsence(ctx context.Context, id string) error {
	defer s.lock()()

	res, err := s.q.ExecContext(ctx, "DELETE FROM absences WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete absence: %w", err)
	}
	return expectOne(res, "absence", id)
}

func (s *Store) ListAbsences(ctx context.Context, employeeID string, period generic.Period) ([]payroll.AbsenceRecord, error) {
	defer s.rlock()()

	query := "SELECT id, employee_id, date, reason, created_at FROM absences WHERE (? = '' OR employee_id = ?)"
	clause, args := periodClause("date", period, []any{employeeID, employeeID})
	rows, err := s.q.QueryContext(ctx, query+clause+" ORDER BY date", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query absences: %w", err)
	}
	defer rows.Close()

	var out []payroll.AbsenceRecord
	for rows.Next() {
		var a payroll.AbsenceRecord
		var date, createdAt string
		if err := rows.Scan(&a.ID, &a.EmployeeID, &date, &a.Reason, &createdAt); err != nil {
			return nil, err
		}
		a.Date = parseDate(date)
		a.CreatedAt = parseTime(createdAt)
		out = append(out, a)
	}
	return out, rows.Err()
}

// =============================================================================
// SANCTIONS
// =============================================================================

func (s *Store) SaveSanction(ctx context.Context, sn payroll.Sanction) error {
	defer s.lock()()

	query := `
		INSERT INTO sanctions (id, employee_id, date, kind, description, suspension_days, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			kind = excluded.kind,
			description = excluded.description,
			suspension_days = excluded.suspension_days
	`
	_, err := s.q.ExecContext(ctx, query,
		sn.ID, sn.EmployeeID, formatDate(sn.Date), string(sn.Kind), sn.Description, sn.SuspensionDays, formatTime(sn.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save sanction: %w", err)
	}
	return nil
}

func (s *Store) DeleteSanction(ctx context.Context, id string) error {
	defer s.lock()()

	res, err := s.q.ExecContext(ctx, "DELETE FROM sanctions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete sanction: %w", err)
	}
	return expectOne(res, "sanction", id)
}

func (s *Store) ListSanctions(ctx context.Context, employeeID string) ([]payroll.Sanction, error) {
	defer s.rlock()()

	rows, err := s.q.QueryContext(ctx, `
		SELECT id, employee_id, date, kind, description, suspension_days, created_at
		FROM sanctions WHERE (? = '' OR employee_id = ?)
		ORDER BY date DESC`, employeeID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sanctions: %w", err)
	}
	defer rows.Close()

	var out []payroll.Sanction
	for rows.Next() {
		var sn payroll.Sanction
		var date, kind, createdAt string
		if err := rows.Scan(&sn.ID, &sn.EmployeeID, &date, &kind, &sn.Description, &sn.SuspensionDays, &createdAt); err != nil {
			return nil, err
		}
		sn.Date = parseDate(date)
		sn.Kind = payroll.SanctionKind(kind)
		sn.CreatedAt = parseTime(createdAt)
		out = append(out, sn)
	}
	return out, rows.Err()
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Store) SaveHoliday(ctx context.Context, h generic.Holiday) error {
	defer s.lock()()

	query := `
		INSERT INTO holidays (id, date, name, recurring)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			name = excluded.name,
			recurring = excluded.recurring
	`
	_, err := s.q.ExecContext(ctx, query, h.ID, formatDate(h.Date), h.Name, boolInt(h.Recurring))
	if err != nil {
		return fmt.Errorf("failed to save holiday: %w", err)
	}
	return nil
}

func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	defer s.lock()()

	res, err := s.q.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	return expectOne(res, "holiday", id)
}

func (s *Store) ListHolidays(ctx context.Context) ([]generic.Holiday, error) {
	defer s.rlock()()

	rows, err := s.q.QueryContext(ctx, "SELECT id, date, name, recurring FROM holidays ORDER BY date")
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var out []generic.Holiday
	for rows.Next() {
		var h generic.Holiday
		var date string
		var recurring int
		if err := rows.Scan(&h.ID, &date, &h.Name, &recurring); err != nil {
			return nil, err
		}
		h.Date = parseDate(date)
		h.Recurring = recurring == 1
		out = append(out, h)
	}
	return out, rows.Err()
}
