package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/parrilla/backoffice/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// SERVICE - Payroll operations over a Repository
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

// =============================================================================
// EMPLOYEES
// =============================================================================

// HireEmployee stores a new active employee.
func (s *Service) HireEmployee(ctx context.Context, e Employee) (Employee, error) {
	if e.ID == "" {
		e.ID = generic.NewID()
	}
	e.Active = true
	e.CreatedAt = s.Now().UTC()
	if err := e.Validate(); err != nil {
		return Employee{}, err
	}
	if err := s.Repo.SaveEmployee(ctx, e); err != nil {
		return Employee{}, fmt.Errorf("save employee: %w", err)
	}
	s.Logger.Info("employee hired", "employee_id", e.ID, "name", e.Name)
	return e, nil
}

// UpdateEmployee replaces name, position, schedule and salary. Existing
// attendance records keep the amounts they were priced with.
func (s *Service) UpdateEmployee(ctx context.Context, e Employee) (Employee, error) {
	current, err := s.Repo.GetEmployee(ctx, e.ID)
	if err != nil {
		return Employee{}, err
	}
	current.Name = e.Name
	current.Position = e.Position
	current.ScheduledStart = e.ScheduledStart
	current.ScheduledEnd = e.ScheduledEnd
	current.MonthlySalary = e.MonthlySalary
	if err := current.Validate(); err != nil {
		return Employee{}, err
	}
	if err := s.Repo.SaveEmployee(ctx, current); err != nil {
		return Employee{}, fmt.Errorf("save employee: %w", err)
	}
	return current, nil
}

// ArchiveEmployee marks the employee inactive. Records are kept.
func (s *Service) ArchiveEmployee(ctx context.Context, id string) error {
	e, err := s.Repo.GetEmployee(ctx, id)
	if err != nil {
		return err
	}
	e.Active = false
	if err := s.Repo.SaveEmployee(ctx, e); err != nil {
		return fmt.Errorf("archive employee: %w", err)
	}
	s.Logger.Info("employee archived", "employee_id", id)
	return nil
}

func (s *Service) Employee(ctx context.Context, id string) (Employee, error) {
	return s.Repo.GetEmployee(ctx, id)
}

func (s *Service) Employees(ctx context.Context, includeArchived bool) ([]Employee, error) {
	return s.Repo.ListEmployees(ctx, includeArchived)
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// AttendanceInput is an operator's entry of one worked day.
type AttendanceInput struct {
	EmployeeID string
	Date       generic.TimePoint
	CheckIn    string
	CheckOut   string
}

// RecordAttendance prices the day against the employee's schedule and the
// holidays known right now, and stores the resulting record unpaid.
func (s *Service) RecordAttendance(ctx context.Context, in AttendanceInput) (AttendanceRecord, OvertimeResult, error) {
	if _, err := generic.ParseClock(in.CheckIn); err != nil {
		return AttendanceRecord{}, OvertimeResult{}, fmt.Errorf("check-in: %w", err)
	}
	if _, err := generic.ParseClock(in.CheckOut); err != nil {
		return AttendanceRecord{}, OvertimeResult{}, fmt.Errorf("check-out: %w", err)
	}

	emp, err := s.Repo.GetEmployee(ctx, in.EmployeeID)
	if err != nil {
		return AttendanceRecord{}, OvertimeResult{}, err
	}
	if !emp.Active {
		return AttendanceRecord{}, OvertimeResult{}, fmt.Errorf("%w: employee %s is archived", generic.ErrInvalidInput, emp.ID)
	}

	holidays, err := s.HolidaySet(ctx)
	if err != nil {
		return AttendanceRecord{}, OvertimeResult{}, err
	}

	calc := OvertimeInput{
		ScheduledStart: emp.ScheduledStart,
		ScheduledEnd:   emp.ScheduledEnd,
		CheckIn:        in.CheckIn,
		CheckOut:       in.CheckOut,
		Date:           in.Date,
		MonthlySalary:  emp.MonthlySalary,
	}
	res, ok := CalculateOvertime(calc, holidays)
	if !ok {
		return AttendanceRecord{}, OvertimeResult{}, fmt.Errorf("%w: employee %s has no schedule", generic.ErrInvalidClock, emp.ID)
	}

	rec := NewAttendanceRecord(emp.ID, calc, res, s.Now().UTC())
	if err := s.Repo.SaveAttendance(ctx, rec); err != nil {
		return AttendanceRecord{}, OvertimeResult{}, fmt.Errorf("save attendance: %w", err)
	}

	s.Logger.Info("attendance recorded",
		"employee_id", emp.ID,
		"date", rec.Date.String(),
		"overtime_hours", rec.OvertimeHours.String(),
		"overtime_amount", rec.OvertimeAmount.StringFixed(2),
		"holiday", rec.IsHoliday,
	)
	return rec, res, nil
}

// SetPaid toggles the paid flag, the only mutation an attendance record allows.
func (s *Service) SetPaid(ctx context.Context, id string, paid bool) error {
	if _, err := s.Repo.GetAttendance(ctx, id); err != nil {
		return err
	}
	return s.Repo.SetAttendancePaid(ctx, id, paid)
}

// PayAll marks every unpaid record of the employee in the period as paid and
// returns how many records and how much money that settled.
func (s *Service) PayAll(ctx context.Context, employeeID string, period generic.Period) (int, decimal.Decimal, error) {
	records, err := s.Repo.ListAttendance(ctx, employeeID, period)
	if err != nil {
		return 0, decimal.Zero, err
	}
	total := decimal.Zero
	n := 0
	for _, r := range Unpaid(records) {
		if err := s.Repo.SetAttendancePaid(ctx, r.ID, true); err != nil {
			return n, total, fmt.Errorf("pay attendance %s: %w", r.ID, err)
		}
		total = total.Add(r.OvertimeAmount)
		n++
	}
	if n > 0 {
		s.Logger.Info("overtime settled", "employee_id", employeeID, "period", period.String(), "records", n, "amount", total.StringFixed(2))
	}
	return n, total, nil
}

func (s *Service) DeleteAttendance(ctx context.Context, id string) error {
	return s.Repo.DeleteAttendance(ctx, id)
}

func (s *Service) Attendance(ctx context.Context, employeeID string, period generic.Period) ([]AttendanceRecord, error) {
	return s.Repo.ListAttendance(ctx, employeeID, period)
}

// =============================================================================
// ABSENCES & SANCTIONS
// =============================================================================

func (s *Service) RecordAbsence(ctx context.Context, a AbsenceRecord) (AbsenceRecord, error) {
	if _, err := s.Repo.GetEmployee(ctx, a.EmployeeID); err != nil {
		return AbsenceRecord{}, err
	}
	if a.ID == "" {
		a.ID = generic.NewID()
	}
	a.Reason = strings.TrimSpace(a.Reason)
	a.CreatedAt = s.Now().UTC()
	if err := s.Repo.SaveAbsence(ctx, a); err != nil {
		return AbsenceRecord{}, fmt.Errorf("save absence: %w", err)
	}
	return a, nil
}

func (s *Service) DeleteAbsence(ctx context.Context, id string) error {
	return s.Repo.DeleteAbsence(ctx, id)
}

func (s *Service) Absences(ctx context.Context, employeeID string, period generic.Period) ([]AbsenceRecord, error) {
	return s.Repo.ListAbsences(ctx, employeeID, period)
}

func (s *Service) RecordSanction(ctx context.Context, sn Sanction) (Sanction, error) {
	if _, err := s.Repo.GetEmployee(ctx, sn.EmployeeID); err != nil {
		return Sanction{}, err
	}
	if err := sn.Validate(); err != nil {
		return Sanction{}, err
	}
	if sn.ID == "" {
		sn.ID = generic.NewID()
	}
	sn.CreatedAt = s.Now().UTC()
	if err := s.Repo.SaveSanction(ctx, sn); err != nil {
		return Sanction{}, fmt.Errorf("save sanction: %w", err)
	}
	s.Logger.Info("sanction recorded", "employee_id", sn.EmployeeID, "kind", sn.Kind)
	return sn, nil
}

func (s *Service) DeleteSanction(ctx context.Context, id string) error {
	return s.Repo.DeleteSanction(ctx, id)
}

func (s *Service) Sanctions(ctx context.Context, employeeID string) ([]Sanction, error) {
	return s.Repo.ListSanctions(ctx, employeeID)
}

// =============================================================================
// SUMMARY
// =============================================================================

// MonthlySummary loads one month of records and aggregates them.
func (s *Service) MonthlySummary(ctx context.Context, employeeID string, year int, month time.Month) (MonthlySummary, error) {
	if _, err := s.Repo.GetEmployee(ctx, employeeID); err != nil {
		return MonthlySummary{}, err
	}
	period := generic.MonthPeriod(year, month)
	attendance, err := s.Repo.ListAttendance(ctx, employeeID, period)
	if err != nil {
		return MonthlySummary{}, err
	}
	absences, err := s.Repo.ListAbsences(ctx, employeeID, period)
	if err != nil {
		return MonthlySummary{}, err
	}
	return Summarize(employeeID, period, attendance, absences), nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Service) AddHoliday(ctx context.Context, h generic.Holiday) (generic.Holiday, error) {
	if strings.TrimSpace(h.Name) == "" {
		return generic.Holiday{}, fmt.Errorf("%w: holiday name is required", generic.ErrInvalidInput)
	}
	if h.ID == "" {
		h.ID = generic.NewID()
	}
	h.Date = generic.DateOf(h.Date.Time)
	if err := s.Repo.SaveHoliday(ctx, h); err != nil {
		return generic.Holiday{}, fmt.Errorf("save holiday: %w", err)
	}
	return h, nil
}

func (s *Service) RemoveHoliday(ctx context.Context, id string) error {
	return s.Repo.DeleteHoliday(ctx, id)
}

func (s *Service) Holidays(ctx context.Context) ([]generic.Holiday, error) {
	return s.Repo.ListHolidays(ctx)
}

// HolidaySet loads the stored holidays into a lookup set.
func (s *Service) HolidaySet(ctx context.Context) (*generic.HolidaySet, error) {
	holidays, err := s.Repo.ListHolidays(ctx)
	if err != nil {
		return nil, fmt.Errorf("load holidays: %w", err)
	}
	return generic.NewHolidaySet(holidays), nil
}
