// Package payroll implements employee attendance, overtime pay, absences and
// disciplinary records on top of the generic building blocks.
package payroll

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/parrilla/backoffice/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// EMPLOYEE
// =============================================================================

// MonthlyHoursDivisor is the assumed number of hours worked per month. The
// hourly rate is derived from the monthly salary with it and never stored.
const MonthlyHoursDivisor = 200

type Employee struct {
	ID             string
	Name           string
	Position       string
	ScheduledStart string // "HH:MM"
	ScheduledEnd   string // "HH:MM", may be earlier than start (overnight)
	MonthlySalary  decimal.Decimal
	Active         bool
	CreatedAt      time.Time
}

// HourlyRate is MonthlySalary / 200.
func (e Employee) HourlyRate() decimal.Decimal {
	return e.MonthlySalary.Div(decimal.NewFromInt(MonthlyHoursDivisor))
}

// Validate checks the record before it is stored.
func (e Employee) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: employee name is required", generic.ErrInvalidInput)
	}
	if e.MonthlySalary.IsNegative() {
		return fmt.Errorf("%w: monthly salary must not be negative", generic.ErrInvalidInput)
	}
	if _, err := generic.ParseClock(e.ScheduledStart); err != nil {
		return fmt.Errorf("scheduled start: %w", err)
	}
	if _, err := generic.ParseClock(e.ScheduledEnd); err != nil {
		return fmt.Errorf("scheduled end: %w", err)
	}
	return nil
}

// =============================================================================
// ATTENDANCE & ABSENCE
// =============================================================================

// AttendanceRecord is one worked day with its overtime already priced.
// Only Paid changes after creation; a wrong record is deleted and re-entered.
type AttendanceRecord struct {
	ID             string
	EmployeeID     string
	Date           generic.TimePoint
	CheckIn        string // "HH:MM"
	CheckOut       string // "HH:MM", earlier than CheckIn when past midnight
	OvertimeHours  decimal.Decimal
	OvertimeAmount decimal.Decimal
	Paid           bool
	IsHoliday      bool
	CreatedAt      time.Time
}

// AbsenceRecord is a missed day. It is independent of attendance: the same
// employee and date may carry both.
type AbsenceRecord struct {
	ID         string
	EmployeeID string
	Date       generic.TimePoint
	Reason     string
	CreatedAt  time.Time
}

// =============================================================================
// SANCTIONS
// =============================================================================

type SanctionKind string

const (
	SanctionWarning    SanctionKind = "warning"
	SanctionSuspension SanctionKind = "suspension"
)

// Sanction is a disciplinary note on an employee's file.
type Sanction struct {
	ID             string
	EmployeeID     string
	Date           generic.TimePoint
	Kind           SanctionKind
	Description    string
	SuspensionDays int
	CreatedAt      time.Time
}

func (s Sanction) Validate() error {
	switch s.Kind {
	case SanctionWarning:
		if s.SuspensionDays != 0 {
			return fmt.Errorf("%w: warnings carry no suspension days", generic.ErrInvalidInput)
		}
	case SanctionSuspension:
		if s.SuspensionDays <= 0 {
			return fmt.Errorf("%w: suspension needs at least one day", generic.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown sanction kind %q", generic.ErrInvalidInput, s.Kind)
	}
	return nil
}

// =============================================================================
// REPOSITORY
// =============================================================================

// Repository persists payroll records. Get* methods return an error wrapping
// generic.ErrNotFound when the record does not exist. An empty employeeID in
// List* methods means every employee.
type Repository interface {
	SaveEmployee(ctx context.Context, e Employee) error
	GetEmployee(ctx context.Context, id string) (Employee, error)
	ListEmployees(ctx context.Context, includeArchived bool) ([]Employee, error)

	SaveAttendance(ctx context.Context, r AttendanceRecord) error
	GetAttendance(ctx context.Context, id string) (AttendanceRecord, error)
	SetAttendancePaid(ctx context.Context, id string, paid bool) error
	DeleteAttendance(ctx context.Context, id string) error
	ListAttendance(ctx context.Context, employeeID string, period generic.Period) ([]AttendanceRecord, error)

	SaveAbsence(ctx context.Context, a AbsenceRecord) error
	DeleteAbsence(ctx context.Context, id string) error
	ListAbsences(ctx context.Context, employeeID string, period generic.Period) ([]AbsenceRecord, error)

	SaveSanction(ctx context.Context, s Sanction) error
	DeleteSanction(ctx context.Context, id string) error
	ListSanctions(ctx context.Context, employeeID string) ([]Sanction, error)

	SaveHoliday(ctx context.Context, h generic.Holiday) error
	DeleteHoliday(ctx context.Context, id string) error
	ListHolidays(ctx context.Context) ([]generic.Holiday, error)
}
