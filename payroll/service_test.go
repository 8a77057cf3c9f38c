package payroll_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/parrilla/backoffice/generic"
	"github.com/parrilla/backoffice/payroll"
	"github.com/parrilla/backoffice/store/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *payroll.Service {
	t.Helper()
	svc := payroll.NewService(memory.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.Now = func() time.Time { return time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC) }
	return svc
}

func hire(t *testing.T, svc *payroll.Service) payroll.Employee {
	t.Helper()
	e, err := svc.HireEmployee(context.Background(), payroll.Employee{
		Name:           "Lucía",
		Position:       "Parrillera",
		ScheduledStart: "17:00",
		ScheduledEnd:   "01:00",
		MonthlySalary:  decimal.NewFromInt(300000),
	})
	require.NoError(t, err)
	return e
}

func TestService_RecordAttendance(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	emp := hire(t, svc)

	// WHEN
	rec, res, err := svc.RecordAttendance(ctx, payroll.AttendanceInput{
		EmployeeID: emp.ID,
		Date:       generic.NewTimePoint(2025, time.March, 12),
		CheckIn:    "17:00",
		CheckOut:   "02:30",
	})

	// THEN
	require.NoError(t, err)
	assertDecimal(t, "3375", rec.OvertimeAmount)
	assertDecimal(t, "1.5", rec.OvertimeHours)
	assert.False(t, rec.Paid)
	assert.Equal(t, 570, res.WorkedMinutes)

	stored, err := svc.Attendance(ctx, emp.ID, generic.MonthPeriod(2025, time.March))
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, rec.ID, stored[0].ID)
}

func TestService_RecordAttendance_OnHoliday(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	emp := hire(t, svc)
	date := generic.NewTimePoint(2025, time.March, 24)
	_, err := svc.AddHoliday(ctx, generic.Holiday{Date: date, Name: "Día de la Memoria"})
	require.NoError(t, err)

	rec, _, err := svc.RecordAttendance(ctx, payroll.AttendanceInput{EmployeeID: emp.ID, Date: date, CheckIn: "17:00", CheckOut: "02:30"})

	require.NoError(t, err)
	assert.True(t, rec.IsHoliday)
	assertDecimal(t, "4500", rec.OvertimeAmount)
}

func TestService_RecordAttendance_HolidayIsNotRetroactive(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	emp := hire(t, svc)
	date := generic.NewTimePoint(2025, time.March, 24)

	rec, _, err := svc.RecordAttendance(ctx, payroll.AttendanceInput{EmployeeID: emp.ID, Date: date, CheckIn: "17:00", CheckOut: "02:30"})
	require.NoError(t, err)
	_, err = svc.AddHoliday(ctx, generic.Holiday{Date: date, Name: "Día de la Memoria"})
	require.NoError(t, err)

	stored, err := svc.Attendance(ctx, emp.ID, generic.Period{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, rec.ID, stored[0].ID)
	assert.False(t, stored[0].IsHoliday)
	assertDecimal(t, "3375", stored[0].OvertimeAmount)
}

func TestService_RecordAttendance_Errors(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	emp := hire(t, svc)
	date := generic.NewTimePoint(2025, time.March, 12)

	_, _, err := svc.RecordAttendance(ctx, payroll.AttendanceInput{EmployeeID: "ghost", Date: date, CheckIn: "17:00", CheckOut: "01:00"})
	assert.ErrorIs(t, err, generic.ErrNotFound)

	_, _, err = svc.RecordAttendance(ctx, payroll.AttendanceInput{EmployeeID: emp.ID, Date: date, CheckIn: "", CheckOut: "01:00"})
	assert.ErrorIs(t, err, generic.ErrInvalidClock)

	_, _, err = svc.RecordAttendance(ctx, payroll.AttendanceInput{EmployeeID: emp.ID, Date: date, CheckIn: "17:00", CheckOut: "25:10"})
	assert.ErrorIs(t, err, generic.ErrInvalidClock)

	require.NoError(t, svc.ArchiveEmployee(ctx, emp.ID))
	_, _, err = svc.RecordAttendance(ctx, payroll.AttendanceInput{EmployeeID: emp.ID, Date: date, CheckIn: "17:00", CheckOut: "01:00"})
	assert.ErrorIs(t, err, generic.ErrInvalidInput)
}

func TestService_PayAllAndSummary(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	emp := hire(t, svc)

	for day, out := range map[int]string{3: "02:30", 4: "02:00", 5: "00:30"} {
		_, _, err := svc.RecordAttendance(ctx, payroll.AttendanceInput{
			EmployeeID: emp.ID,
			Date:       generic.NewTimePoint(2025, time.March, day),
			CheckIn:    "17:00",
			CheckOut:   out,
		})
		require.NoError(t, err)
	}
	_, err := svc.RecordAbsence(ctx, payroll.AbsenceRecord{EmployeeID: emp.ID, Date: generic.NewTimePoint(2025, time.March, 7), Reason: "enfermedad"})
	require.NoError(t, err)

	summary, err := svc.MonthlySummary(ctx, emp.ID, 2025, time.March)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Records)
	assert.Equal(t, 1, summary.Absences)
	assertDecimal(t, "5625", summary.TotalDebt) // 3375 + 2250 + 0
	assertDecimal(t, "0", summary.TotalPaid)
	assertDecimal(t, "2.5", summary.TotalHours)

	n, total, err := svc.PayAll(ctx, emp.ID, generic.MonthPeriod(2025, time.March))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assertDecimal(t, "5625", total)

	summary, err = svc.MonthlySummary(ctx, emp.ID, 2025, time.March)
	require.NoError(t, err)
	assertDecimal(t, "0", summary.TotalDebt)
	assertDecimal(t, "5625", summary.TotalPaid)

	n, _, err = svc.PayAll(ctx, emp.ID, generic.MonthPeriod(2025, time.March))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestService_SetPaidAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	emp := hire(t, svc)
	rec, _, err := svc.RecordAttendance(ctx, payroll.AttendanceInput{
		EmployeeID: emp.ID, Date: generic.NewTimePoint(2025, time.March, 3), CheckIn: "17:00", CheckOut: "02:30",
	})
	require.NoError(t, err)

	require.NoError(t, svc.SetPaid(ctx, rec.ID, true))
	list, err := svc.Attendance(ctx, emp.ID, generic.Period{})
	require.NoError(t, err)
	assert.True(t, list[0].Paid)

	require.NoError(t, svc.DeleteAttendance(ctx, rec.ID))
	assert.ErrorIs(t, svc.SetPaid(ctx, rec.ID, false), generic.ErrNotFound)
}

func TestService_AbsenceAndAttendanceMayOverlap(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	emp := hire(t, svc)
	date := generic.NewTimePoint(2025, time.March, 3)

	_, _, err := svc.RecordAttendance(ctx, payroll.AttendanceInput{EmployeeID: emp.ID, Date: date, CheckIn: "17:00", CheckOut: "01:00"})
	require.NoError(t, err)
	_, err = svc.RecordAbsence(ctx, payroll.AbsenceRecord{EmployeeID: emp.ID, Date: date})
	require.NoError(t, err)

	attendance, err := svc.Attendance(ctx, emp.ID, generic.Period{})
	require.NoError(t, err)
	absences, err := svc.Absences(ctx, emp.ID, generic.Period{})
	require.NoError(t, err)
	assert.Len(t, payroll.Conflicts(emp.ID, attendance, absences), 1)
}

func TestService_Employees(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	emp := hire(t, svc)

	emp.MonthlySalary = decimal.NewFromInt(400000)
	emp.Position = "Encargada"
	updated, err := svc.UpdateEmployee(ctx, emp)
	require.NoError(t, err)
	assertDecimal(t, "2000", updated.HourlyRate())

	require.NoError(t, svc.ArchiveEmployee(ctx, emp.ID))
	active, err := svc.Employees(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := svc.Employees(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].Active)

	_, err = svc.HireEmployee(ctx, payroll.Employee{Name: "X", ScheduledStart: "9", ScheduledEnd: "17:00"})
	assert.ErrorIs(t, err, generic.ErrInvalidClock)
}

func TestService_Sanctions(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	emp := hire(t, svc)

	sn, err := svc.RecordSanction(ctx, payroll.Sanction{
		EmployeeID:     emp.ID,
		Date:           generic.NewTimePoint(2025, time.March, 2),
		Kind:           payroll.SanctionSuspension,
		Description:    "Llegadas tarde reiteradas",
		SuspensionDays: 2,
	})
	require.NoError(t, err)

	list, err := svc.Sanctions(ctx, emp.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.DeleteSanction(ctx, sn.ID))
	list, err = svc.Sanctions(ctx, emp.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.RecordSanction(ctx, payroll.Sanction{EmployeeID: "ghost", Kind: payroll.SanctionWarning})
	assert.ErrorIs(t, err, generic.ErrNotFound)
}
