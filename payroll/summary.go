package payroll

import (
	"sort"

	"github.com/parrilla/backoffice/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONTHLY SUMMARY
// =============================================================================

// MonthlySummary aggregates one employee's records inside a period.
type MonthlySummary struct {
	EmployeeID string
	Period     generic.Period
	TotalDebt  decimal.Decimal // overtime owed (unpaid records)
	TotalPaid  decimal.Decimal // overtime already paid
	TotalHours decimal.Decimal // overtime hours, paid or not
	Absences   int
	Records    int
	Holidays   int // records worked on a holiday
}

// Summarize filters the records to the employee and period and sums them.
// It is recomputed on demand; record volume per month is small.
func Summarize(employeeID string, period generic.Period, attendance []AttendanceRecord, absences []AbsenceRecord) MonthlySummary {
	s := MonthlySummary{
		EmployeeID: employeeID,
		Period:     period,
		TotalDebt:  decimal.Zero,
		TotalPaid:  decimal.Zero,
		TotalHours: decimal.Zero,
	}

	for _, r := range attendance {
		if r.EmployeeID != employeeID || !period.Contains(r.Date) {
			continue
		}
		s.Records++
		s.TotalHours = s.TotalHours.Add(r.OvertimeHours)
		if r.Paid {
			s.TotalPaid = s.TotalPaid.Add(r.OvertimeAmount)
		} else {
			s.TotalDebt = s.TotalDebt.Add(r.OvertimeAmount)
		}
		if r.IsHoliday {
			s.Holidays++
		}
	}

	for _, a := range absences {
		if a.EmployeeID == employeeID && period.Contains(a.Date) {
			s.Absences++
		}
	}
	return s
}

// Conflicts returns the dates on which an employee has both an absence and an
// attendance record, sorted ascending. Both are allowed; the list is for
// review.
func Conflicts(employeeID string, attendance []AttendanceRecord, absences []AbsenceRecord) []generic.TimePoint {
	absent := make(map[string]generic.TimePoint)
	for _, a := range absences {
		if a.EmployeeID == employeeID {
			absent[a.Date.String()] = a.Date
		}
	}

	seen := make(map[string]bool)
	var out []generic.TimePoint
	for _, r := range attendance {
		key := r.Date.String()
		if r.EmployeeID != employeeID || seen[key] {
			continue
		}
		if d, ok := absent[key]; ok {
			out = append(out, d)
			seen[key] = true
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Unpaid returns the unpaid records, oldest first.
func Unpaid(attendance []AttendanceRecord) []AttendanceRecord {
	var out []AttendanceRecord
	for _, r := range attendance {
		if !r.Paid {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
