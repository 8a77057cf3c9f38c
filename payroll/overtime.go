package payroll

import (
	"strings"
	"time"

	"github.com/parrilla/backoffice/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// OVERTIME CALCULATOR
// =============================================================================

var (
	// OvertimeMultiplier applies to overtime on regular days.
	OvertimeMultiplier = decimal.RequireFromString("1.5")

	// HolidayMultiplier applies to overtime on official holidays.
	HolidayMultiplier = decimal.NewFromInt(2)

	minutesPerHour = decimal.NewFromInt(60)
)

// OvertimeInput is everything the calculation needs about one worked day.
type OvertimeInput struct {
	ScheduledStart string
	ScheduledEnd   string
	CheckIn        string
	CheckOut       string
	Date           generic.TimePoint
	MonthlySalary  decimal.Decimal
}

// OvertimeResult is the priced outcome of a worked day.
type OvertimeResult struct {
	WorkedMinutes   int
	StandardMinutes int
	// OvertimeMinutes is worked − standard and may be negative.
	OvertimeMinutes int

	WorkedHours   decimal.Decimal
	StandardHours decimal.Decimal
	// OvertimeHours is never negative; leaving early is not penalised.
	OvertimeHours decimal.Decimal

	BaseRate   decimal.Decimal // monthly salary / 200
	Multiplier decimal.Decimal // 1.5, or 2 on holidays
	Rate       decimal.Decimal // BaseRate * Multiplier
	Amount     decimal.Decimal // OvertimeHours * Rate, in cents

	IsOvertime  bool
	IsUndertime bool
	IsHoliday   bool
}

// CalculateOvertime prices the overtime of one worked day.
//
// Steps:
//  1. standard = DurationMinutes(scheduledStart, scheduledEnd)
//  2. worked   = DurationMinutes(checkIn, checkOut)
//  3. overtime = worked − standard, floored at zero for pay
//  4. amount   = overtime hours × (salary / 200) × multiplier
//
// It returns ok=false when any of the four times is empty; callers skip the
// record instead of handling an error.
func CalculateOvertime(in OvertimeInput, holidays generic.HolidayCalendar) (OvertimeResult, bool) {
	for _, t := range []string{in.ScheduledStart, in.ScheduledEnd, in.CheckIn, in.CheckOut} {
		if strings.TrimSpace(t) == "" {
			return OvertimeResult{}, false
		}
	}

	standard := generic.DurationMinutes(in.ScheduledStart, in.ScheduledEnd)
	worked := generic.DurationMinutes(in.CheckIn, in.CheckOut)
	raw := worked - standard

	paidMinutes := 0
	if raw > 0 {
		paidMinutes = raw
	}

	isHoliday := holidays != nil && holidays.IsHoliday(in.Date)
	multiplier := OvertimeMultiplier
	if isHoliday {
		multiplier = HolidayMultiplier
	}

	baseRate := in.MonthlySalary.Div(decimal.NewFromInt(MonthlyHoursDivisor))
	rate := baseRate.Mul(multiplier)
	// Priced from minutes, not from the rounded hours.
	amount := decimal.NewFromInt(int64(paidMinutes)).Mul(rate).Div(minutesPerHour)

	return OvertimeResult{
		WorkedMinutes:   worked,
		StandardMinutes: standard,
		OvertimeMinutes: raw,
		WorkedHours:     minutesToHours(worked),
		StandardHours:   minutesToHours(standard),
		OvertimeHours:   minutesToHours(paidMinutes),
		BaseRate:        generic.RoundMoney(baseRate),
		Multiplier:      multiplier,
		Rate:            generic.RoundMoney(rate),
		Amount:          generic.RoundMoney(amount),
		IsOvertime:      paidMinutes > 0,
		IsUndertime:     raw < 0,
		IsHoliday:       isHoliday,
	}, true
}

func minutesToHours(m int) decimal.Decimal {
	return decimal.NewFromInt(int64(m)).Div(minutesPerHour).Round(2)
}

// NewAttendanceRecord turns a calculation into the record that is stored.
// Paid always starts false.
func NewAttendanceRecord(employeeID string, in OvertimeInput, res OvertimeResult, now time.Time) AttendanceRecord {
	return AttendanceRecord{
		ID:             generic.NewID(),
		EmployeeID:     employeeID,
		Date:           generic.DateOf(in.Date.Time),
		CheckIn:        in.CheckIn,
		CheckOut:       in.CheckOut,
		OvertimeHours:  res.OvertimeHours,
		OvertimeAmount: res.Amount,
		Paid:           false,
		IsHoliday:      res.IsHoliday,
		CreatedAt:      now,
	}
}
