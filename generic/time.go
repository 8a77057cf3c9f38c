package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// TIME POINT - Calendar date used as record key
// =============================================================================

type TimePoint struct {
	Time        time.Time
	Granularity Granularity
}

type Granularity int

const (
	GranularityDay Granularity = iota
	GranularityMinute
)

// DateLayout is the wire and storage format of a calendar date.
const DateLayout = "2006-01-02"

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Granularity: GranularityDay}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// ParseDate reads a "YYYY-MM-DD" date. Errors wrap ErrInvalidInput.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimePoint{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidInput, s)
	}
	return DateOf(t), nil
}

func Today() TimePoint {
	return DateOf(time.Now())
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return tp.Before(other) || tp.Equal(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return tp.After(other) || tp.Equal(other) }

func (tp TimePoint) normalize() time.Time {
	switch tp.Granularity {
	case GranularityDay:
		return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
	default:
		return tp.Time
	}
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint {
	return TimePoint{Time: tp.Time.AddDate(0, 0, n), Granularity: tp.Granularity}
}

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

func (tp TimePoint) String() string {
	switch tp.Granularity {
	case GranularityDay:
		return tp.Time.Format(DateLayout)
	default:
		return tp.Time.Format(time.RFC3339)
	}
}

// =============================================================================
// HOLIDAY CALENDAR - Official holidays
// =============================================================================

// Holiday is an official holiday. Overtime worked on a holiday is paid at the
// holiday multiplier.
type Holiday struct {
	ID        string
	Date      TimePoint
	Name      string
	Recurring bool // true = same month/day every year
}

// HolidayCalendar provides holiday lookup functionality.
type HolidayCalendar interface {
	IsHoliday(date TimePoint) bool
}

// HolidaySet is an in-memory HolidayCalendar built from stored holidays.
// It is consulted when an attendance record is created, never retroactively.
type HolidaySet struct {
	exact     map[string]bool
	recurring map[string]bool // "MM-DD"
}

// NewHolidaySet indexes the given holidays for lookup.
func NewHolidaySet(holidays []Holiday) *HolidaySet {
	hs := &HolidaySet{
		exact:     make(map[string]bool, len(holidays)),
		recurring: make(map[string]bool),
	}
	for _, h := range holidays {
		hs.Add(h)
	}
	return hs
}

// Add registers one more holiday.
func (hs *HolidaySet) Add(h Holiday) {
	if h.Recurring {
		hs.recurring[h.Date.Time.Format("01-02")] = true
		return
	}
	hs.exact[h.Date.String()] = true
}

func (hs *HolidaySet) IsHoliday(date TimePoint) bool {
	if hs == nil {
		return false
	}
	d := DateOf(date.Time)
	return hs.exact[d.String()] || hs.recurring[d.Time.Format("01-02")]
}

// Len returns the number of distinct dates and recurring days in the set.
func (hs *HolidaySet) Len() int {
	if hs == nil {
		return 0
	}
	return len(hs.exact) + len(hs.recurring)
}

// NoHolidays is a calendar with no holidays.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(TimePoint) bool { return false }

// =============================================================================
// TIME UTILITIES
// =============================================================================

func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }
func EndOfMonth(year int, month time.Month) TimePoint {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return TimePoint{Time: t, Granularity: GranularityDay}
}
