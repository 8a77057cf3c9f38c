package generic

import "time"

// =============================================================================
// PERIOD - Date window for summaries
// =============================================================================

// Period is an inclusive date window [Start, End].
type Period struct {
	Start TimePoint
	End   TimePoint
}

// MonthPeriod returns the window from the first to the last day of a month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Valid reports whether the period does not end before it starts.
func (p Period) Valid() bool {
	return p.Start.BeforeOrEqual(p.End)
}

// String returns a string representation of the period.
func (p Period) String() string {
	if p.IsZero() {
		return "[all dates]"
	}
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// IsZero reports whether the period is unset. Repository queries read an unset
// period as "no date filter".
func (p Period) IsZero() bool { return p.Start.IsZero() && p.End.IsZero() }

// Includes is Contains, except that an unset period includes every date.
func (p Period) Includes(t TimePoint) bool { return p.IsZero() || p.Contains(t) }
