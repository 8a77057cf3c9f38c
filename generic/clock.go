package generic

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// CLOCK - Wall-clock "HH:MM" arithmetic
// =============================================================================

// MinutesPerDay is added to a duration whose end is before its start.
const MinutesPerDay = 24 * 60

// TimeToMinutes converts "HH:MM" into minutes since midnight.
// Empty input returns 0; callers validate non-empty strings upstream.
// A component that is not a number counts as 0.
func TimeToMinutes(t string) int {
	t = strings.TrimSpace(t)
	if t == "" {
		return 0
	}
	hh, mm, _ := strings.Cut(t, ":")
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	return h*60 + m
}

// DurationMinutes returns the minutes from start to end. When end is earlier
// than start the span crosses midnight exactly once. Spans of 24h or more
// cannot be represented.
func DurationMinutes(start, end string) int {
	s := TimeToMinutes(start)
	e := TimeToMinutes(end)
	if e < s {
		e += MinutesPerDay
	}
	return e - s
}

// ParseClock is the strict form of TimeToMinutes: it rejects anything that
// is not a valid 24h "HH:MM".
func ParseClock(t string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(t), ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, &ClockError{Input: t}
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, &ClockError{Input: t}
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, &ClockError{Input: t}
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	minutes = ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
