package models

import "time"

// DayLayout is the ISO calendar-date format used for every logical day
// (goal dates, session dates, completion dates, confidence dates).
const DayLayout = "2006-01-02"

// ParseDay parses a YYYY-MM-DD string. The result is midnight UTC so that
// day arithmetic never crosses a DST boundary.
func ParseDay(s string) (time.Time, bool) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func FormatDay(t time.Time) string { return t.Format(DayLayout) }

// DayOf returns the calendar day of t in loc.
func DayOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DayLayout)
}

// AddDays shifts a YYYY-MM-DD day by n days. Malformed input yields "".
func AddDays(day string, n int) string {
	t, ok := ParseDay(day)
	if !ok {
		return ""
	}
	return FormatDay(t.AddDate(0, 0, n))
}

// NormalizeDay re-formats a day string, returning "" when it is malformed.
func NormalizeDay(day string) string {
	t, ok := ParseDay(day)
	if !ok {
		return ""
	}
	return FormatDay(t)
}
