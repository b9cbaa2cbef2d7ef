package utils

import "time"

const dateLayout = "2006-01-02"

// DateOnly truncates t to midnight of its calendar day in UTC. Leave dates are
// calendar dates, so every comparison goes through this.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the calendar date of now in loc, as a UTC midnight value.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return DateOnly(now.In(loc))
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight value.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// DateKey formats a date as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// EachDay calls fn for every calendar day in [start, end]. It does nothing when start > end.
func EachDay(start, end time.Time, fn func(day time.Time)) {
	for d := DateOnly(start); !d.After(DateOnly(end)); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
