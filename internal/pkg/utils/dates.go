package utils

import (
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/pkg/apperror"
)

const DateLayout = "2006-01-02"

// ParseDate reads a YYYY-MM-DD calendar day as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, apperror.InvalidInput("date %q must be in YYYY-MM-DD format", s)
	}
	return t, nil
}

// Today returns the calendar day of now in loc, as UTC midnight.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	n := now.In(loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// IsFutureDate reports whether day comes after today in loc.
func IsFutureDate(day, now time.Time, loc *time.Location) bool {
	return day.After(Today(now, loc))
}

// IsFutureMonth reports whether the month starts after the current one in loc.
func IsFutureMonth(month, year int, now time.Time, loc *time.Location) bool {
	today := Today(now, loc)
	if year != today.Year() {
		return year > today.Year()
	}
	return month > int(today.Month())
}

// MonthRange returns the first and last day of a month.
func MonthRange(month, year int) (from, to time.Time) {
	from = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(0, 1, -1)
	return from, to
}

// PreviousMonth steps one month back, wrapping the year.
func PreviousMonth(month, year int) (int, int) {
	if month == 1 {
		return 12, year - 1
	}
	return month - 1, year
}
