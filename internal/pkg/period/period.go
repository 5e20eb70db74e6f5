// Package period holds the calendar helpers shared by the attendance and
// payroll batches. All dates are normalized to UTC midnight.
package period

import (
	"errors"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

var (
	ErrInvalidDate  = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidMonth = errors.New("invalid month, expected YYYY-MM")
)

// ParseDate parses "YYYY-MM-DD" into a UTC midnight date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t.UTC(), nil
}

// ParseMonth parses "YYYY-MM" (or a full date, whose day is dropped) into the
// first day of that month.
func ParseMonth(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(MonthLayout, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return MonthStart(t), nil
	}
	return time.Time{}, ErrInvalidMonth
}

// Day truncates t to midnight of its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns the last calendar day of t's month.
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, -1)
}

// IsSunday reports whether t falls on a Sunday in UTC. Sunday is the only
// non-working weekday; Saturday is a working day.
func IsSunday(t time.Time) bool {
	return t.UTC().Weekday() == time.Sunday
}

// Within reports whether day lies in [start, end], comparing calendar days only.
func Within(day, start, end time.Time) bool {
	d := Day(day)
	return !d.Before(Day(start)) && !d.After(Day(end))
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

func FormatMonth(t time.Time) string {
	return t.UTC().Format(MonthLayout)
}
