package report

import (
	"strings"
	"time"
)

// Date layouts used across the app.
const (
	DateLayout        = "2006-01-02"
	DisplayDateLayout = "2006/01/02"
)

// FormatDisplayDate converts YYYY-MM-DD to YYYY/MM/DD. Input that is not a
// valid date is returned with dashes swapped for slashes.
func FormatDisplayDate(date string) string {
	t, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return strings.ReplaceAll(date, "-", "/")
	}
	return t.Format(DisplayDateLayout)
}

// ParseDisplayDate converts YYYY/MM/DD back to YYYY-MM-DD.
func ParseDisplayDate(display string) (string, error) {
	t, err := time.Parse(DisplayDateLayout, strings.TrimSpace(display))
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// FormatDate returns the calendar date of t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// NextDay returns the day after date. Invalid input is returned unchanged.
func NextDay(date string) string {
	return addDays(date, 1)
}

// PrevDay returns the day before date. Invalid input is returned unchanged.
func PrevDay(date string) string {
	return addDays(date, -1)
}

func addDays(date string, n int) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, n).Format(DateLayout)
}

// DefaultDates returns the starting dates for a fresh form: results for
// yesterday, plans from today.
func DefaultDates(now time.Time) (resultDate, planDate string) {
	return FormatDate(now.AddDate(0, 0, -1)), FormatDate(now)
}
