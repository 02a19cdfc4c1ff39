// Package dateutil holds the date/month string forms the store queries match
// against. The layouts are load-bearing: due_date columns store ISO-8601
// local date times, and the calendar queries compare date(due_date) and
// strftime('%Y-%m', due_date) against these exact formats.
package dateutil

import "time"

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func FormatMonth(t time.Time) string {
	return t.Format(MonthLayout)
}

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// FirstOfMonth truncates t to midnight on the first day of its month.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// AddMonths shifts t by n months, anchored to the first of the month so
// end-of-month normalization can never skip a month.
func AddMonths(t time.Time, n int) time.Time {
	first := FirstOfMonth(t)
	return time.Date(first.Year(), first.Month()+time.Month(n), 1, 0, 0, 0, 0, first.Location())
}

func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
