// Package dates turns free-form date text into canonical calendar dates and
// computes renewed expiry instants.
//
// Everything in this package is a pure function of its inputs: no I/O, no
// shared state, no dependency on the caller's time zone except where the
// generic fallback parser reads an explicit offset from the input itself.
package dates

import (
	"fmt"
	"time"
)

const (
	// MinYear and MaxYear bound the accepted year range (inclusive).
	MinYear = 1970
	MaxYear = 2100

	// CanonicalLayout is the machine format used for storage and wire exchange.
	CanonicalLayout = "2006-01-02"
)

// CalendarDate is a year/month/day triple without a time of day.
// The zero value is not a valid date; use IsZero to detect it.
type CalendarDate struct {
	year  int
	month time.Month
	day   int
}

// NewCalendarDate validates the triple against the accepted range and the
// proleptic Gregorian calendar.
func NewCalendarDate(year int, month time.Month, day int) (CalendarDate, error) {
	if !validTriple(year, int(month), day) {
		return CalendarDate{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, int(month), day)
	}
	return CalendarDate{year: year, month: month, day: day}, nil
}

// DateOf takes the calendar date of t in t's own location.
// It does not enforce the accepted year range.
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{year: y, month: m, day: d}
}

// FromUnix converts seconds since the epoch to the UTC calendar date.
func FromUnix(sec int64) CalendarDate {
	return DateOf(time.Unix(sec, 0).UTC())
}

// Year returns the four-digit year.
func (d CalendarDate) Year() int { return d.year }

// Month returns the month of the year.
func (d CalendarDate) Month() time.Month { return d.month }

// Day returns the day of the month, starting at 1.
func (d CalendarDate) Day() int { return d.day }

// IsZero reports whether d is the zero value.
func (d CalendarDate) IsZero() bool {
	return d.year == 0 && d.month == 0 && d.day == 0
}

// Time returns UTC midnight of d.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// Unix returns seconds since the epoch at UTC midnight of d.
func (d CalendarDate) Unix() int64 {
	return d.Time().Unix()
}

// Equal reports whether both dates name the same day.
func (d CalendarDate) Equal(o CalendarDate) bool {
	return d == o
}

// Before reports whether d is strictly earlier than o.
func (d CalendarDate) Before(o CalendarDate) bool {
	if d.year != o.year {
		return d.year < o.year
	}
	if d.month != o.month {
		return d.month < o.month
	}
	return d.day < o.day
}

// String returns the canonical YYYY-MM-DD form.
func (d CalendarDate) String() string {
	return Canonical(d)
}

// validTriple applies the range checks and the round-trip check: the triple
// must survive time.Date normalisation unchanged (no Feb 30 -> Mar 2).
func validTriple(year, month, day int) bool {
	if year < MinYear || year > MaxYear {
		return false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}

// daysIn returns the number of days in month m of year y.
func daysIn(y int, m time.Month) int {
	// Day 0 of the next month is the last day of m.
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
