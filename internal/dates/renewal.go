package dates

import (
	"fmt"
	"math"
	"time"
)

const oneDay = 24 * time.Hour

// RenewalSpec describes how far a renewal extends an expiry.
// The variants are Days, CalendarYears and ExplicitDate.
type RenewalSpec interface {
	// Validate reports a spec the calculator would accept but that makes no sense as a renewal.
	Validate() error
	renewal()
}

// Days extends the expiry by n × 24h.
type Days int

// CalendarYears extends the expiry by n calendar years, keeping month and day.
type CalendarYears int

// ExplicitDate replaces the expiry with UTC midnight of Date.
type ExplicitDate struct {
	Date CalendarDate
}

func (Days) renewal()          {}
func (CalendarYears) renewal() {}
func (ExplicitDate) renewal()  {}

// Validate rejects a non-positive day count.
func (n Days) Validate() error {
	if n <= 0 {
		return fmt.Errorf("%w: days must be positive, got %d", ErrInvalidRenewal, int(n))
	}
	return nil
}

// Validate rejects a non-positive year count.
func (n CalendarYears) Validate() error {
	if n <= 0 {
		return fmt.Errorf("%w: years must be positive, got %d", ErrInvalidRenewal, int(n))
	}
	return nil
}

// Validate rejects the zero date.
func (e ExplicitDate) Validate() error {
	if e.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidRenewal)
	}
	return nil
}

// ComputeNewExpiry returns the expiry after applying spec.
//
// An already expired resource (current before now) renews from now, any other
// from its current expiry. Calendar-year renewals clamp the day to the last
// day of the target month, so Feb 29 + 1 year is Feb 28, never Mar 1.
// The result is not checked against [MinYear, MaxYear].
func ComputeNewExpiry(current time.Time, spec RenewalSpec, now time.Time) time.Time {
	base := current
	if current.Before(now) {
		base = now
	}

	switch s := spec.(type) {
	case Days:
		return base.Add(time.Duration(s) * oneDay)
	case CalendarYears:
		return addYearsClamped(base, int(s))
	case ExplicitDate:
		return s.Date.Time()
	default:
		return base
	}
}

// addYearsClamped moves t by n years in t's location, keeping the clock time.
func addYearsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	y += n
	if last := daysIn(y, m); d > last {
		d = last
	}
	hh, mm, ss := t.Clock()
	return time.Date(y, m, d, hh, mm, ss, t.Nanosecond(), t.Location())
}

// RemainingDays is the number of started days between now and expiry,
// rounded up; zero or negative means expired.
func RemainingDays(expiry, now time.Time) int {
	return int(math.Ceil(expiry.Sub(now).Hours() / 24))
}
