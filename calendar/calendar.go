/*
Package calendar provides the day-count and date-arithmetic primitives
shared by every other package in the engine.

PURPOSE:
  All temporal reasoning in the engine (interest accrual intervals,
  limitation periods, rate segment boundaries) is done in whole calendar
  days. This package defines the single Date type and the single day-count
  convention; mixing conventions anywhere else is a defect.

KEY CONCEPTS:
  - Date: a whole calendar day, no time-of-day, no timezone (always UTC)
  - DaysBetween: inclusive-exclusive day count over [from, to)
  - AnnualFraction: days / 365 for rate-to-daily conversion

DAY-COUNT CONVENTION:
  The accrual interval [start, end) contains exactly DaysBetween(start, end)
  days. Annualization uses a fixed 365-day year with no leap adjustment.
  This matches the statutory computation practice the engine reproduces; it
  is a deliberate simplification, not a bug.

SEE ALSO:
  - rates: segments are half-open [effective_from, effective_to) intervals
  - interest: converts day counts to amounts via AnnualFraction
  - limitation: period arithmetic via AddYears/AddMonths
*/
package calendar

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DATE - A whole calendar day
// =============================================================================

// Date is a whole calendar day with no time component. The zero value is
// "no date" and reports IsZero() == true.
type Date struct {
	t time.Time
}

// New constructs a Date from year, month, day.
func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates a time.Time to its calendar day (in UTC).
func FromTime(t time.Time) Date {
	u := t.UTC()
	return New(u.Year(), u.Month(), u.Day())
}

// Parse reads a Date in "2006-01-02" form.
func Parse(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return FromTime(t), nil
}

// MustParse is Parse for literals in tests and fixtures; it panics on error.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// =============================================================================
// COMPARISON
// =============================================================================

func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.t.After(other.t) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.t.Before(other.t) }
func (d Date) IsZero() bool                  { return d.t.IsZero() }

// Min returns the earlier of two dates.
func Min(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

// Max returns the later of two dates.
func Max(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

// =============================================================================
// ARITHMETIC
// =============================================================================

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// AddMonths returns the date n months later. Like time.AddDate, overflowing
// days normalize forward (Jan 31 + 1 month = Mar 2 or 3).
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }

// AddYears returns the date n years later. Feb 29 + 1 year normalizes to
// Mar 1, per time.AddDate.
func (d Date) AddYears(n int) Date { return Date{t: d.t.AddDate(n, 0, 0)} }

// DayAfter returns the next calendar day. Limitation periods start the day
// after a performance deadline, so this shows up in every start-date rule.
func (d Date) DayAfter() Date { return d.AddDays(1) }

// DaysBetween counts calendar days in the half-open interval [from, to).
// It returns InvalidRangeError when to precedes from.
func DaysBetween(from, to Date) (int, error) {
	if to.Before(from) {
		return 0, &InvalidRangeError{Start: from, End: to}
	}
	return int(to.t.Sub(from.t).Hours() / 24), nil
}

// AnnualFraction converts a day count to a fraction of the fixed 365-day
// statutory year.
func AnnualFraction(days int) decimal.Decimal {
	return decimal.NewFromInt(int64(days)).Div(decimal.NewFromInt(365))
}

// =============================================================================
// PROPERTIES & FORMATTING
// =============================================================================

func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }

// Time exposes the underlying time.Time (midnight UTC) for persistence.
func (d Date) Time() time.Time { return d.t }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format("2006-01-02")
}

// MarshalText implements encoding.TextMarshaler so Date serializes as
// "2006-01-02" in JSON documents. The zero Date serializes as "".
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input yields the
// zero Date.
func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
