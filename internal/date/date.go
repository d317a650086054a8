// Package date provides a day-granularity calendar date.
//
// Ledger transactions carry a calendar date, not a timestamp: statistics
// bucket by the stored year-month, so a Date must never shift across a
// timezone boundary. All values are normalized with time.Date semantics.
package date

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Format is the ISO-8601 day format used everywhere a Date is serialized.
const Format = "2006-01-02"

// YearMonthFormat identifies a calendar month, e.g. "2024-03".
const YearMonthFormat = "2006-01"

// Date represents a calendar day with no time or zone component.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date for the given year, month, and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// FromTime truncates a time.Time to its calendar day in its own location.
func FromTime(t time.Time) Date {
	return New(t.Date())
}

// Parse parses an ISO-8601 date string ("2006-01-02").
func Parse(s string) (Date, error) {
	t, err := time.Parse(Format, s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return New(t.Date()), nil
}

// MustParse parses an ISO-8601 date string and panics on error.
// Intended for tests and constants.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Year returns the year.
func (d Date) Year() int { return d.y }

// Month returns the month.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// String formats the date in ISO-8601 form.
func (d Date) String() string { return d.time().Format(Format) }

// YearMonth returns the calendar-month identifier, e.g. "2024-03".
func (d Date) YearMonth() string { return d.time().Format(YearMonthFormat) }

// IsZero reports whether d is the zero value.
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// Before reports whether d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// AddDays returns a new Date with the given number of days added.
func (d Date) AddDays(n int) Date { return New(d.y, d.m, d.d+n) }

// AddMonths returns a new Date with the given number of months added,
// normalizing overflow (Jan 31 + 1 month = Mar 2 or 3, per time.Date).
func (d Date) AddMonths(n int) Date { return New(d.y, d.m+time.Month(n), d.d) }

// MonthStart returns the first day of d's month.
func (d Date) MonthStart() Date { return New(d.y, d.m, 1) }

// MonthEnd returns the last day of d's month.
func (d Date) MonthEnd() Date { return New(d.y, d.m+1, 0) }

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }

// Today returns the calendar day of the given instant in its location.
func Today(now time.Time) Date { return New(now.Date()) }

// MarshalJSON encodes the date as an ISO-8601 string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes an ISO-8601 string.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer; dates persist as TEXT.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	case time.Time:
		*d = FromTime(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into date.Date", src)
	}
}
