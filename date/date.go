// Package date provides day-granularity dates and the calendar arithmetic
// used for comparative reporting periods and financial-year boundaries.
package date

import (
	"encoding/json"
	"fmt"
	"time"
)

// Format is the canonical string representation of a date, ISO-8601.
const Format = "2006-01-02"

// readFormat is permissive and accepts single-digit month/day, e.g. "2025-7-1".
const readFormat = "2006-1-2"

// Date represents a calendar date with no time-of-day component.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date for the given year, month and day.
// Out-of-range values are normalized the same way time.Date does.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// time returns the canonical time.Time for the date (midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Year returns the year of the date.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// Before reports whether d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Compare returns -1, 0 or 1 depending on whether d is before, equal to or
// after x.
func (d Date) Compare(x Date) int { return d.time().Compare(x.time()) }

// AddDays returns a new Date with the given number of days added. The count
// may be negative.
func (d Date) AddDays(n int) Date { return New(d.y, d.m, d.d+n) }

// DaysInMonth returns the number of days in the date's month.
func (d Date) DaysInMonth() int {
	// Day zero of the next month is the last day of this month.
	return time.Date(d.y, d.m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsMonthEnd reports whether the date is the last calendar day of its month.
func (d Date) IsMonthEnd() bool { return d.d == d.DaysInMonth() }

// MonthEnd returns the last day of the date's month.
func (d Date) MonthEnd() Date { return New(d.y, d.m, d.DaysInMonth()) }

// String formats the date in its canonical format.
func (d Date) String() string { return d.time().Format(Format) }

// Parse parses a Date from a string. It is lenient and accepts single-digit
// month and day components.
func Parse(str string) (Date, error) {
	t, err := time.Parse(readFormat, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want format %q: %w", str, Format, err)
	}
	return New(t.Date()), nil
}

// MustParse is like Parse but panics on error. Use only in tests or with
// trusted input.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// Today returns the current date.
func Today() Date { return New(time.Now().Date()) }

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := Parse(str)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

var (
	_ json.Marshaler   = Date{}
	_ json.Unmarshaler = (*Date)(nil)
)

// MonthDay is a recurring calendar day, such as a financial-year end of
// June 30.
type MonthDay struct {
	Month time.Month
	Day   int
}

// ParseMonthDay parses a MonthDay from "MM-DD" form.
func ParseMonthDay(str string) (MonthDay, error) {
	t, err := time.Parse("1-2", str)
	if err != nil {
		return MonthDay{}, fmt.Errorf("invalid month-day %q, want format %q: %w", str, "MM-DD", err)
	}
	return MonthDay{Month: t.Month(), Day: t.Day()}, nil
}

// String formats the month-day as "MM-DD".
func (md MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", md.Month, md.Day)
}

// In returns the MonthDay realized in the given year.
func (md MonthDay) In(year int) Date { return New(year, md.Month, md.Day) }

// MarshalJSON implements json.Marshaler.
func (md MonthDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(md.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (md *MonthDay) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseMonthDay(str)
	if err != nil {
		return err
	}
	*md = parsed
	return nil
}
