package date

import (
	"fmt"
	"time"
)

// Unit is the calendar unit by which comparative periods are shifted.
type Unit int

const (
	Months Unit = iota
	Years
)

// ParseUnit parses a Unit from its string form ("months" or "years").
func ParseUnit(str string) (Unit, error) {
	switch str {
	case "months", "month":
		return Months, nil
	case "years", "year":
		return Years, nil
	}
	return 0, fmt.Errorf("invalid period unit %q, want \"months\" or \"years\"", str)
}

// String returns the string form of the unit.
func (u Unit) String() string {
	if u == Years {
		return "years"
	}
	return "months"
}

// ShiftBack returns the anchor date shifted back by n units, snapping to month
// ends. If the anchor is the last calendar day of its month, the result is
// forced to the last day of the target month. Otherwise, when the target month
// is shorter than the anchor's day-of-month, the result clamps to the target
// month's last day.
func ShiftBack(anchor Date, unit Unit, n int) Date {
	var y int
	var m int
	switch unit {
	case Years:
		y, m = anchor.Year()-n, int(anchor.Month())
	default:
		// Normalize month underflow manually so the day component does not
		// spill into a neighbouring month via time.Date normalization.
		y, m = anchor.Year(), int(anchor.Month())-n
		for m < 1 {
			m += 12
			y--
		}
	}

	target := New(y, time.Month(m), 1)
	switch {
	case anchor.IsMonthEnd():
		return target.MonthEnd()
	case anchor.Day() > target.DaysInMonth():
		return target.MonthEnd()
	default:
		return New(y, time.Month(m), anchor.Day())
	}
}

// Comparative returns n period-end dates, most recent first. Period 0 is the
// anchor itself; period i is the anchor shifted back i units.
func Comparative(anchor Date, unit Unit, n int) []Date {
	dates := make([]Date, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, ShiftBack(anchor, unit, i))
	}
	return dates
}

// Range is an inclusive date range.
type Range struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// String formats the range as "start to end".
func (r Range) String() string { return r.Start.String() + " to " + r.End.String() }

// ComparativeRanges returns n ranges, most recent first, shifting both
// endpoints by the same unit and count. A span not exactly one unit long
// yields overlapping or gapped periods; that is the caller's choice and is
// not corrected here.
func ComparativeRanges(r Range, unit Unit, n int) []Range {
	starts := Comparative(r.Start, unit, n)
	ends := Comparative(r.End, unit, n)
	ranges := make([]Range, n)
	for i := range ranges {
		ranges[i] = Range{Start: starts[i], End: ends[i]}
	}
	return ranges
}

// FinancialYearStart returns the first day of the financial year containing
// d, given the recurring financial-year-end day: the day after the previous
// year's realization of the financial year's closing end.
func FinancialYearStart(d Date, eofy MonthDay) Date {
	end := FinancialYearEnd(d, eofy)
	return eofy.In(end.Year() - 1).AddDays(1)
}

// FinancialYearEnd returns the financial-year-end date on or after d.
func FinancialYearEnd(d Date, eofy MonthDay) Date {
	end := eofy.In(d.Year())
	if end.Before(d) {
		end = eofy.In(d.Year() + 1)
	}
	return end
}
