package date

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestParseUnit(t *testing.T) {
	u, err := ParseUnit("months")
	assert.NoError(t, err)
	assert.Equal(t, Months, u)

	u, err = ParseUnit("years")
	assert.NoError(t, err)
	assert.Equal(t, Years, u)

	_, err = ParseUnit("fortnights")
	assert.Error(t, err)
}

func TestComparativeMonthEndAnchors(t *testing.T) {
	// A month-end anchor snaps every period to its month end.
	dates := Comparative(MustParse("2025-06-30"), Months, 3)
	assert.Equal(t, []Date{
		MustParse("2025-06-30"),
		MustParse("2025-05-31"),
		MustParse("2025-04-30"),
	}, dates)
}

func TestComparativeMidMonthAnchors(t *testing.T) {
	// A mid-month anchor keeps its day, clamping where the target month is
	// shorter.
	dates := Comparative(MustParse("2025-05-29"), Months, 4)
	assert.Equal(t, []Date{
		MustParse("2025-05-29"),
		MustParse("2025-04-29"),
		MustParse("2025-03-29"),
		MustParse("2025-02-28"),
	}, dates)
}

func TestShiftBackYearBoundary(t *testing.T) {
	assert.Equal(t, MustParse("2024-11-30"), ShiftBack(MustParse("2025-01-31"), Months, 2))
	assert.Equal(t, MustParse("2024-12-15"), ShiftBack(MustParse("2025-01-15"), Months, 1))
}

func TestShiftBackYears(t *testing.T) {
	assert.Equal(t, MustParse("2023-06-30"), ShiftBack(MustParse("2025-06-30"), Years, 2))
	// Leap-day anchor clamps in non-leap target years.
	assert.Equal(t, MustParse("2023-02-28"), ShiftBack(MustParse("2024-02-29"), Years, 1))
}

func TestComparativeRanges(t *testing.T) {
	ranges := ComparativeRanges(Range{
		Start: MustParse("2024-07-01"),
		End:   MustParse("2025-06-30"),
	}, Years, 2)

	assert.Equal(t, []Range{
		{Start: MustParse("2024-07-01"), End: MustParse("2025-06-30")},
		{Start: MustParse("2023-07-01"), End: MustParse("2024-06-30")},
	}, ranges)
}

func TestFinancialYearStart(t *testing.T) {
	eofy := MonthDay{Month: 6, Day: 30}

	// Mid-year date falls in the financial year that started the previous
	// July.
	assert.Equal(t, MustParse("2024-07-01"), FinancialYearStart(MustParse("2025-01-15"), eofy))
	// A date just after EOFY starts a new financial year.
	assert.Equal(t, MustParse("2025-07-01"), FinancialYearStart(MustParse("2025-07-01"), eofy))
	// A date on EOFY still belongs to the closing year.
	assert.Equal(t, MustParse("2024-07-01"), FinancialYearStart(MustParse("2025-06-30"), eofy))
}

func TestFinancialYearEnd(t *testing.T) {
	eofy := MonthDay{Month: 6, Day: 30}

	assert.Equal(t, MustParse("2025-06-30"), FinancialYearEnd(MustParse("2025-01-15"), eofy))
	assert.Equal(t, MustParse("2025-06-30"), FinancialYearEnd(MustParse("2025-06-30"), eofy))
	assert.Equal(t, MustParse("2026-06-30"), FinancialYearEnd(MustParse("2025-07-01"), eofy))
}

func TestCalendarYearEOFY(t *testing.T) {
	eofy := MonthDay{Month: 12, Day: 31}

	assert.Equal(t, MustParse("2025-01-01"), FinancialYearStart(MustParse("2025-03-10"), eofy))
	assert.Equal(t, MustParse("2025-12-31"), FinancialYearEnd(MustParse("2025-03-10"), eofy))
}
