package date

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestNewNormalizes(t *testing.T) {
	// Day overflow rolls into the next month, like time.Date.
	assert.Equal(t, New(2025, time.March, 1), New(2025, time.February, 29))
	assert.Equal(t, New(2024, time.February, 29), New(2024, time.February, 29))
}

func TestParse(t *testing.T) {
	d, err := Parse("2025-06-30")
	assert.NoError(t, err)
	assert.Equal(t, New(2025, time.June, 30), d)

	// Lenient single-digit components.
	d, err = Parse("2025-7-1")
	assert.NoError(t, err)
	assert.Equal(t, New(2025, time.July, 1), d)

	_, err = Parse("30/06/2025")
	assert.Error(t, err)
}

func TestOrdering(t *testing.T) {
	a := MustParse("2025-06-29")
	b := MustParse("2025-06-30")

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, 1, b.Compare(a))
}

func TestAddDays(t *testing.T) {
	assert.Equal(t, MustParse("2025-07-01"), MustParse("2025-06-30").AddDays(1))
	assert.Equal(t, MustParse("2025-06-30"), MustParse("2025-07-01").AddDays(-1))
	assert.Equal(t, MustParse("2024-02-29"), MustParse("2024-03-01").AddDays(-1))
}

func TestMonthEnd(t *testing.T) {
	assert.True(t, MustParse("2025-06-30").IsMonthEnd())
	assert.False(t, MustParse("2025-06-29").IsMonthEnd())
	assert.True(t, MustParse("2024-02-29").IsMonthEnd())
	assert.False(t, MustParse("2023-02-28").Before(MustParse("2023-02-28")))

	assert.Equal(t, 29, MustParse("2024-02-01").DaysInMonth())
	assert.Equal(t, 28, MustParse("2023-02-01").DaysInMonth())
	assert.Equal(t, MustParse("2025-04-30"), MustParse("2025-04-12").MonthEnd())
}

func TestDateJSON(t *testing.T) {
	data, err := json.Marshal(MustParse("2025-06-30"))
	assert.NoError(t, err)
	assert.Equal(t, `"2025-06-30"`, string(data))

	var d Date
	assert.NoError(t, json.Unmarshal([]byte(`"2025-06-30"`), &d))
	assert.Equal(t, MustParse("2025-06-30"), d)

	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &d))
}

func TestMonthDay(t *testing.T) {
	md, err := ParseMonthDay("06-30")
	assert.NoError(t, err)
	assert.Equal(t, MonthDay{Month: time.June, Day: 30}, md)
	assert.Equal(t, "06-30", md.String())
	assert.Equal(t, MustParse("2025-06-30"), md.In(2025))

	_, err = ParseMonthDay("June 30")
	assert.Error(t, err)
}

func TestMonthDayJSON(t *testing.T) {
	var md MonthDay
	assert.NoError(t, json.Unmarshal([]byte(`"06-30"`), &md))
	assert.Equal(t, MonthDay{Month: time.June, Day: 30}, md)

	data, err := json.Marshal(md)
	assert.NoError(t, err)
	assert.Equal(t, `"06-30"`, string(data))
}
