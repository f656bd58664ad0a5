package calendar

import (
	"testing"
	"time"

	"github.com/golang-sql/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) civil.Date {
	return civil.Date{Year: year, Month: month, Day: day}
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func aprilCalendar(t *testing.T) *Calendar {
	t.Helper()
	holidays, err := ParseDateSet([]string{"2024-04-01", "2024-04-04"})
	require.NoError(t, err)
	occupied, err := ParseDateSet([]string{"2024-04-10", "2024-04-15"})
	require.NoError(t, err)

	return New(Config{
		Holidays: holidays,
		Occupied: occupied,
		Now:      fixedNow(time.Date(2024, 4, 5, 9, 30, 0, 0, time.UTC)),
	})
}

func TestCalendar_Month_April2024(t *testing.T) {
	cal := aprilCalendar(t)

	days := cal.Month(YearMonth{Year: 2024, Month: time.April})
	require.Len(t, days, 31)

	assert.True(t, days[0].Blank)
	assert.Equal(t, civil.Date{}, days[0].Date)
	assert.False(t, days[0].Selectable())

	for i, day := range days[1:] {
		assert.False(t, day.Blank)
		assert.Equal(t, date(2024, time.April, i+1), day.Date)
	}

	byDay := func(n int) Day { return days[n] }
	assert.True(t, byDay(10).IsOccupied)
	assert.True(t, byDay(15).IsOccupied)
	assert.False(t, byDay(11).IsOccupied)

	assert.True(t, byDay(1).IsHoliday)
	assert.True(t, byDay(4).IsHoliday)
	assert.False(t, byDay(5).IsHoliday)

	for _, sunday := range []int{7, 14, 21, 28} {
		assert.True(t, byDay(sunday).IsWeekendSpecial, "April %d is a Sunday", sunday)
	}
	assert.False(t, byDay(8).IsWeekendSpecial)

	for n := 1; n <= 4; n++ {
		assert.True(t, byDay(n).IsPast, "April %d is before today", n)
	}
	assert.False(t, byDay(5).IsPast, "today is not past")
	assert.True(t, byDay(5).Selectable())
	assert.False(t, byDay(10).Selectable())
}

func TestCalendar_Month_MondayWeekStart(t *testing.T) {
	cal := New(Config{WeekStart: time.Monday, Now: fixedNow(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))})

	days := cal.Month(YearMonth{Year: 2024, Month: time.April})
	assert.Len(t, days, 30)
	assert.False(t, days[0].Blank)

	// September 2024 starts on a Sunday: six blanks with a Monday start.
	days = cal.Month(YearMonth{Year: 2024, Month: time.September})
	assert.Len(t, days, 6+30)
	assert.True(t, days[5].Blank)
	assert.Equal(t, date(2024, time.September, 1), days[6].Date)
}

func TestCalendar_Month_LeapFebruary(t *testing.T) {
	cal := New(Config{Now: fixedNow(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))})

	days := cal.Month(YearMonth{Year: 2024, Month: time.February})
	// Feb 1 2024 is a Thursday.
	assert.Len(t, days, 4+29)
	assert.Equal(t, date(2024, time.February, 29), days[len(days)-1].Date)
}

func TestCalendar_Today_UsesLocation(t *testing.T) {
	hkt := time.FixedZone("HKT", 8*60*60)
	cal := New(Config{
		Location: hkt,
		Now:      fixedNow(time.Date(2024, 4, 4, 20, 0, 0, 0, time.UTC)),
	})

	assert.Equal(t, date(2024, time.April, 5), cal.Today())
	assert.True(t, cal.IsPast(date(2024, time.April, 4)))
	assert.False(t, cal.IsPast(date(2024, time.April, 5)))
}

func TestCalendar_SelectableDates(t *testing.T) {
	cal := aprilCalendar(t)

	dates := cal.SelectableDates(YearMonth{Year: 2024, Month: time.April})
	// 30 days, minus April 1-4 (past), minus the 10th and 15th (occupied).
	assert.Len(t, dates, 24)
	assert.Equal(t, date(2024, time.April, 5), dates[0])
	assert.NotContains(t, dates, date(2024, time.April, 10))
}

func TestYearMonth_AddMonths(t *testing.T) {
	ym := YearMonth{Year: 2024, Month: time.December}

	assert.Equal(t, YearMonth{Year: 2025, Month: time.January}, ym.AddMonths(1))
	assert.Equal(t, YearMonth{Year: 2024, Month: time.November}, ym.AddMonths(-1))
	assert.Equal(t, "2024-12", ym.String())
	assert.Equal(t, 31, ym.Days())
}

func TestParseYearMonth(t *testing.T) {
	ym, err := ParseYearMonth("2024-02")
	require.NoError(t, err)
	assert.Equal(t, YearMonth{Year: 2024, Month: time.February}, ym)
	assert.Equal(t, 29, ym.Days())

	_, err = ParseYearMonth("2024-13")
	assert.Error(t, err)
}

func TestParseDateSet_Invalid(t *testing.T) {
	_, err := ParseDateSet([]string{"2024-04-31"})
	assert.Error(t, err)
}

func TestParseWeekday(t *testing.T) {
	wd, err := ParseWeekday(" Sunday ")
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, wd)

	wd, err = ParseWeekday("mon")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, wd)

	_, err = ParseWeekday("someday")
	assert.Error(t, err)
}
