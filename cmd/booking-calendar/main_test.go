package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/golang-sql/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxirent/bookingservice/internal/booking"
	"github.com/taxirent/bookingservice/internal/calendar"
	"github.com/taxirent/bookingservice/internal/domain"
	"github.com/taxirent/bookingservice/internal/pricing"
	"github.com/taxirent/bookingservice/internal/selection"
)

func april(d int) civil.Date {
	return civil.Date{Year: 2024, Month: time.April, Day: d}
}

func newTestSession(t *testing.T) *booking.Session {
	t.Helper()
	cal := calendar.New(calendar.Config{
		Holidays: calendar.NewDateSet(april(1), april(4)),
		Occupied: calendar.NewDateSet(april(10), april(15)),
		Now:      func() time.Time { return time.Date(2024, 4, 5, 9, 0, 0, 0, time.UTC) },
	})
	car := domain.Car{
		ID:                "car-001",
		Brand:             "Toyota",
		Model:             "Comfort Hybrid",
		TaxiType:          domain.TaxiTypeRed,
		MorningPriceCents: 30000,
		EveningPriceCents: 26000,
		DepositCents:      200000,
	}
	return booking.NewSession("sess-1", car, cal, pricing.NewCalculator(pricing.DefaultConfig()))
}

func TestParseStep(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		want    step
		wantErr bool
	}{
		{name: "mode", arg: "mode=special", want: step{raw: "mode=special", kind: stepMode, mode: selection.ModeSpecial}},
		{name: "click", arg: "click=2024-04-20", want: step{raw: "click=2024-04-20", kind: stepClick, from: april(20)}},
		{name: "drag", arg: "drag=2024-04-20..2024-04-12", want: step{raw: "drag=2024-04-20..2024-04-12", kind: stepDrag, from: april(20), to: april(12)}},
		{name: "next month", arg: "month=next", want: step{raw: "month=next", kind: stepMonth, delta: 1}},
		{name: "explicit month", arg: "month=2024-06", want: step{raw: "month=2024-06", kind: stepMonth, month: calendar.YearMonth{Year: 2024, Month: time.June}}},
		{name: "pointer up", arg: "up", want: step{raw: "up", kind: stepUp}},
		{name: "toggle month", arg: "toggle-month", want: step{raw: "toggle-month", kind: stepToggleMonth}},
		{name: "bad mode", arg: "mode=night", wantErr: true},
		{name: "bad date", arg: "click=20/04/2024", wantErr: true},
		{name: "drag without range", arg: "drag=2024-04-20", wantErr: true},
		{name: "unknown", arg: "jump=1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseStep(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunSteps(t *testing.T) {
	s := newTestSession(t)
	steps, err := parseSteps([]string{
		"mode=special", "click=2024-04-20",
		"mode=morning", "drag=2024-04-21..2024-04-22",
		"click=2024-04-03",
	})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runSteps(&out, s, steps))

	assert.Contains(t, out.String(), "click=2024-04-20: selected 1, skipped 0")
	assert.Contains(t, out.String(), "drag=2024-04-21..2024-04-22: selected 2, skipped 0")
	assert.Contains(t, out.String(), "click=2024-04-03: ignored")
	assert.Len(t, s.Entries(), 3)
	assert.Equal(t, int64(30000*2+(56000-4000)), s.Summary().Totals.SubtotalCents)
}

func TestRunSteps_RawPointerEventsAndMonths(t *testing.T) {
	s := newTestSession(t)
	steps, err := parseSteps([]string{"down=2024-04-20", "enter=2024-04-23", "month=next", "up", "month=2024-04", "down=2024-04-10"})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runSteps(&out, s, steps))

	assert.Contains(t, out.String(), "up: ignored", "month navigation cancels the drag")
	assert.Contains(t, out.String(), "down=2024-04-10: date not available")
	assert.Empty(t, s.Entries())
	assert.Equal(t, calendar.YearMonth{Year: 2024, Month: time.April}, s.Month())
}

func TestCellLabel(t *testing.T) {
	tests := []struct {
		name  string
		day   calendar.Day
		flags selection.Flags
		want  string
	}{
		{name: "blank", day: calendar.Day{Blank: true}, want: ""},
		{name: "plain", day: calendar.Day{Date: april(9)}, want: " 9"},
		{name: "occupied", day: calendar.Day{Date: april(10), IsOccupied: true}, want: "10x"},
		{name: "past holiday", day: calendar.Day{Date: april(4), IsPast: true, IsHoliday: true}, want: " 4-h"},
		{name: "special", day: calendar.Day{Date: april(20)}, flags: selection.Flags{Special: true}, want: "20S"},
		{name: "both shifts", day: calendar.Day{Date: april(22)}, flags: selection.Flags{Morning: true, Evening: true}, want: "22B"},
		{name: "weekend morning", day: calendar.Day{Date: april(21), IsWeekendSpecial: true}, flags: selection.Flags{Morning: true}, want: "21m*"},
		{name: "evening", day: calendar.Day{Date: april(23)}, flags: selection.Flags{Evening: true}, want: "23e"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cellLabel(tt.day, tt.flags))
		})
	}
}

func TestRenderMonth(t *testing.T) {
	s := newTestSession(t)

	var out bytes.Buffer
	renderMonth(&out, s, time.Sunday)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 7, "title, header and five weeks")
	assert.Contains(t, lines[0], "Toyota Comfort Hybrid (car-001)")
	assert.Contains(t, lines[0], "2024-04")
	assert.True(t, strings.HasPrefix(lines[1], "Sun"))
	assert.True(t, strings.HasPrefix(lines[2], "      "), "April 2024 starts on a Monday")
	assert.Contains(t, lines[3], "10x")
}

func TestPrintSummary(t *testing.T) {
	s := newTestSession(t)

	var out bytes.Buffer
	printSummary(&out, s.Summary())
	assert.Equal(t, "No shifts selected\n", out.String())

	require.NoError(t, s.SetMode(selection.ModeSpecial))
	s.PointerDown(april(20))
	s.PointerUp()
	require.NoError(t, s.SetMode(selection.ModeMorning))
	s.PointerDown(april(21))
	s.PointerUp()

	out.Reset()
	printSummary(&out, s.Summary())
	assert.Contains(t, out.String(), "2024-04-20  special full-day")
	assert.Contains(t, out.String(), "520.00")
	assert.Contains(t, out.String(), "820.00")
	assert.Contains(t, out.String(), "8.20")
	assert.Contains(t, out.String(), "828.20")
	assert.Contains(t, out.String(), "2000.00")
}
