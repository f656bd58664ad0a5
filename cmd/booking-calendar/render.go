package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/taxirent/bookingservice/internal/booking"
	"github.com/taxirent/bookingservice/internal/calendar"
	"github.com/taxirent/bookingservice/internal/domain"
	"github.com/taxirent/bookingservice/internal/selection"
)

const cellWidth = 6

// renderMonth prints the displayed month as a week grid.
//
//	m/e/S   morning, evening, special full-day selected (B for both shifts)
//	x       occupied
//	-       past
//	*       weekend special
//	h       public holiday
func renderMonth(w io.Writer, s *booking.Session, weekStart time.Weekday) {
	car := s.Car()
	fmt.Fprintf(w, "%s %s (%s)  %s  mode: %s\n", car.Brand, car.Model, car.ID, s.Month(), s.Mode())

	var header strings.Builder
	for i := 0; i < 7; i++ {
		day := time.Weekday((int(weekStart) + i) % 7)
		fmt.Fprintf(&header, "%-*s", cellWidth, day.String()[:3])
	}
	fmt.Fprintln(w, strings.TrimRight(header.String(), " "))

	var row strings.Builder
	for i, day := range s.Grid() {
		fmt.Fprintf(&row, "%-*s", cellWidth, cellLabel(day, s.Selection(day.Date)))
		if i%7 == 6 {
			fmt.Fprintln(w, strings.TrimRight(row.String(), " "))
			row.Reset()
		}
	}
	if row.Len() > 0 {
		fmt.Fprintln(w, strings.TrimRight(row.String(), " "))
	}
}

func cellLabel(day calendar.Day, flags selection.Flags) string {
	if day.Blank {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%2d", day.Date.Day)
	switch {
	case day.IsOccupied:
		b.WriteString("x")
	case day.IsPast:
		b.WriteString("-")
	case flags.Special:
		b.WriteString("S")
	case flags.Morning && flags.Evening:
		b.WriteString("B")
	case flags.Morning:
		b.WriteString("m")
	case flags.Evening:
		b.WriteString("e")
	}
	if day.IsWeekendSpecial {
		b.WriteString("*")
	}
	if day.IsHoliday {
		b.WriteString("h")
	}
	return b.String()
}

func printSummary(w io.Writer, sum booking.Summary) {
	if !sum.CanSubmit {
		fmt.Fprintln(w, "No shifts selected")
		return
	}

	for _, item := range sum.Totals.Items {
		fmt.Fprintf(w, "%s  %-16s %10s\n", item.Date, item.Label, domain.FormatCents(item.PriceCents))
	}
	fmt.Fprintf(w, "%-28s %10s\n", "Subtotal", domain.FormatCents(sum.Totals.SubtotalCents))
	fmt.Fprintf(w, "%-28s %10s\n", "Platform fee", domain.FormatCents(sum.Totals.PlatformFeeCents))
	fmt.Fprintf(w, "%-28s %10s\n", "Total", domain.FormatCents(sum.Totals.GrandTotalCents))
	fmt.Fprintf(w, "%-28s %10s\n", "Deposit (paid at pickup)", domain.FormatCents(sum.DepositCents))
}
