package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/golang-sql/civil"

	"github.com/taxirent/bookingservice/internal/booking"
	"github.com/taxirent/bookingservice/internal/calendar"
	"github.com/taxirent/bookingservice/internal/domain"
	"github.com/taxirent/bookingservice/internal/selection"
)

type stepKind int

const (
	stepMode stepKind = iota
	stepClick
	stepDrag
	stepDown
	stepEnter
	stepUp
	stepMonth
	stepToggleMonth
)

// step is one replayed interaction of the booking page.
type step struct {
	raw   string
	kind  stepKind
	mode  selection.ShiftMode
	from  civil.Date
	to    civil.Date
	delta int // month=next|prev
	month calendar.YearMonth
}

func parseSteps(args []string) ([]step, error) {
	steps := make([]step, 0, len(args))
	for _, arg := range args {
		st, err := parseStep(arg)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", arg, err)
		}
		steps = append(steps, st)
	}
	return steps, nil
}

func parseStep(arg string) (step, error) {
	name, value, _ := strings.Cut(strings.TrimSpace(arg), "=")
	st := step{raw: arg}

	var err error
	switch strings.ToLower(name) {
	case "mode":
		st.kind = stepMode
		st.mode, err = selection.ParseShiftMode(value)
	case "click":
		st.kind = stepClick
		st.from, err = domain.ParseDate(value)
	case "down":
		st.kind = stepDown
		st.from, err = domain.ParseDate(value)
	case "enter":
		st.kind = stepEnter
		st.from, err = domain.ParseDate(value)
	case "up":
		st.kind = stepUp
	case "drag":
		st.kind = stepDrag
		from, to, ok := strings.Cut(value, "..")
		if !ok {
			return st, fmt.Errorf("expected FROM..TO")
		}
		if st.from, err = domain.ParseDate(from); err != nil {
			return st, err
		}
		st.to, err = domain.ParseDate(to)
	case "month":
		st.kind = stepMonth
		switch value {
		case "next":
			st.delta = 1
		case "prev":
			st.delta = -1
		default:
			st.month, err = calendar.ParseYearMonth(value)
		}
	case "toggle-month":
		st.kind = stepToggleMonth
	default:
		return st, fmt.Errorf("unknown step")
	}
	return st, err
}

// runSteps applies steps in order and reports each applied interaction.
func runSteps(w io.Writer, s *booking.Session, steps []step) error {
	for _, st := range steps {
		switch st.kind {
		case stepMode:
			if err := s.SetMode(st.mode); err != nil {
				return err
			}
		case stepClick:
			s.PointerDown(st.from)
			reportRange(w, st, s.PointerUp)
		case stepDrag:
			s.PointerDown(st.from)
			s.PointerEnter(st.to)
			reportRange(w, st, s.PointerUp)
		case stepDown:
			if !s.PointerDown(st.from) {
				fmt.Fprintf(w, "%s: date not available\n", st.raw)
			}
		case stepEnter:
			s.PointerEnter(st.from)
		case stepUp:
			reportRange(w, st, s.PointerUp)
		case stepMonth:
			switch {
			case st.delta > 0:
				s.NextMonth()
			case st.delta < 0:
				s.PrevMonth()
			default:
				s.ShowMonth(st.month)
			}
		case stepToggleMonth:
			printRange(w, st, s.ToggleMonth())
		}
	}
	return nil
}

func reportRange(w io.Writer, st step, release func() (selection.RangeResult, bool)) {
	res, ok := release()
	if !ok {
		fmt.Fprintf(w, "%s: ignored\n", st.raw)
		return
	}
	printRange(w, st, res)
}

func printRange(w io.Writer, st step, res selection.RangeResult) {
	verb := "selected"
	if res.Deselect {
		verb = "cleared"
	}
	fmt.Fprintf(w, "%s: %s %d, skipped %d\n", st.raw, verb, res.Applied, res.Skipped)
}
