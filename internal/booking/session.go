// Package booking drives one car's booking page: pointer gestures, shift
// mode, month navigation and the live price summary.
package booking

import (
	"github.com/golang-sql/civil"

	"github.com/taxirent/bookingservice/internal/calendar"
	"github.com/taxirent/bookingservice/internal/domain"
	"github.com/taxirent/bookingservice/internal/pricing"
	"github.com/taxirent/bookingservice/internal/selection"
)

// SelectionObserver is told about every applied interaction.
type SelectionObserver func(mode selection.ShiftMode, res selection.RangeResult)

// Session is the state of one booking page. It is not safe for concurrent
// use; every method runs to completion before the next event is handled.
type Session struct {
	id       string
	car      domain.Car
	cal      *calendar.Calendar
	store    *selection.Store
	calc     *pricing.Calculator
	mode     selection.ShiftMode
	month    calendar.YearMonth
	gesture  selection.DragGesture
	observer SelectionObserver
}

// NewSession opens a session on today's month in morning mode.
func NewSession(id string, car domain.Car, cal *calendar.Calendar, calc *pricing.Calculator) *Session {
	return &Session{
		id:    id,
		car:   car,
		cal:   cal,
		store: selection.NewStore(cal),
		calc:  calc,
		mode:  selection.ModeMorning,
		month: calendar.MonthOf(cal.Today()),
	}
}

// Observe registers fn for selection outcomes. A nil fn disables it.
func (s *Session) Observe(fn SelectionObserver) {
	s.observer = fn
}

func (s *Session) ID() string                   { return s.id }
func (s *Session) Car() domain.Car              { return s.car }
func (s *Session) Calendar() *calendar.Calendar { return s.cal }
func (s *Session) Mode() selection.ShiftMode    { return s.mode }
func (s *Session) Month() calendar.YearMonth    { return s.month }

// Dragging reports whether a pointer gesture is in progress.
func (s *Session) Dragging() bool { return s.gesture.Active }

// PointerDown starts a gesture on d. Unselectable dates are ignored.
func (s *Session) PointerDown(d civil.Date) bool {
	if !s.cal.IsSelectable(d) {
		return false
	}
	s.gesture.Begin(d)
	return true
}

// PointerEnter extends the active gesture to d.
func (s *Session) PointerEnter(d civil.Date) bool {
	return s.gesture.Enter(d)
}

// PointerUp applies and ends the active gesture. ok is false when there
// was none.
func (s *Session) PointerUp() (res selection.RangeResult, ok bool) {
	anchor, current, ok := s.gesture.Release()
	if !ok {
		return selection.RangeResult{}, false
	}
	res = s.store.Apply(anchor, current, s.mode)
	s.notify(res)
	return res, true
}

// SetMode switches the shift that later gestures write to. Existing
// selections are untouched.
func (s *Session) SetMode(mode selection.ShiftMode) error {
	if !mode.Valid() {
		return domain.NewInvalidInputError("invalid shift mode", mode.String())
	}
	s.mode = mode
	return nil
}

func (s *Session) NextMonth() { s.ShowMonth(s.month.AddMonths(1)) }

func (s *Session) PrevMonth() { s.ShowMonth(s.month.AddMonths(-1)) }

// ShowMonth displays ym. A gesture in progress is dropped.
func (s *Session) ShowMonth(ym calendar.YearMonth) {
	s.gesture.Cancel()
	s.month = ym
}

// Grid returns the cells of the displayed month.
func (s *Session) Grid() []calendar.Day {
	return s.cal.Month(s.month)
}

// ToggleMonth selects the active shift on every selectable date of the
// displayed month, or clears it when all of them already have it.
func (s *Session) ToggleMonth() selection.RangeResult {
	res := s.store.ToggleAll(s.cal.SelectableDates(s.month), s.mode)
	s.notify(res)
	return res
}

// MonthFullySelected drives the select-all control of the displayed month.
func (s *Session) MonthFullySelected() bool {
	return s.store.FullySelected(s.cal.SelectableDates(s.month), s.mode)
}

func (s *Session) Selection(d civil.Date) selection.Flags {
	return s.store.Flags(d)
}

// Entries returns the selected dates in the order they were first picked.
func (s *Session) Entries() []selection.Entry {
	return s.store.Entries()
}

// Summary is the booking panel: line items, totals and the deposit due at
// pickup.
type Summary struct {
	CarID        string         `json:"car_id"`
	Totals       pricing.Totals `json:"totals"`
	DepositCents int64          `json:"deposit_cents"`
	CanSubmit    bool           `json:"can_submit"`
}

func (s *Session) Summary() Summary {
	totals := s.calc.Totals(s.store.Entries(), s.car)
	return Summary{
		CarID:        s.car.ID,
		Totals:       totals,
		DepositCents: s.car.DepositCents,
		CanSubmit:    !totals.Empty(),
	}
}

func (s *Session) notify(res selection.RangeResult) {
	if s.observer != nil {
		s.observer(s.mode, res)
	}
}
