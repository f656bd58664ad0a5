package selection

import (
	"github.com/golang-sql/civil"
)

// Availability decides which dates accept selections. *calendar.Calendar
// implements it.
type Availability interface {
	IsSelectable(d civil.Date) bool
}

// Outcome reports what SetShift did. Rejections are not errors: the
// date simply keeps its state.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	// OutcomeUnavailable: the date is occupied or in the past.
	OutcomeUnavailable
	// OutcomeConflict: special and morning/evening would combine.
	OutcomeConflict
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeUnavailable:
		return "unavailable"
	case OutcomeConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Entry is one selected date.
type Entry struct {
	Date  civil.Date `json:"date"`
	State ShiftState `json:"state"`
}

// Store holds the shift selections of one booking session. Dates with no
// shift selected are never stored. Entries keep first-insertion order.
//
// A Store is not safe for concurrent use.
type Store struct {
	availability Availability
	states       map[civil.Date]ShiftState
	order        []civil.Date
}

func NewStore(availability Availability) *Store {
	return &Store{
		availability: availability,
		states:       make(map[civil.Date]ShiftState),
		order:        make([]civil.Date, 0),
	}
}

// SetShift is the only mutation path of the store. With forced nil the
// targeted flag is flipped, otherwise it is set to *forced.
func (s *Store) SetShift(d civil.Date, mode ShiftMode, forced *bool) Outcome {
	if !s.availability.IsSelectable(d) {
		return OutcomeUnavailable
	}

	current := s.states[d]
	value := !current.Has(mode)
	if forced != nil {
		value = *forced
	}

	next, ok := current.Set(mode, value)
	if !ok {
		return OutcomeConflict
	}
	s.put(d, next)
	return OutcomeApplied
}

// Toggle flips mode's flag on d.
func (s *Store) Toggle(d civil.Date, mode ShiftMode) Outcome {
	return s.SetShift(d, mode, nil)
}

// Force sets mode's flag on d to value.
func (s *Store) Force(d civil.Date, mode ShiftMode, value bool) Outcome {
	return s.SetShift(d, mode, &value)
}

func (s *Store) put(d civil.Date, next ShiftState) {
	_, exists := s.states[d]
	switch {
	case next == StateEmpty && exists:
		delete(s.states, d)
		for i, od := range s.order {
			if od == d {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	case next == StateEmpty:
	default:
		if !exists {
			s.order = append(s.order, d)
		}
		s.states[d] = next
	}
}

// State returns the state of d, StateEmpty when nothing is selected.
func (s *Store) State(d civil.Date) ShiftState {
	return s.states[d]
}

func (s *Store) Flags(d civil.Date) Flags {
	return s.states[d].Flags()
}

func (s *Store) Len() int {
	return len(s.states)
}

// Entries returns the selected dates in insertion order.
func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, len(s.order))
	for _, d := range s.order {
		out = append(out, Entry{Date: d, State: s.states[d]})
	}
	return out
}

// Reset clears every selection.
func (s *Store) Reset() {
	s.states = make(map[civil.Date]ShiftState)
	s.order = s.order[:0]
}

// Restore replaces the selections with entries, dropping empty, unknown
// or no longer selectable dates. It returns the number of entries kept.
func (s *Store) Restore(entries []Entry) int {
	s.Reset()
	for _, e := range entries {
		if e.State == StateEmpty || int(e.State) >= len(stateNames) {
			continue
		}
		if !s.availability.IsSelectable(e.Date) {
			continue
		}
		s.put(e.Date, e.State)
	}
	return len(s.states)
}
