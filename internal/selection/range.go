package selection

import "github.com/golang-sql/civil"

// RangeResult summarises a sweep.
type RangeResult struct {
	Deselect bool
	Applied  int
	Skipped  int
}

// ApplyRange applies mode to every date between start and end inclusive.
// The gesture direction carries the intent: end before start clears the
// flag, anything else sets it. Dates that cannot change are skipped.
func (s *Store) ApplyRange(start, end civil.Date, mode ShiftMode) RangeResult {
	res := RangeResult{Deselect: end.Before(start)}
	from, to := start, end
	if res.Deselect {
		from, to = end, start
	}

	for d := from; !d.After(to); d = d.AddDays(1) {
		if s.Force(d, mode, !res.Deselect) == OutcomeApplied {
			res.Applied++
		} else {
			res.Skipped++
		}
	}
	return res
}

// FullySelected reports whether dates is non-empty and every date has
// mode's flag set.
func (s *Store) FullySelected(dates []civil.Date, mode ShiftMode) bool {
	if len(dates) == 0 {
		return false
	}
	for _, d := range dates {
		if !s.states[d].Has(mode) {
			return false
		}
	}
	return true
}

// ToggleAll selects mode on every date, or clears it on every date when
// they are all already selected.
func (s *Store) ToggleAll(dates []civil.Date, mode ShiftMode) RangeResult {
	res := RangeResult{Deselect: s.FullySelected(dates, mode)}
	for _, d := range dates {
		if s.Force(d, mode, !res.Deselect) == OutcomeApplied {
			res.Applied++
		} else {
			res.Skipped++
		}
	}
	return res
}
