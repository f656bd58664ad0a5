package selection

import "github.com/golang-sql/civil"

// DragGesture tracks a pointer drag across the grid, from pointer-down
// to pointer-up.
type DragGesture struct {
	Anchor  civil.Date
	Current civil.Date
	Active  bool
}

// Begin anchors a new gesture at d.
func (g *DragGesture) Begin(d civil.Date) {
	g.Anchor, g.Current, g.Active = d, d, true
}

// Enter moves the gesture end to d. It is ignored when no gesture is active.
func (g *DragGesture) Enter(d civil.Date) bool {
	if !g.Active {
		return false
	}
	g.Current = d
	return true
}

// Release ends the gesture and returns its endpoints.
func (g *DragGesture) Release() (anchor, current civil.Date, ok bool) {
	anchor, current, ok = g.Anchor, g.Current, g.Active
	g.Cancel()
	return anchor, current, ok
}

// Cancel discards the gesture without applying it.
func (g *DragGesture) Cancel() {
	*g = DragGesture{}
}

// Apply runs a released gesture against the store: a click toggles,
// a drag sweeps the range. A click that clears the flag reports Deselect.
func (s *Store) Apply(anchor, current civil.Date, mode ShiftMode) RangeResult {
	if anchor == current {
		res := RangeResult{Deselect: s.State(anchor).Has(mode)}
		if s.Toggle(anchor, mode) == OutcomeApplied {
			res.Applied = 1
		} else {
			res.Skipped = 1
		}
		return res
	}
	return s.ApplyRange(anchor, current, mode)
}
