package selection

import "fmt"

// ShiftMode is the shift a UI interaction writes to.
type ShiftMode int

const (
	ModeMorning ShiftMode = iota
	ModeEvening
	ModeSpecial
)

var modeNames = [...]string{"morning", "evening", "special"}

func (m ShiftMode) String() string {
	if m < ModeMorning || m > ModeSpecial {
		return fmt.Sprintf("ShiftMode(%d)", int(m))
	}
	return modeNames[m]
}

// Valid reports whether m is one of the three shift modes.
func (m ShiftMode) Valid() bool {
	return m >= ModeMorning && m <= ModeSpecial
}

// ParseShiftMode accepts "morning", "evening" or "special".
func ParseShiftMode(s string) (ShiftMode, error) {
	for i, name := range modeNames {
		if s == name {
			return ShiftMode(i), nil
		}
	}
	return ModeMorning, fmt.Errorf("unknown shift mode %q", s)
}

// ShiftState is the selection state of a single date. Special (full day)
// and the granular morning/evening shifts never combine.
type ShiftState uint8

const (
	StateEmpty ShiftState = iota
	StateMorning
	StateEvening
	StateBoth
	StateSpecial

	// stateRejected marks a transition that would break exclusivity.
	stateRejected ShiftState = 0xff
)

var stateNames = [...]string{"empty", "morning", "evening", "both", "special"}

func (s ShiftState) String() string {
	if int(s) >= len(stateNames) {
		return fmt.Sprintf("ShiftState(%d)", int(s))
	}
	return stateNames[s]
}

// Transition tables indexed by [state][mode].
var (
	turnOn = [...][3]ShiftState{
		StateEmpty:   {StateMorning, StateEvening, StateSpecial},
		StateMorning: {StateMorning, StateBoth, stateRejected},
		StateEvening: {StateBoth, StateEvening, stateRejected},
		StateBoth:    {StateBoth, StateBoth, stateRejected},
		StateSpecial: {stateRejected, stateRejected, StateSpecial},
	}
	turnOff = [...][3]ShiftState{
		StateEmpty:   {StateEmpty, StateEmpty, StateEmpty},
		StateMorning: {StateEmpty, StateMorning, stateRejected},
		StateEvening: {StateEvening, StateEmpty, stateRejected},
		StateBoth:    {StateEvening, StateMorning, stateRejected},
		StateSpecial: {stateRejected, stateRejected, StateEmpty},
	}
)

// Has reports whether the flag targeted by mode is set.
func (s ShiftState) Has(mode ShiftMode) bool {
	switch mode {
	case ModeMorning:
		return s == StateMorning || s == StateBoth
	case ModeEvening:
		return s == StateEvening || s == StateBoth
	case ModeSpecial:
		return s == StateSpecial
	}
	return false
}

// Set returns the state with mode's flag forced to value. ok is false when
// the change is forbidden by the special/granular exclusivity.
func (s ShiftState) Set(mode ShiftMode, value bool) (next ShiftState, ok bool) {
	if int(s) >= len(turnOn) || !mode.Valid() {
		return s, false
	}
	if value {
		next = turnOn[s][mode]
	} else {
		next = turnOff[s][mode]
	}
	if next == stateRejected {
		return s, false
	}
	return next, true
}

// Flags is the per-date view rendered by the host.
type Flags struct {
	Morning bool `json:"morning"`
	Evening bool `json:"evening"`
	Special bool `json:"special"`
}

func (s ShiftState) Flags() Flags {
	return Flags{
		Morning: s.Has(ModeMorning),
		Evening: s.Has(ModeEvening),
		Special: s.Has(ModeSpecial),
	}
}

// StateOf maps flags back to a state. Flags combining special with a
// granular shift have no state.
func StateOf(f Flags) (ShiftState, bool) {
	switch {
	case f.Special && (f.Morning || f.Evening):
		return StateEmpty, false
	case f.Special:
		return StateSpecial, true
	case f.Morning && f.Evening:
		return StateBoth, true
	case f.Morning:
		return StateMorning, true
	case f.Evening:
		return StateEvening, true
	}
	return StateEmpty, true
}
