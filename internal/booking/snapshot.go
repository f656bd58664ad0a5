package booking

import (
	"github.com/taxirent/bookingservice/internal/calendar"
	"github.com/taxirent/bookingservice/internal/domain"
	"github.com/taxirent/bookingservice/internal/selection"
)

// Snapshot is the persisted form of a session.
type Snapshot struct {
	SessionID string          `json:"session_id"`
	CarID     string          `json:"car_id"`
	Mode      string          `json:"mode"`
	Month     string          `json:"month"`
	Entries   []SnapshotEntry `json:"entries"`
}

type SnapshotEntry struct {
	Date string `json:"date"`
	selection.Flags
}

func (s *Session) Snapshot() Snapshot {
	entries := s.store.Entries()
	out := Snapshot{
		SessionID: s.id,
		CarID:     s.car.ID,
		Mode:      s.mode.String(),
		Month:     s.month.String(),
		Entries:   make([]SnapshotEntry, 0, len(entries)),
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, SnapshotEntry{Date: e.Date.String(), Flags: e.State.Flags()})
	}
	return out
}

// Restore loads snap into the session. Entries that are malformed or no
// longer selectable are dropped; the number kept is returned.
func (s *Session) Restore(snap Snapshot) (int, error) {
	if snap.CarID != s.car.ID {
		return 0, domain.NewInvalidStateError("snapshot belongs to another car", snap.CarID)
	}

	mode, err := selection.ParseShiftMode(snap.Mode)
	if err != nil {
		return 0, domain.NewInvalidInputError("invalid shift mode", snap.Mode)
	}
	month, err := calendar.ParseYearMonth(snap.Month)
	if err != nil {
		return 0, domain.NewInvalidInputError("invalid month", snap.Month)
	}

	entries := make([]selection.Entry, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		d, err := domain.ParseDate(e.Date)
		if err != nil {
			continue
		}
		state, ok := selection.StateOf(e.Flags)
		if !ok {
			continue
		}
		entries = append(entries, selection.Entry{Date: d, State: state})
	}

	s.gesture.Cancel()
	s.mode = mode
	s.month = month
	return s.store.Restore(entries), nil
}
