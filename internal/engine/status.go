package engine

import "time"

// ClockState is the live position of an employee in their work session.
type ClockState string

const (
	StateClockedOut    ClockState = "clocked_out"
	StateClockedIn     ClockState = "clocked_in"
	StateOnLunch       ClockState = "on_lunch"
	StateOnUnpaidBreak ClockState = "on_unpaid_break"
)

// ClockStatus is the state plus the punches that are valid next.
type ClockStatus struct {
	State       ClockState  `json:"state"`
	Since       *time.Time  `json:"since,omitempty"`
	NextActions []EventKind `json:"next_actions"`
}

// CurrentStatus derives the clock state from an employee's events.
func CurrentStatus(events []TimeEvent) (ClockStatus, error) {
	var st foldState
	for i, ev := range events {
		if _, err := st.apply(i, ev); err != nil {
			return ClockStatus{}, err
		}
	}
	return st.status(), nil
}

// CanAppend reports whether next, with its own employee and timestamp, may
// follow events. Transition errors are returned as is, not folded into
// ErrInconsistentSequence.
func CanAppend(events []TimeEvent, next TimeEvent) error {
	var st foldState
	for i, ev := range append(events[:len(events):len(events)], next) {
		if _, err := st.apply(i, ev); err != nil {
			return err
		}
	}
	return nil
}

func (s *foldState) status() ClockStatus {
	switch {
	case s.lunchOut != nil:
		return ClockStatus{State: StateOnLunch, Since: s.lunchOut, NextActions: []EventKind{LunchIn}}
	case s.unpaidOut != nil:
		return ClockStatus{State: StateOnUnpaidBreak, Since: s.unpaidOut, NextActions: []EventKind{UnpaidIn}}
	case s.clockIn != nil:
		return ClockStatus{State: StateClockedIn, Since: s.clockIn, NextActions: []EventKind{LunchOut, UnpaidOut, ClockOut}}
	}
	return ClockStatus{State: StateClockedOut, NextActions: []EventKind{ClockIn}}
}
