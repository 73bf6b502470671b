package engine

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used across the engine.
const DateLayout = "2006-01-02"

// EventKind is the type of a single clock punch.
type EventKind string

const (
	ClockIn   EventKind = "clock_in"
	ClockOut  EventKind = "clock_out"
	LunchOut  EventKind = "lunch_out"
	LunchIn   EventKind = "lunch_in"
	UnpaidOut EventKind = "unpaid_out"
	UnpaidIn  EventKind = "unpaid_in"
)

// EventKinds lists every kind in the order they usually occur in a day.
var EventKinds = []EventKind{ClockIn, LunchOut, LunchIn, UnpaidOut, UnpaidIn, ClockOut}

// ParseEventKind accepts both snake_case and kebab-case spellings.
func ParseEventKind(s string) (EventKind, error) {
	k := EventKind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !k.Valid() {
		return "", fmt.Errorf("unknown event kind %q", s)
	}
	return k, nil
}

func (k EventKind) Valid() bool {
	switch k {
	case ClockIn, ClockOut, LunchOut, LunchIn, UnpaidOut, UnpaidIn:
		return true
	}
	return false
}

// TimeEvent is one immutable clock punch.
type TimeEvent struct {
	EmployeeID string
	Kind       EventKind
	Timestamp  time.Time
}

// ValidateSequence checks that events for one employee and one logical session
// window are well formed. Every failure is reported as ErrInconsistentSequence;
// the underlying transition error, if any, is kept as the cause.
// An unmatched opening event at the end is valid and means "still open".
func ValidateSequence(events []TimeEvent) error {
	var st foldState
	for i, ev := range events {
		if _, err := st.apply(i, ev); err != nil {
			se, ok := err.(*SequenceError)
			if !ok || se.Err == ErrInconsistentSequence {
				return err
			}
			return &SequenceError{
				Index:  se.Index,
				Event:  se.Event,
				Reason: se.Reason,
				Err:    ErrInconsistentSequence,
				Cause:  se.Err,
			}
		}
	}
	return nil
}

// closedInterval is emitted by the fold when a pair closes.
type closedInterval struct {
	kind  EventKind // opening kind of the pair
	start time.Time
	end   time.Time
}

// foldState tracks the three open timestamps of a work session.
type foldState struct {
	employeeID string
	last       time.Time
	seen       bool

	clockIn   *time.Time
	lunchOut  *time.Time
	unpaidOut *time.Time
}

func (s *foldState) open() bool {
	return s.clockIn != nil
}

// apply advances the state by one event. It never mutates ev.
func (s *foldState) apply(i int, ev TimeEvent) (*closedInterval, error) {
	if !ev.Kind.Valid() {
		return nil, sequenceErr(i, ev, ErrInconsistentSequence, "unknown event kind")
	}
	if s.seen {
		if ev.EmployeeID != s.employeeID {
			return nil, sequenceErr(i, ev, ErrInconsistentSequence, "events belong to more than one employee")
		}
		if ev.Timestamp.Before(s.last) {
			return nil, sequenceErr(i, ev, ErrInconsistentSequence, "events are not in timestamp order")
		}
	}

	ts := ev.Timestamp
	var closed *closedInterval

	switch ev.Kind {
	case ClockIn:
		if s.open() {
			return nil, sequenceErr(i, ev, ErrAlreadyClockedIn, "a session is already open")
		}
		s.clockIn = &ts

	case ClockOut:
		if !s.open() {
			return nil, sequenceErr(i, ev, ErrNoActiveSession, "clock out without clock in")
		}
		if s.lunchOut != nil || s.unpaidOut != nil {
			return nil, sequenceErr(i, ev, ErrInconsistentSequence, "break still open at clock out")
		}
		closed = &closedInterval{kind: ClockIn, start: *s.clockIn, end: ts}
		s.clockIn = nil

	case LunchOut, UnpaidOut:
		if !s.open() {
			return nil, sequenceErr(i, ev, ErrNoActiveSession, "break started outside a session")
		}
		if s.lunchOut != nil || s.unpaidOut != nil {
			return nil, sequenceErr(i, ev, ErrInconsistentSequence, "a break is already open")
		}
		if ev.Kind == LunchOut {
			s.lunchOut = &ts
		} else {
			s.unpaidOut = &ts
		}

	case LunchIn:
		if s.lunchOut == nil {
			if !s.open() {
				return nil, sequenceErr(i, ev, ErrNoActiveSession, "lunch in outside a session")
			}
			return nil, sequenceErr(i, ev, ErrInconsistentSequence, "lunch in without lunch out")
		}
		closed = &closedInterval{kind: LunchOut, start: *s.lunchOut, end: ts}
		s.lunchOut = nil

	case UnpaidIn:
		if s.unpaidOut == nil {
			if !s.open() {
				return nil, sequenceErr(i, ev, ErrNoActiveSession, "unpaid in outside a session")
			}
			return nil, sequenceErr(i, ev, ErrInconsistentSequence, "unpaid in without unpaid out")
		}
		closed = &closedInterval{kind: UnpaidOut, start: *s.unpaidOut, end: ts}
		s.unpaidOut = nil
	}

	s.employeeID = ev.EmployeeID
	s.last = ts
	s.seen = true
	return closed, nil
}
