package engine

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInconsistentSequence is returned when raw events break open/close pairing.
	ErrInconsistentSequence = errors.New("inconsistent event sequence")

	// ErrAlreadyClockedIn is returned for a clock in while a session is open.
	ErrAlreadyClockedIn = errors.New("already clocked in")

	// ErrNoActiveSession is returned for a clock out (or break) with no open session.
	ErrNoActiveSession = errors.New("no active clock in found")

	// ErrPeriodBeforeAnchor is returned when a date precedes the pay period anchor.
	ErrPeriodBeforeAnchor = errors.New("date precedes pay period anchor")

	// ErrInvalidConfiguration is returned for a non-positive period length or a missing policy field.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// SequenceError reports where an event stream went wrong. Cause is set when a
// transition error is reported as an inconsistent sequence by ValidateSequence.
type SequenceError struct {
	Index  int
	Event  TimeEvent
	Reason string
	Err    error
	Cause  error
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("%v: event %d (%s at %s): %s",
		e.Err, e.Index, e.Event.Kind, e.Event.Timestamp.Format(time.RFC3339), e.Reason)
}

func (e *SequenceError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// ConfigError names the offending configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}

// PeriodError carries the date and anchor of a rejected lookup.
type PeriodError struct {
	Date   time.Time
	Anchor time.Time
}

func (e *PeriodError) Error() string {
	return fmt.Sprintf("date %s precedes pay period anchor %s",
		e.Date.Format(DateLayout), e.Anchor.Format(DateLayout))
}

func (e *PeriodError) Unwrap() error {
	return ErrPeriodBeforeAnchor
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error comes from caller input rather than a fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInconsistentSequence) ||
		errors.Is(err, ErrAlreadyClockedIn) ||
		errors.Is(err, ErrNoActiveSession) ||
		errors.Is(err, ErrPeriodBeforeAnchor) ||
		errors.Is(err, ErrInvalidConfiguration)
}

func sequenceErr(i int, ev TimeEvent, base error, reason string) error {
	return &SequenceError{Index: i, Event: ev, Reason: reason, Err: base}
}
