package timeentry

import "errors"

var (
	ErrTimeEntryNotFound = errors.New("time entry not found")
	ErrInvalidEventKind  = errors.New("invalid time entry kind")
	ErrFutureTimestamp   = errors.New("timestamp cannot be in the future")
)
