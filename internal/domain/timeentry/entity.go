package timeentry

import (
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
)

// TimeEntry is one stored punch.
type TimeEntry struct {
	ID         string
	EmployeeID string
	Kind       engine.EventKind
	Timestamp  time.Time
	Notes      *string
	CreatedBy  string
	CreatedAt  time.Time
}

func (e TimeEntry) ToEvent() engine.TimeEvent {
	return engine.TimeEvent{
		EmployeeID: e.EmployeeID,
		Kind:       e.Kind,
		Timestamp:  e.Timestamp,
	}
}

// ToEvents converts entries that are already in timestamp order.
func ToEvents(entries []TimeEntry) []engine.TimeEvent {
	events := make([]engine.TimeEvent, 0, len(entries))
	for _, e := range entries {
		events = append(events, e.ToEvent())
	}
	return events
}
