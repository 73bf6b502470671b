package timeentry

import (
	"context"
	"time"
)

type TimeEntryRepository interface {
	Append(ctx context.Context, entry TimeEntry) (TimeEntry, error)
	GetByID(ctx context.Context, id string) (TimeEntry, error)
	// ListByEmployee returns entries in [from, to) ordered by timestamp ascending.
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]TimeEntry, error)
	// ListRecent returns the latest entries, newest first.
	ListRecent(ctx context.Context, employeeID string, limit int) ([]TimeEntry, error)
	// LatestSession returns the entries from the employee's most recent
	// clock in onward, ascending. It is empty when the employee never clocked in.
	LatestSession(ctx context.Context, employeeID string) ([]TimeEntry, error)
	// ClockInsAround returns the employee's latest clock in at or before at and
	// the first one after at, skipping the entry excludeID. Either is nil when
	// there is none.
	ClockInsAround(ctx context.Context, employeeID string, at time.Time, excludeID string) (prev, next *TimeEntry, err error)
	Delete(ctx context.Context, id string) error
	// WithEmployeeLock runs fn while holding the employee's write lock, so
	// appends for one employee are serialized.
	WithEmployeeLock(ctx context.Context, employeeID string, fn func(ctx context.Context) error) error
}
