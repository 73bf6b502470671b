package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
)

type timeEntryRepositoryImpl struct {
	mu      sync.RWMutex
	entries map[string][]timeentry.TimeEntry // by employee, ascending timestamp
	locks   keyedMutex
}

func NewTimeEntryRepository() timeentry.TimeEntryRepository {
	return &timeEntryRepositoryImpl{entries: make(map[string][]timeentry.TimeEntry)}
}

func (r *timeEntryRepositoryImpl) Append(ctx context.Context, entry timeentry.TimeEntry) (timeentry.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == "" {
		entry.ID = newID()
	}
	entry.CreatedAt = time.Now().UTC()

	list := append(r.entries[entry.EmployeeID], entry)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp.Before(list[j].Timestamp)
	})
	r.entries[entry.EmployeeID] = list
	return entry, nil
}

func (r *timeEntryRepositoryImpl) GetByID(ctx context.Context, id string) (timeentry.TimeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, list := range r.entries {
		for _, e := range list {
			if e.ID == id {
				return e, nil
			}
		}
	}
	return timeentry.TimeEntry{}, timeentry.ErrTimeEntryNotFound
}

func (r *timeEntryRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]timeentry.TimeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []timeentry.TimeEntry
	for _, e := range r.entries[employeeID] {
		if !e.Timestamp.Before(from) && e.Timestamp.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *timeEntryRepositoryImpl) ListRecent(ctx context.Context, employeeID string, limit int) ([]timeentry.TimeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.entries[employeeID]
	out := make([]timeentry.TimeEntry, 0, min(limit, len(list)))
	for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, list[i])
	}
	return out, nil
}

func (r *timeEntryRepositoryImpl) LatestSession(ctx context.Context, employeeID string) ([]timeentry.TimeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.entries[employeeID]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Kind == engine.ClockIn {
			out := make([]timeentry.TimeEntry, len(list)-i)
			copy(out, list[i:])
			return out, nil
		}
	}
	return nil, nil
}

func (r *timeEntryRepositoryImpl) ClockInsAround(ctx context.Context, employeeID string, at time.Time, excludeID string) (prev, next *timeentry.TimeEntry, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries[employeeID] {
		e := e
		if e.Kind != engine.ClockIn || e.ID == excludeID {
			continue
		}
		if !e.Timestamp.After(at) {
			prev = &e
		} else {
			next = &e
			break
		}
	}
	return prev, next, nil
}

func (r *timeEntryRepositoryImpl) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for emp, list := range r.entries {
		for i, e := range list {
			if e.ID == id {
				r.entries[emp] = append(list[:i:i], list[i+1:]...)
				return nil
			}
		}
	}
	return timeentry.ErrTimeEntryNotFound
}

func (r *timeEntryRepositoryImpl) WithEmployeeLock(ctx context.Context, employeeID string, fn func(ctx context.Context) error) error {
	return r.locks.withLock(ctx, employeeID, fn)
}
