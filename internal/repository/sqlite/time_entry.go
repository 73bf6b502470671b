package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/google/uuid"
)

type timeEntryRepositoryImpl struct {
	db    *sql.DB
	locks employeeLocks
}

// NewTimeEntryRepository stores punches in s. Timestamps are kept as UTC unix
// nanoseconds so ordering in SQL matches ordering in time.
func NewTimeEntryRepository(s *Store) timeentry.TimeEntryRepository {
	return &timeEntryRepositoryImpl{db: s.db}
}

const timeEntryColumns = `id, employee_id, kind, ts, notes, created_by, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTimeEntry(row scanner) (timeentry.TimeEntry, error) {
	var (
		e         timeentry.TimeEntry
		kind      string
		ts        int64
		createdAt int64
		notes     sql.NullString
	)
	if err := row.Scan(&e.ID, &e.EmployeeID, &kind, &ts, &notes, &e.CreatedBy, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return timeentry.TimeEntry{}, timeentry.ErrTimeEntryNotFound
		}
		return timeentry.TimeEntry{}, err
	}
	e.Kind = engine.EventKind(kind)
	e.Timestamp = time.Unix(0, ts).UTC()
	e.CreatedAt = time.Unix(0, createdAt).UTC()
	if notes.Valid {
		e.Notes = &notes.String
	}
	return e, nil
}

func (r *timeEntryRepositoryImpl) query(ctx context.Context, query string, args ...any) ([]timeentry.TimeEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query time entries: %w", err)
	}
	defer rows.Close()

	var entries []timeentry.TimeEntry
	for rows.Next() {
		e, err := scanTimeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *timeEntryRepositoryImpl) Append(ctx context.Context, entry timeentry.TimeEntry) (timeentry.TimeEntry, error) {
	if entry.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return timeentry.TimeEntry{}, fmt.Errorf("failed to generate time entry id: %w", err)
		}
		entry.ID = id.String()
	}
	entry.Timestamp = entry.Timestamp.UTC()
	entry.CreatedAt = time.Now().UTC()

	var notes sql.NullString
	if entry.Notes != nil {
		notes = sql.NullString{String: *entry.Notes, Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO time_entries (`+timeEntryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.EmployeeID, string(entry.Kind), entry.Timestamp.UnixNano(), notes, entry.CreatedBy, entry.CreatedAt.UnixNano(),
	)
	if err != nil {
		return timeentry.TimeEntry{}, fmt.Errorf("failed to insert time entry: %w", err)
	}
	return entry, nil
}

func (r *timeEntryRepositoryImpl) GetByID(ctx context.Context, id string) (timeentry.TimeEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+timeEntryColumns+` FROM time_entries WHERE id = ?`, id)
	return scanTimeEntry(row)
}

func (r *timeEntryRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]timeentry.TimeEntry, error) {
	return r.query(ctx, `
		SELECT `+timeEntryColumns+`
		FROM time_entries
		WHERE employee_id = ? AND ts >= ? AND ts < ?
		ORDER BY ts ASC, created_at ASC, id ASC
	`, employeeID, unixNano(from), unixNano(to))
}

func (r *timeEntryRepositoryImpl) ListRecent(ctx context.Context, employeeID string, limit int) ([]timeentry.TimeEntry, error) {
	return r.query(ctx, `
		SELECT `+timeEntryColumns+`
		FROM time_entries
		WHERE employee_id = ?
		ORDER BY ts DESC, created_at DESC, id DESC
		LIMIT ?
	`, employeeID, limit)
}

func (r *timeEntryRepositoryImpl) LatestSession(ctx context.Context, employeeID string) ([]timeentry.TimeEntry, error) {
	return r.query(ctx, `
		SELECT `+timeEntryColumns+`
		FROM time_entries
		WHERE employee_id = ?
		  AND ts >= (SELECT MAX(ts) FROM time_entries WHERE employee_id = ? AND kind = ?)
		ORDER BY ts ASC, created_at ASC, id ASC
	`, employeeID, employeeID, string(engine.ClockIn))
}

func (r *timeEntryRepositoryImpl) ClockInsAround(ctx context.Context, employeeID string, at time.Time, excludeID string) (prev, next *timeentry.TimeEntry, err error) {
	before, err := r.query(ctx, `
		SELECT `+timeEntryColumns+`
		FROM time_entries
		WHERE employee_id = ? AND kind = ? AND id <> ? AND ts <= ?
		ORDER BY ts DESC, created_at DESC, id DESC
		LIMIT 1
	`, employeeID, string(engine.ClockIn), excludeID, at.UnixNano())
	if err != nil {
		return nil, nil, err
	}
	after, err := r.query(ctx, `
		SELECT `+timeEntryColumns+`
		FROM time_entries
		WHERE employee_id = ? AND kind = ? AND id <> ? AND ts > ?
		ORDER BY ts ASC, created_at ASC, id ASC
		LIMIT 1
	`, employeeID, string(engine.ClockIn), excludeID, at.UnixNano())
	if err != nil {
		return nil, nil, err
	}
	if len(before) > 0 {
		prev = &before[0]
	}
	if len(after) > 0 {
		next = &after[0]
	}
	return prev, next, nil
}

func (r *timeEntryRepositoryImpl) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete time entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return timeentry.ErrTimeEntryNotFound
	}
	return nil
}

// WithEmployeeLock serializes appends within this process. Local mode runs a
// single server against the file, so no cross-process lock is needed.
func (r *timeEntryRepositoryImpl) WithEmployeeLock(ctx context.Context, employeeID string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := r.locks.get(employeeID)
	m.Lock()
	defer m.Unlock()
	return fn(ctx)
}

// unixNano maps the zero time to the smallest value so open-ended ranges work.
func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return math.MinInt64
	}
	return t.UnixNano()
}
