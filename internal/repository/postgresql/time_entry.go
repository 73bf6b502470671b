package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type timeEntryRepositoryImpl struct {
	db *database.DB
}

func NewTimeEntryRepository(db *database.DB) timeentry.TimeEntryRepository {
	return &timeEntryRepositoryImpl{db: db}
}

const timeEntryColumns = `id, employee_id, kind, ts, notes, created_by, created_at`

func scanTimeEntry(row pgx.Row) (timeentry.TimeEntry, error) {
	var e timeentry.TimeEntry
	err := row.Scan(&e.ID, &e.EmployeeID, &e.Kind, &e.Timestamp, &e.Notes, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timeentry.TimeEntry{}, timeentry.ErrTimeEntryNotFound
		}
		return timeentry.TimeEntry{}, err
	}
	e.Timestamp = e.Timestamp.UTC()
	return e, nil
}

func collectTimeEntries(rows pgx.Rows) ([]timeentry.TimeEntry, error) {
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

// Append implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) Append(ctx context.Context, entry timeentry.TimeEntry) (timeentry.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	if entry.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return timeentry.TimeEntry{}, fmt.Errorf("failed to generate time entry id: %w", err)
		}
		entry.ID = id.String()
	}

	query := `
		INSERT INTO time_entries (id, employee_id, kind, ts, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + timeEntryColumns

	return scanTimeEntry(q.QueryRow(ctx, query,
		entry.ID,
		entry.EmployeeID,
		entry.Kind,
		entry.Timestamp,
		entry.Notes,
		entry.CreatedBy,
	))
}

// GetByID implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) GetByID(ctx context.Context, id string) (timeentry.TimeEntry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return timeentry.TimeEntry{}, timeentry.ErrTimeEntryNotFound
	}
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE id = $1`
	return scanTimeEntry(q.QueryRow(ctx, query, id))
}

// ListByEmployee implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]timeentry.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timeEntryColumns + `
		FROM time_entries
		WHERE employee_id = $1 AND ts >= $2 AND ts < $3
		ORDER BY ts ASC, created_at ASC, id ASC
	`
	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	return collectTimeEntries(rows)
}

// ListRecent implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) ListRecent(ctx context.Context, employeeID string, limit int) ([]timeentry.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timeEntryColumns + `
		FROM time_entries
		WHERE employee_id = $1
		ORDER BY ts DESC, created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := q.Query(ctx, query, employeeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent time entries: %w", err)
	}
	return collectTimeEntries(rows)
}

// LatestSession implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) LatestSession(ctx context.Context, employeeID string) ([]timeentry.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH last_in AS (
			SELECT ts, created_at
			FROM time_entries
			WHERE employee_id = $1 AND kind = 'clock_in'
			ORDER BY ts DESC, created_at DESC
			LIMIT 1
		)
		SELECT ` + timeEntryColumns + `
		FROM time_entries t, last_in
		WHERE t.employee_id = $1 AND (t.ts, t.created_at) >= (last_in.ts, last_in.created_at)
		ORDER BY t.ts ASC, t.created_at ASC, t.id ASC
	`
	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest session: %w", err)
	}
	return collectTimeEntries(rows)
}

// ClockInsAround implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) ClockInsAround(ctx context.Context, employeeID string, at time.Time, excludeID string) (prev, next *timeentry.TimeEntry, err error) {
	q := GetQuerier(ctx, r.db)

	lookup := func(query string) (*timeentry.TimeEntry, error) {
		rows, err := q.Query(ctx, query, employeeID, excludeID, at)
		if err != nil {
			return nil, fmt.Errorf("failed to look up clock in: %w", err)
		}
		entries, err := collectTimeEntries(rows)
		if err != nil || len(entries) == 0 {
			return nil, err
		}
		return &entries[0], nil
	}

	prev, err = lookup(`
		SELECT ` + timeEntryColumns + `
		FROM time_entries
		WHERE employee_id = $1 AND kind = 'clock_in' AND id::text <> $2 AND ts <= $3
		ORDER BY ts DESC, created_at DESC, id DESC
		LIMIT 1
	`)
	if err != nil {
		return nil, nil, err
	}
	next, err = lookup(`
		SELECT ` + timeEntryColumns + `
		FROM time_entries
		WHERE employee_id = $1 AND kind = 'clock_in' AND id::text <> $2 AND ts > $3
		ORDER BY ts ASC, created_at ASC, id ASC
		LIMIT 1
	`)
	if err != nil {
		return nil, nil, err
	}
	return prev, next, nil
}

// Delete implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return timeentry.ErrTimeEntryNotFound
	}
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM time_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return timeentry.ErrTimeEntryNotFound
	}
	return nil
}

// WithEmployeeLock implements timeentry.TimeEntryRepository. The lock is a
// transaction-scoped advisory lock, so it is shared by every API instance
// and released on commit or rollback.
func (r *timeEntryRepositoryImpl) WithEmployeeLock(ctx context.Context, employeeID string, fn func(ctx context.Context) error) error {
	lock := func(ctx context.Context, q database.Querier) error {
		if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, employeeID); err != nil {
			return fmt.Errorf("failed to lock employee %s: %w", employeeID, err)
		}
		return fn(ctx)
	}

	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return lock(ctx, tx)
	}
	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		return lock(ContextWithTx(ctx, tx), tx)
	})
}
