package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ========================================
// DAILY RECORDS
// ========================================

type dailyRecordRepositoryImpl struct {
	db *database.DB
}

func NewDailyRecordRepository(db *database.DB) attendance.DailyRecordRepository {
	return &dailyRecordRepositoryImpl{db: db}
}

const dailyRecordColumns = `employee_id, day, status, minutes_late, scheduled_start, check_in,
	excuse_reason, excused_by, closed_at`

func scanDailyRecord(row pgx.Row, loc *time.Location) (attendance.DailyRecord, error) {
	var d attendance.DailyRecord
	err := row.Scan(
		&d.EmployeeID, &d.Date, &d.Status, &d.MinutesLate, &d.ScheduledStart, &d.CheckIn,
		&d.ExcuseReason, &d.ExcusedBy, &d.ClosedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.DailyRecord{}, attendance.ErrDailyRecordNotFound
		}
		return attendance.DailyRecord{}, err
	}
	// DATE columns come back as UTC midnight; callers work in the policy zone
	y, m, day := d.Date.Date()
	d.Date = time.Date(y, m, day, 0, 0, 0, 0, loc)
	return d, nil
}

// civilDate drops the zone so the DATE column stores date's own calendar day.
func civilDate(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Get implements attendance.DailyRecordRepository.
func (r *dailyRecordRepositoryImpl) Get(ctx context.Context, employeeID string, date time.Time) (attendance.DailyRecord, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + dailyRecordColumns + ` FROM attendance_days WHERE employee_id = $1 AND day = $2`
	return scanDailyRecord(q.QueryRow(ctx, query, employeeID, civilDate(date)), date.Location())
}

// Insert implements attendance.DailyRecordRepository.
func (r *dailyRecordRepositoryImpl) Insert(ctx context.Context, record attendance.DailyRecord) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_days (
			employee_id, day, status, minutes_late, scheduled_start, check_in,
			excuse_reason, excused_by, closed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (employee_id, day) DO NOTHING
	`
	tag, err := q.Exec(ctx, query,
		record.EmployeeID, civilDate(record.Date), record.Status, record.MinutesLate,
		record.ScheduledStart, record.CheckIn, record.ExcuseReason, record.ExcusedBy, record.ClosedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrDayAlreadyClosed
	}
	return nil
}

// ListByEmployee implements attendance.DailyRecordRepository.
func (r *dailyRecordRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.DailyRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + dailyRecordColumns + `
		FROM attendance_days
		WHERE employee_id = $1 AND day BETWEEN $2 AND $3
		ORDER BY day ASC
	`
	rows, err := q.Query(ctx, query, employeeID, civilDate(from), civilDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance days: %w", err)
	}
	defer rows.Close()

	var records []attendance.DailyRecord
	for rows.Next() {
		rec, err := scanDailyRecord(rows, from.Location())
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance day: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ========================================
// MONTHLY SUMMARIES
// ========================================

type summaryRepositoryImpl struct {
	db *database.DB
}

func NewSummaryRepository(db *database.DB) attendance.SummaryRepository {
	return &summaryRepositoryImpl{db: db}
}

const summaryColumns = `employee_id, year, month, scheduled_days, days_present, days_late, days_missed,
	days_excused, total_minutes_late, hours_worked, goal_id, goal_name, goal_kind, matched_goal_ids, calculated_at`

func scanSummary(row pgx.Row) (attendance.MonthlySummary, error) {
	var (
		s     attendance.MonthlySummary
		month int
	)
	err := row.Scan(
		&s.EmployeeID, &s.Year, &month, &s.ScheduledDays,
		&s.Tally.DaysPresent, &s.Tally.DaysLate, &s.Tally.DaysMissed, &s.Tally.DaysExcused, &s.Tally.TotalMinutesLate,
		&s.HoursWorked, &s.GoalID, &s.GoalName, &s.GoalKind, &s.MatchedGoalIDs, &s.CalculatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.MonthlySummary{}, attendance.ErrSummaryNotFound
		}
		return attendance.MonthlySummary{}, err
	}
	s.Month = time.Month(month)
	return s, nil
}

// Upsert implements attendance.SummaryRepository.
func (r *summaryRepositoryImpl) Upsert(ctx context.Context, s attendance.MonthlySummary) error {
	q := GetQuerier(ctx, r.db)

	matched := s.MatchedGoalIDs
	if matched == nil {
		matched = []string{}
	}
	query := `
		INSERT INTO attendance_summaries (` + summaryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (employee_id, year, month) DO UPDATE SET
			scheduled_days = EXCLUDED.scheduled_days,
			days_present = EXCLUDED.days_present,
			days_late = EXCLUDED.days_late,
			days_missed = EXCLUDED.days_missed,
			days_excused = EXCLUDED.days_excused,
			total_minutes_late = EXCLUDED.total_minutes_late,
			hours_worked = EXCLUDED.hours_worked,
			goal_id = EXCLUDED.goal_id,
			goal_name = EXCLUDED.goal_name,
			goal_kind = EXCLUDED.goal_kind,
			matched_goal_ids = EXCLUDED.matched_goal_ids,
			calculated_at = EXCLUDED.calculated_at
	`
	_, err := q.Exec(ctx, query,
		s.EmployeeID, s.Year, int(s.Month), s.ScheduledDays,
		s.Tally.DaysPresent, s.Tally.DaysLate, s.Tally.DaysMissed, s.Tally.DaysExcused, s.Tally.TotalMinutesLate,
		s.HoursWorked, s.GoalID, s.GoalName, s.GoalKind, matched, s.CalculatedAt,
	)
	return err
}

// Get implements attendance.SummaryRepository.
func (r *summaryRepositoryImpl) Get(ctx context.Context, employeeID string, year int, month time.Month) (attendance.MonthlySummary, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + summaryColumns + ` FROM attendance_summaries WHERE employee_id = $1 AND year = $2 AND month = $3`
	return scanSummary(q.QueryRow(ctx, query, employeeID, year, int(month)))
}

// ListByMonth implements attendance.SummaryRepository.
func (r *summaryRepositoryImpl) ListByMonth(ctx context.Context, year int, month time.Month) ([]attendance.MonthlySummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + summaryColumns + `
		FROM attendance_summaries s
		JOIN employees e ON e.id = s.employee_id
		WHERE s.year = $1 AND s.month = $2
		ORDER BY e.full_name ASC
	`
	rows, err := q.Query(ctx, query, year, int(month))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance summaries: %w", err)
	}
	defer rows.Close()

	var out []attendance.MonthlySummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ========================================
// GOALS
// ========================================

type goalRepositoryImpl struct {
	db *database.DB
}

func NewGoalRepository(db *database.DB) attendance.GoalRepository {
	return &goalRepositoryImpl{db: db}
}

const goalColumns = `id, name, kind, max_days_missed, max_days_late, display_order, description, icon, color, active`

func scanGoal(row pgx.Row) (engine.AttendanceGoal, error) {
	var g engine.AttendanceGoal
	err := row.Scan(&g.ID, &g.Name, &g.Kind, &g.MaxDaysMissed, &g.MaxDaysLate, &g.DisplayOrder,
		&g.Description, &g.Icon, &g.Color, &g.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return engine.AttendanceGoal{}, attendance.ErrGoalNotFound
		}
		return engine.AttendanceGoal{}, err
	}
	return g, nil
}

// List implements attendance.GoalRepository.
func (r *goalRepositoryImpl) List(ctx context.Context) ([]engine.AttendanceGoal, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+goalColumns+` FROM attendance_goals ORDER BY display_order ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance goals: %w", err)
	}
	defer rows.Close()

	var goals []engine.AttendanceGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// GetByID implements attendance.GoalRepository.
func (r *goalRepositoryImpl) GetByID(ctx context.Context, id string) (engine.AttendanceGoal, error) {
	if _, err := uuid.Parse(id); err != nil {
		return engine.AttendanceGoal{}, attendance.ErrGoalNotFound
	}
	q := GetQuerier(ctx, r.db)
	return scanGoal(q.QueryRow(ctx, `SELECT `+goalColumns+` FROM attendance_goals WHERE id = $1`, id))
}

// Create implements attendance.GoalRepository.
func (r *goalRepositoryImpl) Create(ctx context.Context, goal engine.AttendanceGoal) (engine.AttendanceGoal, error) {
	q := GetQuerier(ctx, r.db)

	if goal.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return engine.AttendanceGoal{}, fmt.Errorf("failed to generate goal id: %w", err)
		}
		goal.ID = id.String()
	}

	query := `
		INSERT INTO attendance_goals (` + goalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + goalColumns

	created, err := scanGoal(q.QueryRow(ctx, query,
		goal.ID, goal.Name, goal.Kind, goal.MaxDaysMissed, goal.MaxDaysLate, goal.DisplayOrder,
		goal.Description, goal.Icon, goal.Color, goal.Active,
	))
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return engine.AttendanceGoal{}, attendance.ErrGoalNameExists
		}
		return engine.AttendanceGoal{}, err
	}
	return created, nil
}

// Update implements attendance.GoalRepository.
func (r *goalRepositoryImpl) Update(ctx context.Context, goal engine.AttendanceGoal) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_goals
		SET name = $2, kind = $3, max_days_missed = $4, max_days_late = $5, display_order = $6,
			description = $7, icon = $8, color = $9, active = $10
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		goal.ID, goal.Name, goal.Kind, goal.MaxDaysMissed, goal.MaxDaysLate, goal.DisplayOrder,
		goal.Description, goal.Icon, goal.Color, goal.Active,
	)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return attendance.ErrGoalNameExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrGoalNotFound
	}
	return nil
}

// Delete implements attendance.GoalRepository.
func (r *goalRepositoryImpl) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return attendance.ErrGoalNotFound
	}
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_goals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrGoalNotFound
	}
	return nil
}
