package attendance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/recurrence"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
)

const defaultWorkers = 4

type AttendanceServiceImpl struct {
	dailyRepo       attendance.DailyRecordRepository
	summaryRepo     attendance.SummaryRepository
	goalRepo        attendance.GoalRepository
	employeeRepo    employee.EmployeeRepository
	entryRepo       timeentry.TimeEntryRepository
	settingsService settings.SettingsService
	workers         int
	now             func() time.Time
}

func NewAttendanceService(
	dailyRepo attendance.DailyRecordRepository,
	summaryRepo attendance.SummaryRepository,
	goalRepo attendance.GoalRepository,
	employeeRepo employee.EmployeeRepository,
	entryRepo timeentry.TimeEntryRepository,
	settingsService settings.SettingsService,
	workers int,
) attendance.AttendanceService {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &AttendanceServiceImpl{
		dailyRepo:       dailyRepo,
		summaryRepo:     summaryRepo,
		goalRepo:        goalRepo,
		employeeRepo:    employeeRepo,
		entryRepo:       entryRepo,
		settingsService: settingsService,
		workers:         workers,
		now:             time.Now,
	}
}

// localDay is midnight of date's calendar day in loc.
func localDay(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func ownEmployeeID(ctx context.Context) (string, error) {
	caller, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract caller: %w", err)
	}
	if caller.EmployeeID == nil || *caller.EmployeeID == "" {
		return "", employee.ErrNoEmployeeProfile
	}
	return *caller.EmployeeID, nil
}

func validMonth(year int, month time.Month) error {
	if !validator.IsValidMonth(year, int(month)) {
		return validator.ValidationErrors{{Field: "month", Message: "month must be in YYYY-MM format"}}
	}
	return nil
}

// ========================================
// CLOSE OUT
// ========================================

// CloseOutDay implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CloseOutDay(ctx context.Context, date time.Time) (attendance.CloseOutResult, error) {
	policy, err := s.settingsService.Policy(ctx)
	if err != nil {
		return attendance.CloseOutResult{}, err
	}
	loc := policy.Loc()
	day := localDay(date, loc)
	result := attendance.CloseOutResult{Date: day.Format(engine.DateLayout)}

	ids, err := s.employeeRepo.ListActiveIDs(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list active employees: %w", err)
	}

	scheduled, err := recurrence.IsScheduled(policy.Shifts, day, loc)
	if err != nil {
		return result, err
	}
	if !scheduled {
		result.Skipped = len(ids)
		return result, nil
	}

	closedAt := s.now().UTC()
	closed, err := engine.MapEmployees(ctx, ids, s.workers, func(ctx context.Context, employeeID string) (bool, error) {
		return s.closeOutEmployee(ctx, policy, employeeID, day, closedAt)
	})
	if err != nil {
		return result, err
	}
	for _, ok := range closed {
		if ok {
			result.Processed++
		} else {
			result.Skipped++
		}
	}
	return result, nil
}

// closeOutEmployee reports false when the day already had a record.
func (s *AttendanceServiceImpl) closeOutEmployee(ctx context.Context, policy engine.Policy, employeeID string, day, closedAt time.Time) (bool, error) {
	_, err := s.dailyRepo.Get(ctx, employeeID, day)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, attendance.ErrDailyRecordNotFound) {
		return false, fmt.Errorf("failed to get attendance day: %w", err)
	}

	entries, err := s.entryRepo.ListByEmployee(ctx, employeeID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return false, fmt.Errorf("failed to list time entries: %w", err)
	}

	input := engine.ScheduledDay(day, policy.Shifts)
	for _, e := range entries {
		if e.Kind == engine.ClockIn {
			in := e.Timestamp
			input.CheckIn = &in
			break
		}
	}
	c := engine.Classify(input, policy.ClassifierRules())

	record := attendance.DailyRecord{
		EmployeeID:  employeeID,
		Date:        day,
		Status:      c.Status,
		MinutesLate: c.MinutesLate,
		CheckIn:     input.CheckIn,
		ClosedAt:    closedAt,
	}
	if input.Scheduled {
		start := input.ScheduledStart
		record.ScheduledStart = &start
	}
	if err := s.dailyRepo.Insert(ctx, record); err != nil {
		if errors.Is(err, attendance.ErrDayAlreadyClosed) {
			return false, nil
		}
		return false, fmt.Errorf("failed to close attendance day: %w", err)
	}
	return true, nil
}

// Excuse implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Excuse(ctx context.Context, req attendance.ExcuseRequest) (attendance.DailyRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DailyRecordResponse{}, err
	}
	caller, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return attendance.DailyRecordResponse{}, fmt.Errorf("failed to extract caller: %w", err)
	}
	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return attendance.DailyRecordResponse{}, err
	}

	policy, err := s.settingsService.Policy(ctx)
	if err != nil {
		return attendance.DailyRecordResponse{}, err
	}
	loc := policy.Loc()
	parsed, _ := validator.IsValidDate(req.Date)
	day := localDay(parsed, loc)

	scheduled, err := recurrence.IsScheduled(policy.Shifts, day, loc)
	if err != nil {
		return attendance.DailyRecordResponse{}, err
	}
	if !scheduled {
		return attendance.DailyRecordResponse{}, attendance.ErrDayNotScheduled
	}

	existing, err := s.dailyRepo.Get(ctx, req.EmployeeID, day)
	switch {
	case err == nil:
		if !engine.CanTransition(existing.Status, engine.StatusExcused) {
			return attendance.DailyRecordResponse{}, attendance.ErrDayAlreadyClosed
		}
	case !errors.Is(err, attendance.ErrDailyRecordNotFound):
		return attendance.DailyRecordResponse{}, fmt.Errorf("failed to get attendance day: %w", err)
	}

	input := engine.ScheduledDay(day, policy.Shifts)
	input.Excused = true
	c := engine.Classify(input, policy.ClassifierRules())
	start := input.ScheduledStart
	userID := caller.UserID
	record := attendance.DailyRecord{
		EmployeeID:     req.EmployeeID,
		Date:           day,
		Status:         c.Status,
		ScheduledStart: &start,
		ExcuseReason:   req.Reason,
		ExcusedBy:      &userID,
		ClosedAt:       s.now().UTC(),
	}
	if err := s.dailyRepo.Insert(ctx, record); err != nil {
		return attendance.DailyRecordResponse{}, err
	}

	// keep a stored summary for that month in step
	summary, err := s.summarize(ctx, policy, req.EmployeeID, day.Year(), day.Month())
	if err != nil {
		return attendance.DailyRecordResponse{}, err
	}
	if err := s.summaryRepo.Upsert(ctx, summary); err != nil {
		return attendance.DailyRecordResponse{}, fmt.Errorf("failed to save attendance summary: %w", err)
	}
	return attendance.NewDailyRecordResponse(record), nil
}

// ========================================
// MONTHLY SUMMARY
// ========================================

// summarize tallies an employee's closed days and paid hours for a month and
// matches the result against the configured goals.
func (s *AttendanceServiceImpl) summarize(ctx context.Context, policy engine.Policy, employeeID string, year int, month time.Month) (attendance.MonthlySummary, error) {
	loc := policy.Loc()
	r := engine.MonthRange(year, month, loc)

	scheduled, err := recurrence.ScheduledDays(policy.Shifts, r.Start, r.End, loc)
	if err != nil {
		return attendance.MonthlySummary{}, err
	}

	records, err := s.dailyRepo.ListByEmployee(ctx, employeeID, r.Start, r.End)
	if err != nil {
		return attendance.MonthlySummary{}, fmt.Errorf("failed to list attendance days: %w", err)
	}
	days := make([]engine.Classification, 0, len(records))
	for _, rec := range records {
		days = append(days, rec.Classification())
	}
	tally := engine.Tally(days)

	// sessions that start in the month and finish after it still count here
	entries, err := s.entryRepo.ListByEmployee(ctx, employeeID, r.Start, r.Until().AddDate(0, 0, 1))
	if err != nil {
		return attendance.MonthlySummary{}, fmt.Errorf("failed to list time entries: %w", err)
	}
	hours, err := engine.Reduce(engine.ClipSessions(timeentry.ToEvents(entries), r.Start, r.Until()))
	if err != nil {
		return attendance.MonthlySummary{}, err
	}

	summary := attendance.MonthlySummary{
		EmployeeID:    employeeID,
		Year:          year,
		Month:         month,
		ScheduledDays: len(scheduled),
		Tally:         tally,
		HoursWorked:   hours.PaidHours,
		CalculatedAt:  s.now().UTC(),
	}
	for _, g := range engine.MatchingGoals(policy.Goals, tally) {
		summary.MatchedGoalIDs = append(summary.MatchedGoalIDs, g.ID)
	}
	if g, ok := engine.MatchGoal(policy.Goals, tally); ok {
		summary.GoalID = &g.ID
		summary.GoalName = &g.Name
		summary.GoalKind = &g.Kind
	}
	return summary, nil
}

// RecalculateMonth implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RecalculateMonth(ctx context.Context, year int, month time.Month) (int, error) {
	if err := validMonth(year, month); err != nil {
		return 0, err
	}
	policy, err := s.settingsService.Policy(ctx)
	if err != nil {
		return 0, err
	}
	ids, err := s.employeeRepo.ListActiveIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active employees: %w", err)
	}

	done, err := engine.MapEmployees(ctx, ids, s.workers, func(ctx context.Context, employeeID string) (struct{}, error) {
		summary, err := s.summarize(ctx, policy, employeeID, year, month)
		if err != nil {
			return struct{}{}, err
		}
		if err := s.summaryRepo.Upsert(ctx, summary); err != nil {
			return struct{}{}, fmt.Errorf("failed to save attendance summary: %w", err)
		}
		return struct{}{}, nil
	})
	if err != nil {
		return 0, err
	}
	return len(done), nil
}

func goalByID(goals []engine.AttendanceGoal, id *string) *engine.AttendanceGoal {
	if id == nil {
		return nil
	}
	for _, g := range goals {
		if g.ID == *id {
			return &g
		}
	}
	return nil
}

// MySummary implements attendance.AttendanceService. It is computed on read so
// the caller sees days closed since the last recalculation.
func (s *AttendanceServiceImpl) MySummary(ctx context.Context, year int, month time.Month) (attendance.MonthlySummaryResponse, error) {
	if err := validMonth(year, month); err != nil {
		return attendance.MonthlySummaryResponse{}, err
	}
	employeeID, err := ownEmployeeID(ctx)
	if err != nil {
		return attendance.MonthlySummaryResponse{}, err
	}
	policy, err := s.settingsService.Policy(ctx)
	if err != nil {
		return attendance.MonthlySummaryResponse{}, err
	}
	summary, err := s.summarize(ctx, policy, employeeID, year, month)
	if err != nil {
		return attendance.MonthlySummaryResponse{}, err
	}
	return attendance.NewMonthlySummaryResponse(summary, goalByID(policy.Goals, summary.GoalID)), nil
}

// MyDays implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MyDays(ctx context.Context, year int, month time.Month) ([]attendance.DailyRecordResponse, error) {
	if err := validMonth(year, month); err != nil {
		return nil, err
	}
	employeeID, err := ownEmployeeID(ctx)
	if err != nil {
		return nil, err
	}
	policy, err := s.settingsService.Policy(ctx)
	if err != nil {
		return nil, err
	}
	r := engine.MonthRange(year, month, policy.Loc())
	records, err := s.dailyRepo.ListByEmployee(ctx, employeeID, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance days: %w", err)
	}
	out := make([]attendance.DailyRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, attendance.NewDailyRecordResponse(rec))
	}
	return out, nil
}

// ListSummaries implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListSummaries(ctx context.Context, year int, month time.Month) ([]attendance.MonthlySummaryResponse, error) {
	if err := validMonth(year, month); err != nil {
		return nil, err
	}
	summaries, err := s.summaryRepo.ListByMonth(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance summaries: %w", err)
	}
	goals, err := s.goalRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance goals: %w", err)
	}
	out := make([]attendance.MonthlySummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		out = append(out, attendance.NewMonthlySummaryResponse(summary, goalByID(goals, summary.GoalID)))
	}
	return out, nil
}

// ========================================
// GOALS
// ========================================

// ListGoals implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListGoals(ctx context.Context) ([]attendance.GoalResponse, error) {
	goals, err := s.goalRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance goals: %w", err)
	}
	sort.SliceStable(goals, func(i, j int) bool {
		return goals[i].DisplayOrder < goals[j].DisplayOrder
	})
	out := make([]attendance.GoalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, attendance.NewGoalResponse(g))
	}
	return out, nil
}

// CreateGoal implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CreateGoal(ctx context.Context, req attendance.GoalRequest) (attendance.GoalResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.GoalResponse{}, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return attendance.GoalResponse{}, fmt.Errorf("failed to generate goal id: %w", err)
	}
	goal := req.ToGoal(id.String())
	if err := goal.Validate(); err != nil {
		return attendance.GoalResponse{}, err
	}
	created, err := s.goalRepo.Create(ctx, goal)
	if err != nil {
		return attendance.GoalResponse{}, err
	}
	return attendance.NewGoalResponse(created), nil
}

// UpdateGoal implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) UpdateGoal(ctx context.Context, id string, req attendance.GoalRequest) (attendance.GoalResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.GoalResponse{}, err
	}
	if _, err := s.goalRepo.GetByID(ctx, id); err != nil {
		return attendance.GoalResponse{}, err
	}
	goal := req.ToGoal(id)
	if err := goal.Validate(); err != nil {
		return attendance.GoalResponse{}, err
	}
	if err := s.goalRepo.Update(ctx, goal); err != nil {
		return attendance.GoalResponse{}, err
	}
	return attendance.NewGoalResponse(goal), nil
}

// DeleteGoal implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DeleteGoal(ctx context.Context, id string) error {
	return s.goalRepo.Delete(ctx, id)
}
