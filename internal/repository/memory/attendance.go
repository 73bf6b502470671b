package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
)

// ========================================
// DAILY RECORDS
// ========================================

type dailyRecordRepositoryImpl struct {
	mu      sync.RWMutex
	records map[string]attendance.DailyRecord
}

func NewDailyRecordRepository() attendance.DailyRecordRepository {
	return &dailyRecordRepositoryImpl{records: make(map[string]attendance.DailyRecord)}
}

func dayKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format(engine.DateLayout)
}

func (r *dailyRecordRepositoryImpl) Get(ctx context.Context, employeeID string, date time.Time) (attendance.DailyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[dayKey(employeeID, date)]
	if !ok {
		return attendance.DailyRecord{}, attendance.ErrDailyRecordNotFound
	}
	return rec, nil
}

func (r *dailyRecordRepositoryImpl) Insert(ctx context.Context, record attendance.DailyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := dayKey(record.EmployeeID, record.Date)
	if _, exists := r.records[key]; exists {
		return attendance.ErrDayAlreadyClosed
	}
	r.records[key] = record
	return nil
}

func (r *dailyRecordRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.DailyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lo := from.Format(engine.DateLayout)
	hi := to.Format(engine.DateLayout)
	var out []attendance.DailyRecord
	for _, rec := range r.records {
		d := rec.Date.Format(engine.DateLayout)
		if rec.EmployeeID == employeeID && d >= lo && d <= hi {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// ========================================
// MONTHLY SUMMARIES
// ========================================

type summaryRepositoryImpl struct {
	mu        sync.RWMutex
	summaries map[string]attendance.MonthlySummary
}

func NewSummaryRepository() attendance.SummaryRepository {
	return &summaryRepositoryImpl{summaries: make(map[string]attendance.MonthlySummary)}
}

func summaryKey(employeeID string, year int, month time.Month) string {
	return employeeID + "|" + time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

func (r *summaryRepositoryImpl) Upsert(ctx context.Context, s attendance.MonthlySummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries[summaryKey(s.EmployeeID, s.Year, s.Month)] = s
	return nil
}

func (r *summaryRepositoryImpl) Get(ctx context.Context, employeeID string, year int, month time.Month) (attendance.MonthlySummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.summaries[summaryKey(employeeID, year, month)]
	if !ok {
		return attendance.MonthlySummary{}, attendance.ErrSummaryNotFound
	}
	return s, nil
}

func (r *summaryRepositoryImpl) ListByMonth(ctx context.Context, year int, month time.Month) ([]attendance.MonthlySummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []attendance.MonthlySummary
	for _, s := range r.summaries {
		if s.Year == year && s.Month == month {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

// ========================================
// GOALS
// ========================================

type goalRepositoryImpl struct {
	mu    sync.RWMutex
	goals []engine.AttendanceGoal // insertion order
}

func NewGoalRepository() attendance.GoalRepository {
	return &goalRepositoryImpl{}
}

func (r *goalRepositoryImpl) List(ctx context.Context) ([]engine.AttendanceGoal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]engine.AttendanceGoal, len(r.goals))
	copy(out, r.goals)
	sort.SliceStable(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

func (r *goalRepositoryImpl) GetByID(ctx context.Context, id string) (engine.AttendanceGoal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, g := range r.goals {
		if g.ID == id {
			return g, nil
		}
	}
	return engine.AttendanceGoal{}, attendance.ErrGoalNotFound
}

func (r *goalRepositoryImpl) nameTaken(name, exceptID string) bool {
	for _, g := range r.goals {
		if g.ID != exceptID && strings.EqualFold(g.Name, name) {
			return true
		}
	}
	return false
}

func (r *goalRepositoryImpl) Create(ctx context.Context, goal engine.AttendanceGoal) (engine.AttendanceGoal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTaken(goal.Name, "") {
		return engine.AttendanceGoal{}, attendance.ErrGoalNameExists
	}
	if goal.ID == "" {
		goal.ID = newID()
	}
	r.goals = append(r.goals, goal)
	return goal, nil
}

func (r *goalRepositoryImpl) Update(ctx context.Context, goal engine.AttendanceGoal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTaken(goal.Name, goal.ID) {
		return attendance.ErrGoalNameExists
	}
	for i, g := range r.goals {
		if g.ID == goal.ID {
			r.goals[i] = goal
			return nil
		}
	}
	return attendance.ErrGoalNotFound
}

func (r *goalRepositoryImpl) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, g := range r.goals {
		if g.ID == id {
			r.goals = append(r.goals[:i:i], r.goals[i+1:]...)
			return nil
		}
	}
	return attendance.ErrGoalNotFound
}
