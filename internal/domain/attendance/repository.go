package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
)

type DailyRecordRepository interface {
	Get(ctx context.Context, employeeID string, date time.Time) (DailyRecord, error)
	// Insert stores a closed day. It fails with ErrDayAlreadyClosed when the
	// employee-day already has a record.
	Insert(ctx context.Context, record DailyRecord) error
	// ListByEmployee returns the records with from <= date <= to, ascending.
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]DailyRecord, error)
}

type SummaryRepository interface {
	Upsert(ctx context.Context, summary MonthlySummary) error
	Get(ctx context.Context, employeeID string, year int, month time.Month) (MonthlySummary, error)
	ListByMonth(ctx context.Context, year int, month time.Month) ([]MonthlySummary, error)
}

type GoalRepository interface {
	List(ctx context.Context) ([]engine.AttendanceGoal, error)
	GetByID(ctx context.Context, id string) (engine.AttendanceGoal, error)
	Create(ctx context.Context, goal engine.AttendanceGoal) (engine.AttendanceGoal, error)
	Update(ctx context.Context, goal engine.AttendanceGoal) error
	Delete(ctx context.Context, id string) error
}
