package attendance

import (
	"context"
	"time"
)

type AttendanceService interface {
	// CloseOutDay classifies date for every active employee that has no record yet.
	CloseOutDay(ctx context.Context, date time.Time) (CloseOutResult, error)
	// Excuse closes a scheduled day as excused for one employee (admin only).
	Excuse(ctx context.Context, req ExcuseRequest) (DailyRecordResponse, error)
	// RecalculateMonth rebuilds the stored summaries of every active employee.
	RecalculateMonth(ctx context.Context, year int, month time.Month) (int, error)

	MySummary(ctx context.Context, year int, month time.Month) (MonthlySummaryResponse, error)
	MyDays(ctx context.Context, year int, month time.Month) ([]DailyRecordResponse, error)
	ListSummaries(ctx context.Context, year int, month time.Month) ([]MonthlySummaryResponse, error)

	ListGoals(ctx context.Context) ([]GoalResponse, error)
	CreateGoal(ctx context.Context, req GoalRequest) (GoalResponse, error)
	UpdateGoal(ctx context.Context, id string, req GoalRequest) (GoalResponse, error)
	DeleteGoal(ctx context.Context, id string) error
}
