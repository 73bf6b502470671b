package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/fixtures"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/memory"
	settingsService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-01-20 is a Monday.
var monday = time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *AttendanceServiceImpl
	entries  timeentry.TimeEntryRepository
	johnCtx  context.Context
	adminCtx context.Context
	johnID   string
	adminID  string
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	users := memory.NewUserRepository()
	employees := memory.NewEmployeeRepository()
	goals := memory.NewGoalRepository()
	require.NoError(t, fixtures.SeedDemo(ctx, users, employees, goals, engine.DefaultPolicy()))

	jwtService, err := jwt.NewJWTService("secret", "1h")
	require.NoError(t, err)
	login := func(email string) (context.Context, string) {
		u, err := users.GetByEmail(ctx, email)
		require.NoError(t, err)
		c, err := jwtService.NewContext(ctx, jwt.AccessClaims{
			SessionID: "s-" + u.ID, UserID: u.ID, Email: u.Email, EmployeeID: u.EmployeeID, Role: u.Role,
		})
		require.NoError(t, err)
		return c, *u.EmployeeID
	}
	johnCtx, johnID := login("john@demo.com")
	adminCtx, adminID := login("admin@demo.com")

	entries := memory.NewTimeEntryRepository()
	settings := settingsService.NewSettingsService(memory.NewSettingsRepository(), goals, engine.DefaultPolicy())
	svc := NewAttendanceService(
		memory.NewDailyRecordRepository(),
		memory.NewSummaryRepository(),
		goals,
		employees,
		entries,
		settings,
		2,
	).(*AttendanceServiceImpl)
	svc.now = func() time.Time { return monday.Add(23 * time.Hour) }

	return fixture{svc: svc, entries: entries, johnCtx: johnCtx, adminCtx: adminCtx, johnID: johnID, adminID: adminID}
}

func (f fixture) punch(t *testing.T, employeeID string, kind engine.EventKind, at time.Time) {
	t.Helper()
	_, err := f.entries.Append(context.Background(), timeentry.TimeEntry{
		EmployeeID: employeeID, Kind: kind, Timestamp: at, CreatedBy: employeeID, CreatedAt: at,
	})
	require.NoError(t, err)
}

func TestCloseOutDay_ClassifiesEveryActiveEmployee(t *testing.T) {
	f := setup(t)
	f.punch(t, f.johnID, engine.ClockIn, monday.Add(8*time.Hour+20*time.Minute))
	f.punch(t, f.johnID, engine.ClockOut, monday.Add(17*time.Hour))

	res, err := f.svc.CloseOutDay(f.adminCtx, monday)
	require.NoError(t, err)
	assert.Equal(t, attendance.CloseOutResult{Date: "2025-01-20", Processed: 2, Skipped: 0}, res)

	john, err := f.svc.dailyRepo.Get(context.Background(), f.johnID, monday)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusLate, john.Status)
	assert.Equal(t, 5, john.MinutesLate)
	require.NotNil(t, john.CheckIn)

	admin, err := f.svc.dailyRepo.Get(context.Background(), f.adminID, monday)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusMissed, admin.Status)
	assert.Nil(t, admin.CheckIn)

	t.Run("second run skips closed days", func(t *testing.T) {
		res, err := f.svc.CloseOutDay(f.adminCtx, monday)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Processed)
		assert.Equal(t, 2, res.Skipped)
	})
}

func TestCloseOutDay_UnscheduledDay(t *testing.T) {
	f := setup(t)
	saturday := monday.AddDate(0, 0, -2)

	res, err := f.svc.CloseOutDay(f.adminCtx, saturday)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Processed)
	assert.Equal(t, 2, res.Skipped)

	_, err = f.svc.dailyRepo.Get(context.Background(), f.johnID, saturday)
	assert.ErrorIs(t, err, attendance.ErrDailyRecordNotFound)
}

func TestExcuse(t *testing.T) {
	f := setup(t)
	reason := "doctor appointment"

	resp, err := f.svc.Excuse(f.adminCtx, attendance.ExcuseRequest{EmployeeID: f.johnID, Date: "2025-01-21", Reason: &reason})
	require.NoError(t, err)
	assert.Equal(t, "excused", resp.Status)
	assert.Equal(t, &reason, resp.ExcuseReason)

	summary, err := f.svc.summaryRepo.Get(context.Background(), f.johnID, 2025, time.January)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Tally.DaysExcused)

	t.Run("closed day cannot be excused again", func(t *testing.T) {
		_, err := f.svc.Excuse(f.adminCtx, attendance.ExcuseRequest{EmployeeID: f.johnID, Date: "2025-01-21"})
		assert.ErrorIs(t, err, attendance.ErrDayAlreadyClosed)
	})

	t.Run("missed day cannot be excused after close out", func(t *testing.T) {
		_, err := f.svc.CloseOutDay(f.adminCtx, monday)
		require.NoError(t, err)
		_, err = f.svc.Excuse(f.adminCtx, attendance.ExcuseRequest{EmployeeID: f.johnID, Date: "2025-01-20"})
		assert.ErrorIs(t, err, attendance.ErrDayAlreadyClosed)
	})

	t.Run("weekend", func(t *testing.T) {
		_, err := f.svc.Excuse(f.adminCtx, attendance.ExcuseRequest{EmployeeID: f.johnID, Date: "2025-01-25"})
		assert.ErrorIs(t, err, attendance.ErrDayNotScheduled)
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := f.svc.Excuse(f.adminCtx, attendance.ExcuseRequest{EmployeeID: f.johnID, Date: "21/01/2025"})
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})
}

func TestMonthlySummary_MatchesFirstGoal(t *testing.T) {
	f := setup(t)
	_, err := f.svc.CreateGoal(f.adminCtx, attendance.GoalRequest{Name: "Perfect Attendance", Kind: "positive", DisplayOrder: 1})
	require.NoError(t, err)
	good, err := f.svc.CreateGoal(f.adminCtx, attendance.GoalRequest{Name: "Good Attendance", Kind: "positive", MaxDaysMissed: 1, MaxDaysLate: 2, DisplayOrder: 2})
	require.NoError(t, err)
	_, err = f.svc.CreateGoal(f.adminCtx, attendance.GoalRequest{Name: "Reliable", Kind: "positive", MaxDaysMissed: 2, MaxDaysLate: 3, DisplayOrder: 3})
	require.NoError(t, err)

	f.punch(t, f.johnID, engine.ClockIn, monday.Add(8*time.Hour+20*time.Minute))
	f.punch(t, f.johnID, engine.ClockOut, monday.Add(16*time.Hour+20*time.Minute))
	_, err = f.svc.CloseOutDay(f.adminCtx, monday)
	require.NoError(t, err)

	summary, err := f.svc.MySummary(f.johnCtx, 2025, time.January)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Tally.DaysLate)
	assert.Equal(t, 5, summary.Tally.TotalMinutesLate)
	assert.Equal(t, 23, summary.ScheduledDays)
	assert.InDelta(t, 8.0, summary.HoursWorked, 1e-9)
	require.NotNil(t, summary.Goal)
	assert.Equal(t, good.ID, summary.Goal.ID)
	assert.True(t, summary.Ambiguous)
	assert.Len(t, summary.MatchedGoalIDs, 2)

	days, err := f.svc.MyDays(f.johnCtx, 2025, time.January)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "late", days[0].Status)

	n, err := f.svc.RecalculateMonth(f.adminCtx, 2025, time.January)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := f.svc.ListSummaries(f.adminCtx, 2025, time.January)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.MySummary(f.johnCtx, 2025, time.Month(13))
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestGoals_CRUD(t *testing.T) {
	f := setup(t)

	created, err := f.svc.CreateGoal(f.adminCtx, attendance.GoalRequest{Name: "Needs Improvement", Kind: "negative", MaxDaysMissed: 3, MaxDaysLate: 5})
	require.NoError(t, err)
	assert.True(t, created.Active)

	_, err = f.svc.CreateGoal(f.adminCtx, attendance.GoalRequest{Name: "Needs Improvement", Kind: "negative"})
	assert.ErrorIs(t, err, attendance.ErrGoalNameExists)

	_, err = f.svc.CreateGoal(f.adminCtx, attendance.GoalRequest{Name: "Broken", Kind: "sideways"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	inactive := false
	updated, err := f.svc.UpdateGoal(f.adminCtx, created.ID, attendance.GoalRequest{Name: "Needs Improvement", Kind: "negative", MaxDaysMissed: 4, Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.MaxDaysMissed)
	assert.False(t, updated.Active)

	_, err = f.svc.UpdateGoal(f.adminCtx, "missing", attendance.GoalRequest{Name: "x", Kind: "positive"})
	assert.ErrorIs(t, err, attendance.ErrGoalNotFound)

	list, err := f.svc.ListGoals(f.adminCtx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.svc.DeleteGoal(f.adminCtx, created.ID))
	assert.ErrorIs(t, f.svc.DeleteGoal(f.adminCtx, created.ID), attendance.ErrGoalNotFound)
}
