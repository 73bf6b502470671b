package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/fixtures"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/attendance"
	settingsService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jobsFixture struct {
	jobs      *AttendanceJobs
	days      attendance.DailyRecordRepository
	summaries attendance.SummaryRepository
	sessions  *memory.SessionStore
	ids       []string
}

func setupJobs(t *testing.T, now time.Time) jobsFixture {
	t.Helper()
	ctx := context.Background()

	users := memory.NewUserRepository()
	employees := memory.NewEmployeeRepository()
	goals := memory.NewGoalRepository()
	require.NoError(t, fixtures.SeedDemo(ctx, users, employees, goals, engine.DefaultPolicy()))
	ids, err := employees.ListActiveIDs(ctx)
	require.NoError(t, err)

	days := memory.NewDailyRecordRepository()
	summaries := memory.NewSummaryRepository()
	settings := settingsService.NewSettingsService(memory.NewSettingsRepository(), goals, engine.DefaultPolicy())
	svc := attendanceService.NewAttendanceService(days, summaries, goals, employees, memory.NewTimeEntryRepository(), settings, 2)

	sessions := memory.NewSessionStore()
	jobs := NewAttendanceJobs(svc, settings, sessions)
	jobs.now = func() time.Time { return now }
	return jobsFixture{jobs: jobs, days: days, summaries: summaries, sessions: sessions, ids: ids}
}

func TestCloseOutYesterday(t *testing.T) {
	// Tuesday morning closes Monday 2025-01-20
	f := setupJobs(t, time.Date(2025, time.January, 21, 1, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, f.jobs.CloseOutYesterday(ctx))
	for _, id := range f.ids {
		rec, err := f.days.Get(ctx, id, time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, engine.StatusMissed, rec.Status)
	}

	// a second run must not fail on the existing records
	require.NoError(t, f.jobs.CloseOutYesterday(ctx))
}

func TestRecalculateSummaries_CoversPreviousMonthOnTheFirst(t *testing.T) {
	f := setupJobs(t, time.Date(2025, time.February, 1, 2, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, f.jobs.RecalculateSummaries(ctx))

	jan, err := f.summaries.ListByMonth(ctx, 2025, time.January)
	require.NoError(t, err)
	assert.Len(t, jan, len(f.ids))
	feb, err := f.summaries.ListByMonth(ctx, 2025, time.February)
	require.NoError(t, err)
	assert.Len(t, feb, len(f.ids))

	t.Run("mid month only touches the current month", func(t *testing.T) {
		g := setupJobs(t, time.Date(2025, time.March, 10, 2, 0, 0, 0, time.UTC))
		require.NoError(t, g.jobs.RecalculateSummaries(ctx))
		feb, err := g.summaries.ListByMonth(ctx, 2025, time.February)
		require.NoError(t, err)
		assert.Empty(t, feb)
	})
}

func TestDeleteExpiredSessions(t *testing.T) {
	now := time.Date(2025, time.January, 21, 1, 0, 0, 0, time.UTC)
	f := setupJobs(t, now)
	ctx := context.Background()

	require.NoError(t, f.sessions.Create(ctx, auth.Session{ID: "old", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, f.sessions.Create(ctx, auth.Session{ID: "live", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))

	require.NoError(t, f.jobs.DeleteExpiredSessions(ctx))
	n, err := f.sessions.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestScheduler(t *testing.T) {
	s := NewScheduler()
	f := setupJobs(t, time.Date(2025, time.January, 21, 1, 0, 0, 0, time.UTC))
	f.jobs.RegisterJobs(s, JobsConfig{CloseOut: true, Recalculate: true, SessionCleanup: true})
	assert.Equal(t, []string{"close_out_attendance_days", "recalculate_attendance_summaries", "delete_expired_sessions"}, s.Jobs())

	t.Run("RunOnce joins failures", func(t *testing.T) {
		s := NewScheduler()
		boom := errors.New("boom")
		ran := 0
		s.AddJob("ok", time.Hour, func(context.Context) error { ran++; return nil })
		s.AddJob("bad", time.Hour, func(context.Context) error { ran++; return boom })

		err := s.RunOnce(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "bad")
		assert.Equal(t, 2, ran)
	})

	t.Run("Start runs immediately and Stop waits", func(t *testing.T) {
		s := NewScheduler()
		started := make(chan struct{}, 1)
		s.AddJob("tick", time.Hour, func(context.Context) error {
			select {
			case started <- struct{}{}:
			default:
			}
			return nil
		})
		s.Start(context.Background())
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatal("job did not run on start")
		}
		s.Stop()
	})
}
