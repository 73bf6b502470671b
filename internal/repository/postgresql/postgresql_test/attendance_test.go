package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyRecordAndSummaryRepositories(t *testing.T) {
	db := NewTestDatabase(t)
	ctx := context.Background()
	employeeID := seedEmployee(t, db)
	days := postgresql.NewDailyRecordRepository(db.DB)
	summaries := postgresql.NewSummaryRepository(db.DB)

	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	day := time.Date(2025, time.January, 20, 0, 0, 0, 0, loc)
	checkIn := day.Add(8*time.Hour + 20*time.Minute)

	rec := attendance.DailyRecord{
		EmployeeID:  employeeID,
		Date:        day,
		Status:      engine.StatusLate,
		MinutesLate: 5,
		CheckIn:     &checkIn,
		ClosedAt:    time.Now().UTC(),
	}
	require.NoError(t, days.Insert(ctx, rec))
	assert.ErrorIs(t, days.Insert(ctx, rec), attendance.ErrDayAlreadyClosed)

	got, err := days.Get(ctx, employeeID, day)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusLate, got.Status)
	assert.True(t, got.Date.Equal(day))

	list, err := days.ListByEmployee(ctx, employeeID, day.AddDate(0, 0, -19), day.AddDate(0, 0, 11))
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = days.Get(ctx, employeeID, day.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, attendance.ErrDailyRecordNotFound)

	summary := attendance.MonthlySummary{
		EmployeeID:   employeeID,
		Year:         2025,
		Month:        time.January,
		Tally:        engine.AttendanceTally{DaysLate: 1, TotalMinutesLate: 5},
		HoursWorked:  8,
		CalculatedAt: time.Now().UTC(),
	}
	require.NoError(t, summaries.Upsert(ctx, summary))
	summary.HoursWorked = 9
	require.NoError(t, summaries.Upsert(ctx, summary))

	stored, err := summaries.Get(ctx, employeeID, 2025, time.January)
	require.NoError(t, err)
	assert.Equal(t, 9.0, stored.HoursWorked)
	assert.Equal(t, 1, stored.Tally.DaysLate)

	all, err := summaries.ListByMonth(ctx, 2025, time.January)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGoalAndSettingsRepositories(t *testing.T) {
	db := NewTestDatabase(t)
	ctx := context.Background()
	goals := postgresql.NewGoalRepository(db.DB)
	store := postgresql.NewSettingsRepository(db.DB)

	g, err := goals.Create(ctx, engine.AttendanceGoal{Name: "Perfect Attendance", Kind: engine.GoalPositive, Active: true})
	require.NoError(t, err)
	_, err = goals.Create(ctx, engine.AttendanceGoal{Name: "Perfect Attendance", Kind: engine.GoalPositive})
	assert.ErrorIs(t, err, attendance.ErrGoalNameExists)

	g.MaxDaysLate = 2
	require.NoError(t, goals.Update(ctx, g))
	got, err := goals.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.MaxDaysLate)
	require.NoError(t, goals.Delete(ctx, g.ID))
	assert.ErrorIs(t, goals.Delete(ctx, g.ID), attendance.ErrGoalNotFound)

	_, err = store.Get(ctx)
	assert.ErrorIs(t, err, settings.ErrSettingsNotFound)

	s := settings.FromPolicy(engine.DefaultPolicy())
	s.Shifts[time.Saturday].Enabled = true
	s.Shifts[time.Saturday].End = engine.MustTimeOfDay("12:00")
	require.NoError(t, store.Save(ctx, s))

	loaded, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.Shifts, loaded.Shifts)
	assert.Equal(t, "2025-01-05", loaded.PayPeriodStartDate)
	_, err = loaded.ToPolicy(nil)
	assert.NoError(t, err)
}
