package postgresql_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/fixtures"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEmployee(t *testing.T, db *TestDatabaseSetup) string {
	t.Helper()
	ctx := context.Background()
	users := postgresql.NewUserRepository(db.DB)
	require.NoError(t, fixtures.SeedDemo(ctx, users, postgresql.NewEmployeeRepository(db.DB), postgresql.NewGoalRepository(db.DB), engine.DefaultPolicy()))
	john, err := users.GetByEmail(ctx, "john@demo.com")
	require.NoError(t, err)
	return *john.EmployeeID
}

func TestTimeEntryRepository(t *testing.T) {
	db := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewTimeEntryRepository(db.DB)
	employeeID := seedEmployee(t, db)

	day := time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)
	for _, p := range []struct {
		kind engine.EventKind
		at   time.Duration
	}{
		{engine.ClockIn, 8 * time.Hour},
		{engine.ClockOut, 12 * time.Hour},
		{engine.ClockIn, 13 * time.Hour},
		{engine.LunchOut, 14 * time.Hour},
	} {
		_, err := repo.Append(ctx, timeentry.TimeEntry{EmployeeID: employeeID, Kind: p.kind, Timestamp: day.Add(p.at), CreatedBy: employeeID})
		require.NoError(t, err)
	}

	all, err := repo.ListByEmployee(ctx, employeeID, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, engine.ClockIn, all[0].Kind)
	assert.Equal(t, day.Add(8*time.Hour), all[0].Timestamp)

	recent, err := repo.ListRecent(ctx, employeeID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, engine.LunchOut, recent[0].Kind)

	latest, err := repo.LatestSession(ctx, employeeID)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, day.Add(13*time.Hour), latest[0].Timestamp)

	prev, next, err := repo.ClockInsAround(ctx, employeeID, day.Add(12*time.Hour), "")
	require.NoError(t, err)
	require.NotNil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, day.Add(8*time.Hour), prev.Timestamp)
	assert.Equal(t, day.Add(13*time.Hour), next.Timestamp)

	prev, _, err = repo.ClockInsAround(ctx, employeeID, day.Add(8*time.Hour), all[0].ID)
	require.NoError(t, err)
	assert.Nil(t, prev)

	require.NoError(t, repo.Delete(ctx, latest[1].ID))
	_, err = repo.GetByID(ctx, latest[1].ID)
	assert.ErrorIs(t, err, timeentry.ErrTimeEntryNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, latest[1].ID), timeentry.ErrTimeEntryNotFound)
}

func TestTimeEntryRepository_WithEmployeeLockSerializes(t *testing.T) {
	db := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewTimeEntryRepository(db.DB)
	employeeID := seedEmployee(t, db)

	// every goroutine tries to clock in; only the first may, the rest see the open session
	base := time.Date(2025, time.January, 20, 8, 0, 0, 0, time.UTC)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.WithEmployeeLock(ctx, employeeID, func(ctx context.Context) error {
				tail, err := repo.LatestSession(ctx, employeeID)
				if err != nil {
					return err
				}
				next := engine.TimeEvent{EmployeeID: employeeID, Kind: engine.ClockIn, Timestamp: base.Add(time.Duration(i) * time.Second)}
				if err := engine.CanAppend(timeentry.ToEvents(tail), next); err != nil {
					return err
				}
				_, err = repo.Append(ctx, timeentry.TimeEntry{EmployeeID: employeeID, Kind: next.Kind, Timestamp: next.Timestamp, CreatedBy: employeeID})
				return err
			})
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, engine.ErrAlreadyClockedIn)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, accepted)
}
