package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, time.January, 20, 8, 0, 0, 0, time.UTC)

func entry(kind engine.EventKind, offset time.Duration) timeentry.TimeEntry {
	return timeentry.TimeEntry{EmployeeID: "emp-1", Kind: kind, Timestamp: base.Add(offset), CreatedBy: "emp-1"}
}

func openStore(t *testing.T, path string) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTimeEntryRepository_OrderAndRanges(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewTimeEntryRepository(openStore(t, ":memory:"))

	note := "forgot badge"
	for _, e := range []timeentry.TimeEntry{
		entry(engine.ClockOut, 9*time.Hour),
		entry(engine.ClockIn, 0),
		entry(engine.LunchOut, 4*time.Hour),
		entry(engine.LunchIn, 5*time.Hour),
	} {
		if e.Kind == engine.ClockIn {
			e.Notes = &note
		}
		_, err := repo.Append(ctx, e)
		require.NoError(t, err)
	}

	all, err := repo.ListByEmployee(ctx, "emp-1", time.Time{}, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, engine.ClockIn, all[0].Kind)
	assert.Equal(t, base, all[0].Timestamp)
	require.NotNil(t, all[0].Notes)
	assert.Equal(t, note, *all[0].Notes)
	assert.Nil(t, all[1].Notes)
	assert.Equal(t, engine.ClockOut, all[3].Kind)

	morning, err := repo.ListByEmployee(ctx, "emp-1", base, base.Add(4*time.Hour))
	require.NoError(t, err)
	assert.Len(t, morning, 1)

	recent, err := repo.ListRecent(ctx, "emp-1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, engine.ClockOut, recent[0].Kind)
	assert.Equal(t, engine.LunchIn, recent[1].Kind)
}

func TestTimeEntryRepository_LatestSession(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewTimeEntryRepository(openStore(t, ":memory:"))

	tail, err := repo.LatestSession(ctx, "emp-1")
	require.NoError(t, err)
	assert.Empty(t, tail)

	for _, e := range []timeentry.TimeEntry{
		entry(engine.ClockIn, 0),
		entry(engine.ClockOut, 4*time.Hour),
		entry(engine.ClockIn, 5*time.Hour),
		entry(engine.UnpaidOut, 6*time.Hour),
	} {
		_, err := repo.Append(ctx, e)
		require.NoError(t, err)
	}

	tail, err = repo.LatestSession(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, base.Add(5*time.Hour), tail[0].Timestamp)
	assert.Equal(t, engine.UnpaidOut, tail[1].Kind)
}

func TestTimeEntryRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewTimeEntryRepository(openStore(t, ":memory:"))

	saved, err := repo.Append(ctx, entry(engine.ClockIn, 0))
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	got, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)

	require.NoError(t, repo.Delete(ctx, saved.ID))
	assert.ErrorIs(t, repo.Delete(ctx, saved.ID), timeentry.ErrTimeEntryNotFound)
	_, err = repo.GetByID(ctx, saved.ID)
	assert.ErrorIs(t, err, timeentry.ErrTimeEntryNotFound)
}

func TestTimeEntryRepository_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "timeclock.db")

	first, err := sqlite.Open(path)
	require.NoError(t, err)
	_, err = sqlite.NewTimeEntryRepository(first).Append(ctx, entry(engine.ClockIn, 0))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	repo := sqlite.NewTimeEntryRepository(openStore(t, path))
	tail, err := repo.LatestSession(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, engine.ClockIn, tail[0].Kind)
}

func TestTimeEntryRepository_WithEmployeeLockHonoursContext(t *testing.T) {
	repo := sqlite.NewTimeEntryRepository(openStore(t, ":memory:"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := repo.WithEmployeeLock(ctx, "emp-1", func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestTimeEntryRepository_ClockInsAround(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewTimeEntryRepository(openStore(t, ":memory:"))

	var ids []string
	for _, e := range []timeentry.TimeEntry{
		entry(engine.ClockIn, 0),
		entry(engine.ClockOut, 26*time.Hour),
		entry(engine.ClockIn, 27*time.Hour),
	} {
		saved, err := repo.Append(ctx, e)
		require.NoError(t, err)
		ids = append(ids, saved.ID)
	}

	prev, next, err := repo.ClockInsAround(ctx, "emp-1", base.Add(26*time.Hour), ids[1])
	require.NoError(t, err)
	require.NotNil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, ids[0], prev.ID)
	assert.Equal(t, ids[2], next.ID)

	// the excluded entry itself is skipped
	prev, next, err = repo.ClockInsAround(ctx, "emp-1", base, ids[0])
	require.NoError(t, err)
	assert.Nil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, ids[2], next.ID)

	prev, next, err = repo.ClockInsAround(ctx, "emp-2", base, "")
	require.NoError(t, err)
	assert.Nil(t, prev)
	assert.Nil(t, next)
}
