package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTemplate(t *testing.T) {
	base := DefaultWeeklyShiftPolicy()

	full, err := ApplyTemplate(TemplateEveryDayFull, base, 60)
	require.NoError(t, err)
	assert.Len(t, full.EnabledWeekdays(), 7)
	assert.Equal(t, MustTimeOfDay("17:00"), full[time.Saturday].End)

	eight, err := ApplyTemplate(TemplateEveryDay8Hours, base, 30)
	require.NoError(t, err)
	assert.Len(t, eight.EnabledWeekdays(), 7)
	assert.Equal(t, "16:30", eight[time.Monday].End.String())

	weekdays, err := ApplyTemplate(TemplateWeekdaysOnly, full, 60)
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		weekdays.EnabledWeekdays())

	_, err = ApplyTemplate("every_other_day", base, 60)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestApplyTemplate_PastMidnight(t *testing.T) {
	base := DefaultWeeklyShiftPolicy()
	base[time.Friday].Start = MustTimeOfDay("16:00")

	_, err := ApplyTemplate(TemplateEveryDay8Hours, base, 60)

	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestScheduledHours(t *testing.T) {
	p := ShiftPolicy{Start: MustTimeOfDay("08:00"), End: MustTimeOfDay("17:00"), Enabled: true}
	assert.InDelta(t, 8.0, ScheduledHours(p, 60), 1e-9)

	short := ShiftPolicy{Start: MustTimeOfDay("08:00"), End: MustTimeOfDay("14:00"), Enabled: true}
	assert.InDelta(t, 6.0, ScheduledHours(short, 60), 1e-9)

	p.Enabled = false
	assert.Zero(t, ScheduledHours(p, 60))

	assert.InDelta(t, 40.0, WeeklyScheduledHours(DefaultWeeklyShiftPolicy(), 60), 1e-9)
}
