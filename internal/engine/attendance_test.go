package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func checkIn(hhmm string) *time.Time {
	t := at(hhmm)
	return &t
}

func TestClassify(t *testing.T) {
	rules := ClassifierRules{Grace: 10 * time.Minute, LateFrom: LateFromThreshold}
	scheduled := DayAttendance{Date: day("2025-01-20"), Scheduled: true, ScheduledStart: at("08:00")}

	tests := []struct {
		name        string
		mutate      func(d DayAttendance) DayAttendance
		rules       ClassifierRules
		wantStatus  AttendanceStatus
		wantMinutes int
	}{
		{
			name:       "within grace is present",
			mutate:     func(d DayAttendance) DayAttendance { d.CheckIn = checkIn("08:07"); return d },
			rules:      rules,
			wantStatus: StatusPresent,
		},
		{
			name:       "exactly at threshold is present",
			mutate:     func(d DayAttendance) DayAttendance { d.CheckIn = checkIn("08:10"); return d },
			rules:      rules,
			wantStatus: StatusPresent,
		},
		{
			name:        "after threshold is late",
			mutate:      func(d DayAttendance) DayAttendance { d.CheckIn = checkIn("08:25"); return d },
			rules:       rules,
			wantStatus:  StatusLate,
			wantMinutes: 15,
		},
		{
			name:        "late measured from scheduled start",
			mutate:      func(d DayAttendance) DayAttendance { d.CheckIn = checkIn("08:25"); return d },
			rules:       ClassifierRules{Grace: 10 * time.Minute, LateFrom: LateFromScheduledStart},
			wantStatus:  StatusLate,
			wantMinutes: 25,
		},
		{
			name:       "no check in is missed",
			mutate:     func(d DayAttendance) DayAttendance { return d },
			rules:      rules,
			wantStatus: StatusMissed,
		},
		{
			name: "excused overrides late",
			mutate: func(d DayAttendance) DayAttendance {
				d.CheckIn = checkIn("09:30")
				d.Excused = true
				return d
			},
			rules:      rules,
			wantStatus: StatusExcused,
		},
		{
			name:       "excused overrides missed",
			mutate:     func(d DayAttendance) DayAttendance { d.Excused = true; return d },
			rules:      rules,
			wantStatus: StatusExcused,
		},
		{
			name:       "unscheduled day",
			mutate:     func(d DayAttendance) DayAttendance { d.Scheduled = false; d.CheckIn = checkIn("08:00"); return d },
			rules:      rules,
			wantStatus: StatusUnscheduled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.mutate(scheduled), tt.rules)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantMinutes, got.MinutesLate)
		})
	}
}

func TestClassify_TruncatesMinutes(t *testing.T) {
	in := at("08:25").Add(59 * time.Second)
	got := Classify(DayAttendance{Scheduled: true, ScheduledStart: at("08:00"), CheckIn: &in},
		ClassifierRules{LateFrom: LateFromScheduledStart})

	assert.Equal(t, 25, got.MinutesLate)
}

func TestClassify_IsTotalOverScheduledDays(t *testing.T) {
	rules := ClassifierRules{Grace: 5 * time.Minute}
	terminal := map[AttendanceStatus]bool{StatusPresent: true, StatusLate: true, StatusMissed: true, StatusExcused: true}

	for minute := -30; minute <= 120; minute += 7 {
		for _, excused := range []bool{false, true} {
			in := at("08:00").Add(time.Duration(minute) * time.Minute)
			got := Classify(DayAttendance{Scheduled: true, ScheduledStart: at("08:00"), CheckIn: &in, Excused: excused}, rules)
			assert.True(t, terminal[got.Status], "minute %d", minute)
			assert.GreaterOrEqual(t, got.MinutesLate, 0)
		}
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusUnscheduled, StatusLate))
	assert.False(t, CanTransition(StatusUnscheduled, StatusUnscheduled))
	assert.False(t, CanTransition(StatusPresent, StatusExcused))
	assert.False(t, CanTransition(StatusMissed, StatusPresent))
}

func TestScheduledDay(t *testing.T) {
	w := DefaultWeeklyShiftPolicy()

	monday := ScheduledDay(at("15:00"), w)
	assert.True(t, monday.Scheduled)
	assert.Equal(t, at("08:00"), monday.ScheduledStart)
	assert.Equal(t, day("2025-01-20"), monday.Date)

	sunday := ScheduledDay(day("2025-01-19"), w)
	assert.False(t, sunday.Scheduled)
}

func TestTally(t *testing.T) {
	days := []Classification{
		{Status: StatusPresent},
		{Status: StatusLate, MinutesLate: 12},
		{Status: StatusLate, MinutesLate: 3},
		{Status: StatusMissed},
		{Status: StatusExcused},
		{Status: StatusUnscheduled},
	}

	got := Tally(days)

	assert.Equal(t, AttendanceTally{DaysPresent: 1, DaysLate: 2, DaysMissed: 1, DaysExcused: 1, TotalMinutesLate: 15}, got)
}
