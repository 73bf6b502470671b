package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nineToFive() ShiftPolicy {
	return ShiftPolicy{
		Start:           MustTimeOfDay("09:00"),
		End:             MustTimeOfDay("17:00"),
		Enabled:         true,
		ClampEarlyStart: true,
		ClampLateEnd:    true,
	}
}

func TestEvaluateShift(t *testing.T) {
	tests := []struct {
		name      string
		raw       RawInterval
		policy    func() ShiftPolicy
		increment int
		want      float64
	}{
		{
			name:   "clamps early start and late end",
			raw:    RawInterval{ClockIn: at("08:40"), ClockOut: at("17:20")},
			policy: nineToFive,
			want:   480,
		},
		{
			name: "no clamping keeps raw punches",
			raw:  RawInterval{ClockIn: at("08:40"), ClockOut: at("17:20")},
			policy: func() ShiftPolicy {
				p := nineToFive()
				p.ClampEarlyStart, p.ClampLateEnd = false, false
				return p
			},
			want: 520,
		},
		{
			name: "recorded lunch and unpaid are deducted",
			raw: RawInterval{ClockIn: at("09:00"), ClockOut: at("17:00"),
				LunchMinutes: 30, UnpaidMinutes: 15, LunchBreaks: 1},
			policy: nineToFive,
			want:   435,
		},
		{
			name: "required lunch deducts default when none recorded",
			raw:  RawInterval{ClockIn: at("09:00"), ClockOut: at("17:00")},
			policy: func() ShiftPolicy {
				p := nineToFive()
				p.LunchRequired = true
				return p
			},
			want: 420,
		},
		{
			name: "required lunch uses the recorded one when present",
			raw:  RawInterval{ClockIn: at("09:00"), ClockOut: at("17:00"), LunchMinutes: 20, LunchBreaks: 1},
			policy: func() ShiftPolicy {
				p := nineToFive()
				p.LunchRequired = true
				return p
			},
			want: 460,
		},
		{
			name:      "rounds half up to increment",
			raw:       RawInterval{ClockIn: at("09:00"), ClockOut: at("09:52")},
			policy:    nineToFive,
			increment: 15,
			want:      45,
		},
		{
			name:      "exact half rounds up",
			raw:       RawInterval{ClockIn: at("09:00"), ClockOut: at("09:22").Add(30 * time.Second)},
			policy:    nineToFive,
			increment: 15,
			want:      30,
		},
		{
			name:   "entire punch before shift pays nothing",
			raw:    RawInterval{ClockIn: at("06:00"), ClockOut: at("08:00")},
			policy: nineToFive,
			want:   0,
		},
		{
			name:   "deductions never go negative",
			raw:    RawInterval{ClockIn: at("09:00"), ClockOut: at("09:10"), UnpaidMinutes: 60},
			policy: nineToFive,
			want:   0,
		},
		{
			name: "disabled day is not clamped",
			raw:  RawInterval{ClockIn: at("07:00"), ClockOut: at("10:00")},
			policy: func() ShiftPolicy {
				p := nineToFive()
				p.Enabled = false
				return p
			},
			want: 180,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateShift(tt.raw, tt.policy(), 60, tt.increment)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestEvaluateShift_InvalidConfiguration(t *testing.T) {
	raw := RawInterval{ClockIn: at("09:00"), ClockOut: at("17:00")}

	_, err := EvaluateShift(raw, nineToFive(), 60, -5)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	lunch := nineToFive()
	lunch.LunchRequired = true
	_, err = EvaluateShift(raw, lunch, 0, 15)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	backwards := nineToFive()
	backwards.End = MustTimeOfDay("08:00")
	_, err = EvaluateShift(raw, backwards, 60, 15)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "shift.end", ce.Field)
}

func TestEvaluateShift_ClockOutBeforeClockIn(t *testing.T) {
	_, err := EvaluateShift(RawInterval{ClockIn: at("17:00"), ClockOut: at("09:00")}, nineToFive(), 60, 15)
	assert.ErrorIs(t, err, ErrInconsistentSequence)
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 0.0, RoundHalfUp(7.4, 15))
	assert.Equal(t, 15.0, RoundHalfUp(7.5, 15))
	assert.Equal(t, 30.0, RoundHalfUp(22.5, 15))
	assert.Equal(t, 480.0, RoundHalfUp(487, 15))
	assert.Equal(t, 487.25, RoundHalfUp(487.25, 0))
}

func TestTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("08:30:00")
	require.NoError(t, err)
	assert.Equal(t, "08:30", tod.String())
	assert.Equal(t, at("08:30"), tod.On(at("00:00")))

	for _, bad := range []string{"", "8", "24:00", "12:60", "aa:bb"} {
		_, err := ParseTimeOfDay(bad)
		assert.Error(t, err, bad)
	}

	var parsed TimeOfDay
	require.NoError(t, parsed.UnmarshalText([]byte("17:45")))
	text, _ := parsed.MarshalText()
	assert.Equal(t, "17:45", string(text))
}

func TestWeeklyShiftPolicy(t *testing.T) {
	w := DefaultWeeklyShiftPolicy()

	assert.Len(t, w.EnabledWeekdays(), 5)
	assert.True(t, w.For(day("2025-01-20")).Enabled)  // Monday
	assert.False(t, w.For(day("2025-01-19")).Enabled) // Sunday
	assert.NoError(t, w.Validate(60))

	w[3].LunchRequired = true
	err := w.Validate(0)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "wednesday.default_lunch_minutes", ce.Field)
}

func TestEvaluateDay(t *testing.T) {
	p := DefaultPolicy()
	p.Shifts[1] = nineToFive() // Monday

	events := []TimeEvent{
		ev(ClockIn, "08:50"),
		ev(LunchOut, "12:00"),
		ev(LunchIn, "12:30"),
		ev(ClockOut, "17:06"),
	}

	res, err := EvaluateDay(events, p)

	require.NoError(t, err)
	assert.Equal(t, "2025-01-20", res.Date)
	assert.InDelta(t, 7.0+46.0/60, res.Hours.PaidHours, 1e-9)
	// clamped to 09:00-17:00, minus 30 minutes lunch
	assert.InDelta(t, 450.0, res.AdjustedPaidMinutes, 1e-9)
	assert.InDelta(t, 7.5, res.AdjustedPaidHours(), 1e-9)
}

func TestEvaluateDay_GapBetweenSessionsIsUnpaid(t *testing.T) {
	p := DefaultPolicy()
	p.Shifts[1] = nineToFive()

	events := []TimeEvent{
		ev(ClockIn, "09:00"),
		ev(ClockOut, "12:00"),
		ev(ClockIn, "13:00"),
		ev(ClockOut, "17:00"),
	}

	res, err := EvaluateDay(events, p)

	require.NoError(t, err)
	assert.InDelta(t, 420.0, res.AdjustedPaidMinutes, 1e-9)
}

func TestEvaluateDay_ClampsEachSession(t *testing.T) {
	p := DefaultPolicy()
	p.RoundingIncrementMinutes = 0
	p.DefaultLunchMinutes = 0

	tests := []struct {
		name   string
		events []TimeEvent
		want   float64
	}{
		{
			name: "session before the shift is dropped",
			events: []TimeEvent{
				ev(ClockIn, "06:00"),
				ev(ClockOut, "07:00"),
				ev(ClockIn, "09:00"),
				ev(ClockOut, "17:00"),
			},
			want: 480,
		},
		{
			name: "session straddling the start keeps only the shift part",
			events: []TimeEvent{
				ev(ClockIn, "07:00"),
				ev(ClockOut, "10:00"),
				ev(ClockIn, "11:00"),
				ev(ClockOut, "18:00"),
			},
			want: 120 + 360,
		},
		{
			name: "lunch outside the window is not deducted",
			events: []TimeEvent{
				ev(ClockIn, "06:00"),
				ev(LunchOut, "06:30"),
				ev(LunchIn, "07:00"),
				ev(ClockOut, "12:00"),
			},
			want: 240,
		},
		{
			name: "lunch straddling the start is deducted inside the window only",
			events: []TimeEvent{
				ev(ClockIn, "07:00"),
				ev(LunchOut, "07:45"),
				ev(LunchIn, "08:30"),
				ev(ClockOut, "12:00"),
			},
			want: 240 - 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := EvaluateDay(tt.events, p)

			require.NoError(t, err)
			assert.InDelta(t, tt.want, res.AdjustedPaidMinutes, 1e-9)
		})
	}
}

func TestEvaluateDay_RequiredLunchAcrossSessions(t *testing.T) {
	p := DefaultPolicy()
	p.RoundingIncrementMinutes = 0
	p.Shifts[1].LunchRequired = true

	events := []TimeEvent{
		ev(ClockIn, "08:00"),
		ev(ClockOut, "12:00"),
		ev(ClockIn, "12:30"),
		ev(ClockOut, "17:00"),
	}

	res, err := EvaluateDay(events, p)

	require.NoError(t, err)
	// no lunch punched, so the default 60 minutes comes off the 510 worked
	assert.InDelta(t, 450.0, res.AdjustedPaidMinutes, 1e-9)
}

func TestEvaluateDay_IncompleteDay(t *testing.T) {
	res, err := EvaluateDay([]TimeEvent{ev(ClockIn, "09:00")}, DefaultPolicy())

	require.NoError(t, err)
	assert.True(t, res.Incomplete)
	assert.Zero(t, res.AdjustedPaidMinutes)
}

func TestSplitByDay(t *testing.T) {
	events := []TimeEvent{
		ev(ClockIn, "22:00"),
		{EmployeeID: "emp-1", Kind: ClockOut, Timestamp: at("22:00").Add(4 * time.Hour)},
	}

	days := SplitByDay(events, nil)

	require.Len(t, days, 1)
	assert.Len(t, days["2025-01-20"], 2)
}
