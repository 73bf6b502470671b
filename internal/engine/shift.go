package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a local wall-clock time stored as minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// MustTimeOfDay is ParseTimeOfDay for constants.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// On places the time of day on the calendar date of day, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location())
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ShiftPolicy is the configured shift for one weekday. Read-only to the engine.
type ShiftPolicy struct {
	Start           TimeOfDay `json:"start" yaml:"start"`
	End             TimeOfDay `json:"end" yaml:"end"`
	Enabled         bool      `json:"enabled" yaml:"enabled"`
	LunchRequired   bool      `json:"lunch_required" yaml:"lunch_required"`
	ClampEarlyStart bool      `json:"clamp_early_start" yaml:"clamp_early_start"`
	ClampLateEnd    bool      `json:"clamp_late_end" yaml:"clamp_late_end"`
}

// Validate checks the policy against the default lunch it may need.
func (p ShiftPolicy) Validate(defaultLunchMinutes int) error {
	if p.Enabled && p.End <= p.Start {
		return &ConfigError{Field: "shift.end", Reason: fmt.Sprintf("end %s must be after start %s", p.End, p.Start)}
	}
	if p.LunchRequired && defaultLunchMinutes <= 0 {
		return &ConfigError{Field: "default_lunch_minutes", Reason: "required when a shift requires lunch"}
	}
	return nil
}

// WeeklyShiftPolicy holds one policy per weekday, indexed by time.Weekday.
type WeeklyShiftPolicy [7]ShiftPolicy

// DefaultWeeklyShiftPolicy is 08:00-17:00 Monday to Friday.
func DefaultWeeklyShiftPolicy() WeeklyShiftPolicy {
	var w WeeklyShiftPolicy
	for d := time.Sunday; d <= time.Saturday; d++ {
		w[d] = ShiftPolicy{
			Start:           MustTimeOfDay("08:00"),
			End:             MustTimeOfDay("17:00"),
			Enabled:         d != time.Saturday && d != time.Sunday,
			ClampEarlyStart: true,
			ClampLateEnd:    true,
		}
	}
	return w
}

// For returns the policy of the weekday of day.
func (w WeeklyShiftPolicy) For(day time.Time) ShiftPolicy {
	return w[day.Weekday()]
}

// EnabledWeekdays lists the weekdays with scheduled work.
func (w WeeklyShiftPolicy) EnabledWeekdays() []time.Weekday {
	var days []time.Weekday
	for d, p := range w {
		if p.Enabled {
			days = append(days, time.Weekday(d))
		}
	}
	return days
}

func (w WeeklyShiftPolicy) Validate(defaultLunchMinutes int) error {
	for d, p := range w {
		if err := p.Validate(defaultLunchMinutes); err != nil {
			if ce, ok := err.(*ConfigError); ok {
				ce.Field = strings.ToLower(time.Weekday(d).String()) + "." + ce.Field
			}
			return err
		}
	}
	return nil
}

// RawInterval is a day's punches before policy is applied.
type RawInterval struct {
	ClockIn       time.Time
	ClockOut      time.Time
	LunchMinutes  float64
	UnpaidMinutes float64
	LunchBreaks   int
}

// EvaluateShift applies shift clamping, lunch and unpaid deductions and rounding,
// returning the adjusted paid minutes.
func EvaluateShift(raw RawInterval, policy ShiftPolicy, defaultLunchMinutes, roundingIncrementMinutes int) (float64, error) {
	if roundingIncrementMinutes < 0 {
		return 0, &ConfigError{Field: "rounding_increment_minutes", Reason: "must not be negative"}
	}
	if err := policy.Validate(defaultLunchMinutes); err != nil {
		return 0, err
	}
	if raw.ClockOut.Before(raw.ClockIn) {
		return 0, fmt.Errorf("%w: clock out %s before clock in %s", ErrInconsistentSequence,
			raw.ClockOut.Format(time.RFC3339), raw.ClockIn.Format(time.RFC3339))
	}

	start, end := raw.ClockIn, raw.ClockOut
	if policy.Enabled {
		shiftStart := policy.Start.On(raw.ClockIn)
		shiftEnd := policy.End.On(raw.ClockIn)
		if policy.ClampEarlyStart && start.Before(shiftStart) {
			start = shiftStart
		}
		if policy.ClampLateEnd && end.After(shiftEnd) {
			end = shiftEnd
		}
	}

	worked := 0.0
	if end.After(start) {
		worked = end.Sub(start).Minutes()
	}

	return payable(worked, raw.LunchMinutes, raw.UnpaidMinutes, raw.LunchBreaks, policy, defaultLunchMinutes, roundingIncrementMinutes), nil
}

// payable deducts breaks from worked minutes and rounds. A required lunch that
// was never punched costs the default lunch instead.
func payable(worked, lunch, unpaid float64, lunchBreaks int, policy ShiftPolicy, defaultLunchMinutes, roundingIncrementMinutes int) float64 {
	if policy.LunchRequired && lunchBreaks == 0 {
		lunch = float64(defaultLunchMinutes)
	}
	paid := math.Max(0, worked-lunch-unpaid)
	return RoundHalfUp(paid, roundingIncrementMinutes)
}

// RoundHalfUp rounds minutes to the nearest increment; exact halves round up.
// An increment of zero or less leaves the value untouched.
func RoundHalfUp(minutes float64, increment int) float64 {
	if increment <= 0 {
		return minutes
	}
	inc := float64(increment)
	// the epsilon absorbs float noise from duration arithmetic at exact halves
	return math.Floor(minutes/inc+0.5+1e-9) * inc
}
