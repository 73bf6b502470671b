package engine

import (
	"fmt"
	"time"
)

// Policy is the configuration snapshot an engine computation runs against.
// It is loaded once per computation and never read again mid-way.
type Policy struct {
	Shifts                   WeeklyShiftPolicy
	PayPeriod                PayPeriodConfig
	Goals                    []AttendanceGoal
	RoundingIncrementMinutes int
	DefaultLunchMinutes      int
	GraceMinutes             int
	LateFrom                 LateBasis
	VacationAccrualRate      float64
	VacationAllotment        float64
	Location                 *time.Location
}

// DefaultPolicy mirrors the out-of-the-box system settings.
func DefaultPolicy() Policy {
	anchor := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)
	return Policy{
		Shifts:                   DefaultWeeklyShiftPolicy(),
		PayPeriod:                PayPeriodConfig{AnchorDate: anchor, PeriodLengthDays: 14},
		RoundingIncrementMinutes: 15,
		DefaultLunchMinutes:      60,
		GraceMinutes:             15,
		LateFrom:                 LateFromThreshold,
		VacationAccrualRate:      DefaultAccrualRate,
		VacationAllotment:        DefaultVacationAllotment,
		Location:                 time.UTC,
	}
}

func (p Policy) Validate() error {
	if err := p.Shifts.Validate(p.DefaultLunchMinutes); err != nil {
		return err
	}
	if err := p.PayPeriod.Validate(); err != nil {
		return err
	}
	if p.RoundingIncrementMinutes < 0 {
		return &ConfigError{Field: "rounding_increment_minutes", Reason: "must not be negative"}
	}
	if p.DefaultLunchMinutes < 0 {
		return &ConfigError{Field: "default_lunch_minutes", Reason: "must not be negative"}
	}
	if p.GraceMinutes < 0 {
		return &ConfigError{Field: "grace_minutes", Reason: "must not be negative"}
	}
	if p.LateFrom != "" && p.LateFrom != LateFromThreshold && p.LateFrom != LateFromScheduledStart {
		return &ConfigError{Field: "late_from", Reason: fmt.Sprintf("unknown basis %q", p.LateFrom)}
	}
	if p.VacationAccrualRate <= 0 {
		return &ConfigError{Field: "vacation_accrual_rate", Reason: "must be positive"}
	}
	for _, g := range p.Goals {
		if err := g.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Loc returns the policy location, UTC when unset.
func (p Policy) Loc() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// ClassifierRules derives the attendance rules from the policy.
func (p Policy) ClassifierRules() ClassifierRules {
	basis := p.LateFrom
	if basis == "" {
		basis = LateFromThreshold
	}
	return ClassifierRules{Grace: time.Duration(p.GraceMinutes) * time.Minute, LateFrom: basis}
}

// DayResult is one day's hours before and after shift policy.
type DayResult struct {
	Date                string            `json:"date"`
	Hours               WorkedHoursResult `json:"hours"`
	AdjustedPaidMinutes float64           `json:"adjusted_paid_minutes"`
	Incomplete          bool              `json:"incomplete"`
}

// AdjustedPaidHours is AdjustedPaidMinutes in hours.
func (d DayResult) AdjustedPaidHours() float64 {
	return d.AdjustedPaidMinutes / 60
}

// EvaluateDay reduces one day's events and applies that weekday's shift policy.
// Each closed session and each of its breaks is clamped to the shift window on
// its own, so time off the clock between sessions is never paid.
func EvaluateDay(events []TimeEvent, p Policy) (DayResult, error) {
	hours, err := Reduce(events)
	if err != nil {
		return DayResult{}, err
	}
	res := DayResult{Hours: hours, Incomplete: hours.Incomplete}
	if len(events) > 0 {
		res.Date = events[0].Timestamp.In(p.Loc()).Format(DateLayout)
	}
	if hours.Sessions == 0 || hours.FirstClockIn == nil {
		return res, nil
	}
	if p.RoundingIncrementMinutes < 0 {
		return DayResult{}, &ConfigError{Field: "rounding_increment_minutes", Reason: "must not be negative"}
	}

	in := hours.FirstClockIn.In(p.Loc())
	shift := p.Shifts.For(in)
	if err := shift.Validate(p.DefaultLunchMinutes); err != nil {
		return DayResult{}, err
	}

	var lo, hi time.Time
	if shift.Enabled {
		if shift.ClampEarlyStart {
			lo = shift.Start.On(in)
		}
		if shift.ClampLateEnd {
			hi = shift.End.On(in)
		}
	}

	sessions, err := closedSessions(events)
	if err != nil {
		return DayResult{}, err
	}
	var worked, lunch, unpaid float64
	for _, s := range sessions {
		worked += s.minutesWithin(lo, hi)
		for _, b := range s.lunches {
			lunch += b.minutesWithin(lo, hi)
		}
		for _, b := range s.unpaids {
			unpaid += b.minutesWithin(lo, hi)
		}
	}
	res.AdjustedPaidMinutes = payable(worked, lunch, unpaid, hours.LunchBreaks, shift, p.DefaultLunchMinutes, p.RoundingIncrementMinutes)
	return res, nil
}

type span struct {
	start, end time.Time
}

// minutesWithin is the length of s inside [lo, hi]. A zero bound is open.
func (s span) minutesWithin(lo, hi time.Time) float64 {
	start, end := s.start, s.end
	if !lo.IsZero() && start.Before(lo) {
		start = lo
	}
	if !hi.IsZero() && end.After(hi) {
		end = hi
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start).Minutes()
}

type workSession struct {
	span
	lunches []span
	unpaids []span
}

// closedSessions lists the closed sessions of events with their breaks. An open
// trailing session is left out, as in Reduce.
func closedSessions(events []TimeEvent) ([]workSession, error) {
	var (
		st      foldState
		out     []workSession
		pending workSession
	)
	for i, ev := range events {
		closed, err := st.apply(i, ev)
		if err != nil {
			return nil, err
		}
		if closed == nil {
			continue
		}
		iv := span{start: closed.start, end: closed.end}
		switch closed.kind {
		case ClockIn:
			pending.span = iv
			out = append(out, pending)
			pending = workSession{}
		case LunchOut:
			pending.lunches = append(pending.lunches, iv)
		case UnpaidOut:
			pending.unpaids = append(pending.unpaids, iv)
		}
	}
	return out, nil
}

// SplitByDay groups a time-ordered event stream by local calendar day of each
// session's clock in, so that an overnight session stays on its start day.
func SplitByDay(events []TimeEvent, loc *time.Location) map[string][]TimeEvent {
	if loc == nil {
		loc = time.UTC
	}
	out := make(map[string][]TimeEvent)
	day := ""
	for _, ev := range events {
		if ev.Kind == ClockIn || day == "" {
			day = ev.Timestamp.In(loc).Format(DateLayout)
		}
		out[day] = append(out[day], ev)
	}
	return out
}

// ClipSessions keeps the sessions whose clock in falls in [from, to). Events
// before the first such clock in belong to an earlier session and are dropped,
// as is everything from the first clock in at or after to.
func ClipSessions(events []TimeEvent, from, to time.Time) []TimeEvent {
	start := -1
	end := len(events)
	for i, ev := range events {
		if ev.Kind != ClockIn {
			continue
		}
		if start < 0 && !ev.Timestamp.Before(from) && ev.Timestamp.Before(to) {
			start = i
		}
		if !ev.Timestamp.Before(to) {
			end = i
			break
		}
	}
	if start < 0 || start >= end {
		return nil
	}
	return events[start:end]
}
