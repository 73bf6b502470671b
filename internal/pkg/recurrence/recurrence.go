// Package recurrence expands the weekly shift policy into concrete scheduled
// dates using RFC 5545 recurrence rules.
package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/teambition/rrule-go"
)

var weekdayCodes = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// RuleFor returns the weekly RRULE of the policy's enabled days, or "" when
// no day is enabled.
func RuleFor(w engine.WeeklyShiftPolicy) string {
	var days []string
	for _, d := range w.EnabledWeekdays() {
		days = append(days, weekdayCodes[d])
	}
	if len(days) == 0 {
		return ""
	}
	return "FREQ=WEEKLY;BYDAY=" + strings.Join(days, ",")
}

// Expand returns the occurrences of rule between from and to inclusive, as
// midnight in loc.
func Expand(rule string, from, to time.Time, loc *time.Location) ([]time.Time, error) {
	if rule == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return nil, fmt.Errorf("parse recurrence rule %q: %w", rule, err)
	}
	start := engine.Civil(from.In(loc))
	end := engine.Civil(to.In(loc))
	opt.Dtstart = start

	rr, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("build recurrence rule %q: %w", rule, err)
	}
	set := rrule.Set{}
	set.RRule(rr)

	instances := set.Between(start, end, true)
	days := make([]time.Time, 0, len(instances))
	for _, t := range instances {
		days = append(days, engine.Civil(t.In(loc)))
	}
	return days, nil
}

// ScheduledDays lists the dates in [from, to] on which the policy schedules work.
func ScheduledDays(w engine.WeeklyShiftPolicy, from, to time.Time, loc *time.Location) ([]time.Time, error) {
	if to.Before(from) {
		return nil, nil
	}
	return Expand(RuleFor(w), from, to, loc)
}

// IsScheduled reports whether date falls on a scheduled weekday.
func IsScheduled(w engine.WeeklyShiftPolicy, date time.Time, loc *time.Location) (bool, error) {
	days, err := ScheduledDays(w, date, date, loc)
	if err != nil {
		return false, err
	}
	return len(days) == 1, nil
}
