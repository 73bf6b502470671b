package engine

import (
	"fmt"
	"math"
	"time"
)

// ScheduleTemplate is a bulk-assign preset for a week of shifts.
type ScheduleTemplate string

const (
	// TemplateEveryDayFull schedules all seven days using each day's configured shift.
	TemplateEveryDayFull ScheduleTemplate = "every_day_full"
	// TemplateEveryDay8Hours schedules all seven days, eight paid hours plus lunch from shift start.
	TemplateEveryDay8Hours ScheduleTemplate = "every_day_8hours"
	// TemplateWeekdaysOnly schedules Monday to Friday and clears the weekend.
	TemplateWeekdaysOnly ScheduleTemplate = "weekdays_only"
)

// lunchDeductionThreshold is the scheduled span above which a lunch is assumed.
const lunchDeductionThreshold = 6 * 60

// ApplyTemplate returns base with the template applied. base supplies the start
// and end times of each weekday.
func ApplyTemplate(t ScheduleTemplate, base WeeklyShiftPolicy, defaultLunchMinutes int) (WeeklyShiftPolicy, error) {
	out := base
	for d := time.Sunday; d <= time.Saturday; d++ {
		p := base[d]
		switch t {
		case TemplateEveryDayFull:
			p.Enabled = true
		case TemplateEveryDay8Hours:
			if defaultLunchMinutes < 0 {
				return base, &ConfigError{Field: "default_lunch_minutes", Reason: "must not be negative"}
			}
			end := int(p.Start) + 8*60 + defaultLunchMinutes
			if end >= 24*60 {
				return base, &ConfigError{
					Field:  fmt.Sprintf("%s.start", d),
					Reason: "eight hour shift would run past midnight",
				}
			}
			p.Enabled = true
			p.End = TimeOfDay(end)
		case TemplateWeekdaysOnly:
			p.Enabled = d != time.Saturday && d != time.Sunday
		default:
			return base, &ConfigError{Field: "template", Reason: fmt.Sprintf("unknown template %q", t)}
		}
		out[d] = p
	}
	return out, nil
}

// ScheduledHours is the paid length of a shift. Shifts longer than six hours
// have the default lunch deducted.
func ScheduledHours(p ShiftPolicy, defaultLunchMinutes int) float64 {
	if !p.Enabled || p.End <= p.Start {
		return 0
	}
	minutes := int(p.End - p.Start)
	if minutes > lunchDeductionThreshold {
		minutes -= defaultLunchMinutes
	}
	return math.Max(0, float64(minutes)/60)
}

// WeeklyScheduledHours sums ScheduledHours over the week.
func WeeklyScheduledHours(w WeeklyShiftPolicy, defaultLunchMinutes int) float64 {
	total := 0.0
	for _, p := range w {
		total += ScheduledHours(p, defaultLunchMinutes)
	}
	return total
}
