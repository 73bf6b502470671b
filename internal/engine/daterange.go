package engine

import (
	"fmt"
	"time"
)

// DateRangeOption is one of the report range presets.
type DateRangeOption string

const (
	RangeCurrentMonth DateRangeOption = "current-month"
	RangeLastMonth    DateRangeOption = "last-month"
	RangeSelectMonth  DateRangeOption = "select-month"
	RangeCurrentYear  DateRangeOption = "current-year"
	RangeLastYear     DateRangeOption = "last-year"
)

// DateRange is an inclusive range of calendar days with a display label.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

// Until is the exclusive upper bound of the range.
func (r DateRange) Until() time.Time {
	return r.End.AddDate(0, 0, 1)
}

// DateRangeFor resolves a preset against now. select-month uses selected and
// falls back to the current month when selected is nil; unknown options do the same.
func DateRangeFor(opt DateRangeOption, now time.Time, selected *time.Time) DateRange {
	y, m, _ := now.Date()
	loc := now.Location()

	switch opt {
	case RangeLastMonth:
		start := time.Date(y, m-1, 1, 0, 0, 0, 0, loc)
		return monthRange(start, "")
	case RangeSelectMonth:
		if selected == nil {
			return DateRangeFor(RangeCurrentMonth, now, nil)
		}
		sy, sm, _ := selected.Date()
		return monthRange(time.Date(sy, sm, 1, 0, 0, 0, 0, selected.Location()), "")
	case RangeCurrentYear:
		return DateRange{
			Start: time.Date(y, time.January, 1, 0, 0, 0, 0, loc),
			End:   time.Date(y, time.December, 31, 0, 0, 0, 0, loc),
			Label: fmt.Sprintf("%d (Year to Date)", y),
		}
	case RangeLastYear:
		return DateRange{
			Start: time.Date(y-1, time.January, 1, 0, 0, 0, 0, loc),
			End:   time.Date(y-1, time.December, 31, 0, 0, 0, 0, loc),
			Label: fmt.Sprintf("%d", y-1),
		}
	default:
		return monthRange(time.Date(y, m, 1, 0, 0, 0, 0, loc), " (Month to Date)")
	}
}

func monthRange(first time.Time, suffix string) DateRange {
	return DateRange{
		Start: first,
		End:   first.AddDate(0, 1, -1),
		Label: first.Format("January 2006") + suffix,
	}
}

// MonthRange returns the whole calendar month of year/month.
func MonthRange(year int, month time.Month, loc *time.Location) DateRange {
	if loc == nil {
		loc = time.UTC
	}
	return monthRange(time.Date(year, month, 1, 0, 0, 0, 0, loc), "")
}
