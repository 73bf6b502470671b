package engine

import "time"

// AttendanceStatus is the classification of one day.
type AttendanceStatus string

const (
	StatusUnscheduled AttendanceStatus = "unscheduled"
	StatusPresent     AttendanceStatus = "present"
	StatusLate        AttendanceStatus = "late"
	StatusMissed      AttendanceStatus = "missed"
	StatusExcused     AttendanceStatus = "excused"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusUnscheduled, StatusPresent, StatusLate, StatusMissed, StatusExcused:
		return true
	}
	return false
}

// Terminal reports whether the status closes the day.
func (s AttendanceStatus) Terminal() bool {
	return s == StatusPresent || s == StatusLate || s == StatusMissed || s == StatusExcused
}

// CanTransition allows Unscheduled to move to any terminal status, and nothing
// to move out of a terminal one.
func CanTransition(from, to AttendanceStatus) bool {
	if from.Terminal() {
		return false
	}
	return to.Terminal()
}

// LateBasis selects what minutes late are measured from.
type LateBasis string

const (
	// LateFromThreshold counts minutes past scheduled start plus grace.
	LateFromThreshold LateBasis = "threshold"
	// LateFromScheduledStart counts minutes past the scheduled start itself.
	LateFromScheduledStart LateBasis = "scheduled_start"
)

// ClassifierRules are the grace buffer and lateness basis.
type ClassifierRules struct {
	Grace    time.Duration
	LateFrom LateBasis
}

// DayAttendance is one day's input to Classify.
type DayAttendance struct {
	Date           time.Time
	Scheduled      bool
	ScheduledStart time.Time
	CheckIn        *time.Time
	Excused        bool
}

// Classification is the result for one day.
type Classification struct {
	Date        time.Time        `json:"date"`
	Status      AttendanceStatus `json:"status"`
	MinutesLate int              `json:"minutes_late"`
}

// Classify scores a day's check-in against its scheduled start.
func Classify(day DayAttendance, rules ClassifierRules) Classification {
	c := Classification{Date: day.Date, Status: StatusUnscheduled}
	if !day.Scheduled {
		return c
	}
	if day.Excused {
		c.Status = StatusExcused
		return c
	}
	if day.CheckIn == nil {
		c.Status = StatusMissed
		return c
	}

	threshold := day.ScheduledStart.Add(rules.Grace)
	if !day.CheckIn.After(threshold) {
		c.Status = StatusPresent
		return c
	}

	from := threshold
	if rules.LateFrom == LateFromScheduledStart {
		from = day.ScheduledStart
	}
	c.Status = StatusLate
	c.MinutesLate = int(day.CheckIn.Sub(from).Minutes())
	return c
}

// ScheduledDay builds the Classify input for a calendar day from the weekly policy.
func ScheduledDay(date time.Time, w WeeklyShiftPolicy) DayAttendance {
	p := w.For(date)
	day := DayAttendance{Date: civil(date), Scheduled: p.Enabled}
	if p.Enabled {
		day.ScheduledStart = p.Start.On(date)
	}
	return day
}

// AttendanceTally aggregates classifications over a range, usually a month.
type AttendanceTally struct {
	DaysPresent      int `json:"days_present"`
	DaysLate         int `json:"days_late"`
	DaysMissed       int `json:"days_missed"`
	DaysExcused      int `json:"days_excused"`
	TotalMinutesLate int `json:"total_minutes_late"`
}

// Tally counts each status; unscheduled days are ignored.
func Tally(days []Classification) AttendanceTally {
	var t AttendanceTally
	for _, d := range days {
		switch d.Status {
		case StatusPresent:
			t.DaysPresent++
		case StatusLate:
			t.DaysLate++
			t.TotalMinutesLate += d.MinutesLate
		case StatusMissed:
			t.DaysMissed++
		case StatusExcused:
			t.DaysExcused++
		}
	}
	return t
}
