package attendance

import (
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
)

// DailyRecord is the closed-out attendance status of one employee-day.
type DailyRecord struct {
	EmployeeID     string
	Date           time.Time
	Status         engine.AttendanceStatus
	MinutesLate    int
	ScheduledStart *time.Time
	CheckIn        *time.Time
	ExcuseReason   *string
	ExcusedBy      *string
	ClosedAt       time.Time
}

func (r DailyRecord) Classification() engine.Classification {
	return engine.Classification{Date: r.Date, Status: r.Status, MinutesLate: r.MinutesLate}
}

// MonthlySummary is one employee's attendance tally and goal for a month.
type MonthlySummary struct {
	EmployeeID     string
	Year           int
	Month          time.Month
	ScheduledDays  int
	Tally          engine.AttendanceTally
	HoursWorked    float64
	GoalID         *string
	GoalName       *string
	GoalKind       *engine.GoalKind
	MatchedGoalIDs []string
	CalculatedAt   time.Time
}

// Ambiguous reports whether more than one goal matched the tally.
func (s MonthlySummary) Ambiguous() bool {
	return len(s.MatchedGoalIDs) > 1
}
