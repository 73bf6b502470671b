package engine

import (
	"fmt"
	"sort"
)

// GoalKind says whether a goal rewards or flags attendance.
type GoalKind string

const (
	GoalPositive GoalKind = "positive"
	GoalNegative GoalKind = "negative"
)

// AttendanceGoal is a configured achievement threshold.
type AttendanceGoal struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Kind          GoalKind `json:"kind" yaml:"kind"`
	MaxDaysMissed int      `json:"max_days_missed" yaml:"max_days_missed"`
	MaxDaysLate   int      `json:"max_days_late" yaml:"max_days_late"`
	DisplayOrder  int      `json:"display_order" yaml:"display_order"`
	Description   string   `json:"description,omitempty" yaml:"description"`
	Icon          string   `json:"icon,omitempty" yaml:"icon"`
	Color         string   `json:"color,omitempty" yaml:"color"`
	Active        bool     `json:"active" yaml:"active"`
}

func (g AttendanceGoal) Validate() error {
	if g.Kind != GoalPositive && g.Kind != GoalNegative {
		return &ConfigError{Field: "goal.kind", Reason: fmt.Sprintf("unknown kind %q", g.Kind)}
	}
	if g.MaxDaysMissed < 0 || g.MaxDaysLate < 0 {
		return &ConfigError{Field: "goal.thresholds", Reason: "must not be negative"}
	}
	return nil
}

// Matches applies the goal's threshold rule to a tally.
func (g AttendanceGoal) Matches(t AttendanceTally) bool {
	switch g.Kind {
	case GoalPositive:
		return t.DaysMissed <= g.MaxDaysMissed && t.DaysLate <= g.MaxDaysLate
	case GoalNegative:
		return t.DaysMissed >= g.MaxDaysMissed || t.DaysLate >= g.MaxDaysLate
	}
	return false
}

// OrderGoals returns the active goals sorted by DisplayOrder. Equal orders keep
// their configured position.
func OrderGoals(goals []AttendanceGoal) []AttendanceGoal {
	out := make([]AttendanceGoal, 0, len(goals))
	for _, g := range goals {
		if g.Active {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	return out
}

// MatchGoal returns the first active goal, in display order, that matches.
// The bool is false when there is no achievement.
func MatchGoal(goals []AttendanceGoal, t AttendanceTally) (AttendanceGoal, bool) {
	for _, g := range OrderGoals(goals) {
		if g.Matches(t) {
			return g, true
		}
	}
	return AttendanceGoal{}, false
}

// MatchingGoals returns every active goal that matches, in display order.
// More than one entry means the configured thresholds overlap for this tally;
// MatchGoal still picks the first.
func MatchingGoals(goals []AttendanceGoal, t AttendanceTally) []AttendanceGoal {
	var out []AttendanceGoal
	for _, g := range OrderGoals(goals) {
		if g.Matches(t) {
			out = append(out, g)
		}
	}
	return out
}
