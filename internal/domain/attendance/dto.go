package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
)

type CloseOutResult struct {
	Date      string `json:"date"`
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
}

type ExcuseRequest struct {
	EmployeeID string  `json:"-"`
	Date       string  `json:"-"`
	Reason     *string `json:"reason,omitempty"`
}

func (r *ExcuseRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}
	if r.Reason != nil && len(*r.Reason) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must be at most 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DailyRecordResponse struct {
	EmployeeID     string  `json:"employee_id"`
	Date           string  `json:"date"`
	Status         string  `json:"status"`
	MinutesLate    int     `json:"minutes_late"`
	ScheduledStart *string `json:"scheduled_start,omitempty"`
	CheckIn        *string `json:"check_in,omitempty"`
	ExcuseReason   *string `json:"excuse_reason,omitempty"`
	ClosedAt       string  `json:"closed_at"`
}

func NewDailyRecordResponse(r DailyRecord) DailyRecordResponse {
	return DailyRecordResponse{
		EmployeeID:     r.EmployeeID,
		Date:           r.Date.Format(engine.DateLayout),
		Status:         string(r.Status),
		MinutesLate:    r.MinutesLate,
		ScheduledStart: formatTime(r.ScheduledStart),
		CheckIn:        formatTime(r.CheckIn),
		ExcuseReason:   r.ExcuseReason,
		ClosedAt:       r.ClosedAt.Format(time.RFC3339),
	}
}

type MonthlySummaryResponse struct {
	EmployeeID    string                 `json:"employee_id"`
	Year          int                    `json:"year"`
	Month         int                    `json:"month"`
	ScheduledDays int                    `json:"scheduled_days"`
	Tally         engine.AttendanceTally `json:"tally"`
	HoursWorked   float64                `json:"hours_worked"`
	Goal          *GoalResponse          `json:"goal,omitempty"`

	// Ambiguous is set when the tally satisfies more than one goal.
	Ambiguous      bool     `json:"ambiguous"`
	MatchedGoalIDs []string `json:"matched_goal_ids,omitempty"`
	CalculatedAt   string   `json:"calculated_at"`
}

func NewMonthlySummaryResponse(s MonthlySummary, goal *engine.AttendanceGoal) MonthlySummaryResponse {
	resp := MonthlySummaryResponse{
		EmployeeID:     s.EmployeeID,
		Year:           s.Year,
		Month:          int(s.Month),
		ScheduledDays:  s.ScheduledDays,
		Tally:          s.Tally,
		HoursWorked:    s.HoursWorked,
		Ambiguous:      s.Ambiguous(),
		MatchedGoalIDs: s.MatchedGoalIDs,
		CalculatedAt:   s.CalculatedAt.Format(time.RFC3339),
	}
	if goal != nil {
		g := NewGoalResponse(*goal)
		resp.Goal = &g
	} else if s.GoalID != nil && s.GoalName != nil && s.GoalKind != nil {
		resp.Goal = &GoalResponse{ID: *s.GoalID, Name: *s.GoalName, Kind: string(*s.GoalKind)}
	}
	return resp
}

type GoalRequest struct {
	Name          string  `json:"name"`
	Kind          string  `json:"kind"`
	MaxDaysMissed int     `json:"max_days_missed"`
	MaxDaysLate   int     `json:"max_days_late"`
	DisplayOrder  int     `json:"display_order"`
	Description   *string `json:"description,omitempty"`
	Icon          *string `json:"icon,omitempty"`
	Color         *string `json:"color,omitempty"`
	Active        *bool   `json:"active,omitempty"`
}

func (r *GoalRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if len(r.Name) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must be at most 100 characters",
		})
	}
	if !validator.IsInSlice(r.Kind, []string{string(engine.GoalPositive), string(engine.GoalNegative)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "kind",
			Message: "kind must be positive or negative",
		})
	}
	if r.MaxDaysMissed < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "max_days_missed",
			Message: "max_days_missed cannot be negative",
		})
	}
	if r.MaxDaysLate < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "max_days_late",
			Message: "max_days_late cannot be negative",
		})
	}
	if r.Color != nil && !validator.IsValidHexColor(*r.Color) {
		errs = append(errs, validator.ValidationError{
			Field:   "color",
			Message: "color must be a hex color like #22c55e",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToGoal builds the engine goal; Active defaults to true.
func (r *GoalRequest) ToGoal(id string) engine.AttendanceGoal {
	g := engine.AttendanceGoal{
		ID:            id,
		Name:          strings.TrimSpace(r.Name),
		Kind:          engine.GoalKind(r.Kind),
		MaxDaysMissed: r.MaxDaysMissed,
		MaxDaysLate:   r.MaxDaysLate,
		DisplayOrder:  r.DisplayOrder,
		Active:        true,
	}
	if r.Description != nil {
		g.Description = *r.Description
	}
	if r.Icon != nil {
		g.Icon = *r.Icon
	}
	if r.Color != nil {
		g.Color = *r.Color
	}
	if r.Active != nil {
		g.Active = *r.Active
	}
	return g
}

type GoalResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Kind          string `json:"kind"`
	MaxDaysMissed int    `json:"max_days_missed"`
	MaxDaysLate   int    `json:"max_days_late"`
	DisplayOrder  int    `json:"display_order"`
	Description   string `json:"description,omitempty"`
	Icon          string `json:"icon,omitempty"`
	Color         string `json:"color,omitempty"`
	Active        bool   `json:"active"`
}

func NewGoalResponse(g engine.AttendanceGoal) GoalResponse {
	return GoalResponse{
		ID:            g.ID,
		Name:          g.Name,
		Kind:          string(g.Kind),
		MaxDaysMissed: g.MaxDaysMissed,
		MaxDaysLate:   g.MaxDaysLate,
		DisplayOrder:  g.DisplayOrder,
		Description:   g.Description,
		Icon:          g.Icon,
		Color:         g.Color,
		Active:        g.Active,
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
