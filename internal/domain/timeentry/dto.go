package timeentry

import (
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
)

type PunchRequest struct {
	Kind  engine.EventKind `json:"-"`
	Notes *string          `json:"notes,omitempty"`

	// EmployeeID lets an admin record a punch for someone else.
	EmployeeID *string `json:"employee_id,omitempty"`

	// Timestamp is only honored for admin corrections; punches use the server clock.
	Timestamp *string `json:"timestamp,omitempty"`
}

func (r *PunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Kind.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "kind",
			Message: "kind must be one of clock_in, clock_out, lunch_out, lunch_in, unpaid_out, unpaid_in",
		})
	}
	if r.Timestamp != nil {
		if _, ok := validator.IsValidDateTime(*r.Timestamp); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "timestamp",
				Message: "timestamp must be RFC3339",
			})
		}
	}
	if r.Notes != nil && len(*r.Notes) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must be at most 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TimeEntryResponse struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	Kind       string  `json:"kind"`
	Timestamp  string  `json:"timestamp"`
	Notes      *string `json:"notes,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

func NewTimeEntryResponse(e TimeEntry) TimeEntryResponse {
	return TimeEntryResponse{
		ID:         e.ID,
		EmployeeID: e.EmployeeID,
		Kind:       string(e.Kind),
		Timestamp:  e.Timestamp.Format(time.RFC3339),
		Notes:      e.Notes,
		CreatedAt:  e.CreatedAt.Format(time.RFC3339),
	}
}

type PunchResponse struct {
	Entry  TimeEntryResponse  `json:"entry"`
	Status engine.ClockStatus `json:"status"`
}

type TodayResponse struct {
	Date   string                   `json:"date"`
	Status engine.ClockStatus       `json:"status"`
	Hours  engine.WorkedHoursResult `json:"hours"`

	// AdjustedPaidHours applies the day's shift policy; zero while a session is open.
	AdjustedPaidHours float64             `json:"adjusted_paid_hours"`
	Entries           []TimeEntryResponse `json:"entries"`
}
