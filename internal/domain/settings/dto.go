package settings

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
)

// ShiftsByDay keys shifts by lowercase weekday name.
type ShiftsByDay map[string]engine.ShiftPolicy

func NewShiftsByDay(w engine.WeeklyShiftPolicy) ShiftsByDay {
	out := make(ShiftsByDay, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		out[strings.ToLower(d.String())] = w[d]
	}
	return out
}

// Apply overlays the named days onto w.
func (s ShiftsByDay) Apply(w engine.WeeklyShiftPolicy) (engine.WeeklyShiftPolicy, error) {
	for name, p := range s {
		d, ok := ParseWeekday(name)
		if !ok {
			return w, fmt.Errorf("%w: %s", ErrUnknownWeekday, name)
		}
		w[d] = p
	}
	return w, nil
}

func ParseWeekday(name string) (time.Weekday, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == name {
			return d, true
		}
	}
	return 0, false
}

type SettingsResponse struct {
	PayBufferMinutes     int               `json:"pay_buffer_minutes"`
	PayPeriodType        engine.PeriodType `json:"pay_period_type"`
	PayPeriodStartDate   string            `json:"pay_period_start_date"`
	DailyShifts          ShiftsByDay       `json:"daily_shifts"`
	WeeklyScheduledHours float64           `json:"weekly_scheduled_hours"`
	DefaultLunchMinutes  int               `json:"default_lunch_minutes"`
	GraceMinutes         int               `json:"grace_minutes"`
	LateFrom             engine.LateBasis  `json:"late_from"`
	VacationAccrualRate  float64           `json:"vacation_accrual_rate"`
	VacationAllotment    float64           `json:"vacation_allotment"`
	Timezone             string            `json:"timezone"`
	UpdatedAt            *string           `json:"updated_at,omitempty"`
}

func NewSettingsResponse(s Settings) SettingsResponse {
	resp := SettingsResponse{
		PayBufferMinutes:     s.PayBufferMinutes,
		PayPeriodType:        s.PayPeriodType,
		PayPeriodStartDate:   s.PayPeriodStartDate,
		DailyShifts:          NewShiftsByDay(s.Shifts),
		WeeklyScheduledHours: engine.WeeklyScheduledHours(s.Shifts, s.DefaultLunchMinutes),
		DefaultLunchMinutes:  s.DefaultLunchMinutes,
		GraceMinutes:         s.GraceMinutes,
		LateFrom:             s.LateFrom,
		VacationAccrualRate:  s.VacationAccrualRate,
		VacationAllotment:    s.VacationAllotment,
		Timezone:             s.Timezone,
	}
	if !s.UpdatedAt.IsZero() {
		updated := s.UpdatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &updated
	}
	return resp
}

// UpdateSettingsRequest is a partial update; nil fields are left unchanged.
type UpdateSettingsRequest struct {
	PayBufferMinutes    *int        `json:"pay_buffer_minutes,omitempty"`
	PayPeriodType       *string     `json:"pay_period_type,omitempty"`
	PayPeriodStartDate  *string     `json:"pay_period_start_date,omitempty"`
	DailyShifts         ShiftsByDay `json:"daily_shifts,omitempty"`
	DefaultLunchMinutes *int        `json:"default_lunch_minutes,omitempty"`
	GraceMinutes        *int        `json:"grace_minutes,omitempty"`
	LateFrom            *string     `json:"late_from,omitempty"`
	VacationAccrualRate *float64    `json:"vacation_accrual_rate,omitempty"`
	VacationAllotment   *float64    `json:"vacation_allotment,omitempty"`
	Timezone            *string     `json:"timezone,omitempty"`
}

func (r *UpdateSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.PayBufferMinutes != nil && (*r.PayBufferMinutes < 0 || *r.PayBufferMinutes > 60) {
		errs = append(errs, validator.ValidationError{
			Field:   "pay_buffer_minutes",
			Message: "pay_buffer_minutes must be between 0 and 60",
		})
	}
	if r.PayPeriodType != nil {
		if _, err := engine.PeriodType(*r.PayPeriodType).LengthDays(); err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "pay_period_type",
				Message: "pay_period_type must be weekly or biweekly",
			})
		}
	}
	if r.PayPeriodStartDate != nil {
		if _, ok := validator.IsValidDate(*r.PayPeriodStartDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "pay_period_start_date",
				Message: "pay_period_start_date must be in YYYY-MM-DD format",
			})
		}
	}
	for name := range r.DailyShifts {
		if _, ok := ParseWeekday(name); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "daily_shifts." + name,
				Message: "unknown weekday",
			})
		}
	}
	if r.DefaultLunchMinutes != nil && *r.DefaultLunchMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "default_lunch_minutes",
			Message: "default_lunch_minutes cannot be negative",
		})
	}
	if r.GraceMinutes != nil && *r.GraceMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "grace_minutes",
			Message: "grace_minutes cannot be negative",
		})
	}
	if r.LateFrom != nil {
		basis := engine.LateBasis(*r.LateFrom)
		if basis != engine.LateFromThreshold && basis != engine.LateFromScheduledStart {
			errs = append(errs, validator.ValidationError{
				Field:   "late_from",
				Message: "late_from must be threshold or scheduled_start",
			})
		}
	}
	if r.VacationAccrualRate != nil && *r.VacationAccrualRate <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "vacation_accrual_rate",
			Message: "vacation_accrual_rate must be positive",
		})
	}
	if r.VacationAllotment != nil && *r.VacationAllotment < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "vacation_allotment",
			Message: "vacation_allotment cannot be negative",
		})
	}
	if r.Timezone != nil {
		if _, err := time.LoadLocation(*r.Timezone); err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "timezone",
				Message: "timezone must be an IANA zone name",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ApplyTo returns s with the request's fields applied.
func (r *UpdateSettingsRequest) ApplyTo(s Settings) (Settings, error) {
	if r.PayBufferMinutes != nil {
		s.PayBufferMinutes = *r.PayBufferMinutes
	}
	if r.PayPeriodType != nil {
		s.PayPeriodType = engine.PeriodType(*r.PayPeriodType)
	}
	if r.PayPeriodStartDate != nil {
		s.PayPeriodStartDate = *r.PayPeriodStartDate
	}
	if len(r.DailyShifts) > 0 {
		shifts, err := r.DailyShifts.Apply(s.Shifts)
		if err != nil {
			return s, err
		}
		s.Shifts = shifts
	}
	if r.DefaultLunchMinutes != nil {
		s.DefaultLunchMinutes = *r.DefaultLunchMinutes
	}
	if r.GraceMinutes != nil {
		s.GraceMinutes = *r.GraceMinutes
	}
	if r.LateFrom != nil {
		s.LateFrom = engine.LateBasis(*r.LateFrom)
	}
	if r.VacationAccrualRate != nil {
		s.VacationAccrualRate = *r.VacationAccrualRate
	}
	if r.VacationAllotment != nil {
		s.VacationAllotment = *r.VacationAllotment
	}
	if r.Timezone != nil {
		s.Timezone = *r.Timezone
	}
	return s, nil
}

type ApplyTemplateRequest struct {
	Template string `json:"template"`
}

func (r *ApplyTemplateRequest) Validate() error {
	switch engine.ScheduleTemplate(r.Template) {
	case engine.TemplateEveryDayFull, engine.TemplateEveryDay8Hours, engine.TemplateWeekdaysOnly:
		return nil
	}
	return validator.ValidationErrors{{
		Field:   "template",
		Message: "template must be one of every_day_full, every_day_8hours, weekdays_only",
	}}
}
