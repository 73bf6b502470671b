package employee

import (
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type EmployeeFilter struct {
	Search   *string `json:"search,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
	Page     int     `json:"page"`
	Limit    int     `json:"limit"`
}

// Normalize clamps paging values to sane defaults.
func (f *EmployeeFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

func (f EmployeeFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type EmployeeResponse struct {
	ID           string  `json:"id"`
	UserID       *string `json:"user_id,omitempty"`
	EmployeeCode string  `json:"employee_code"`
	FullName     string  `json:"full_name"`
	Email        string  `json:"email"`
	HireDate     string  `json:"hire_date"`
	IsActive     bool    `json:"is_active"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type ListEmployeeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Showing    string             `json:"showing"`
	Employees  []EmployeeResponse `json:"employees"`
}

// VacationResponse reports the balance in hours, two decimal places.
type VacationResponse struct {
	EmployeeID     string          `json:"employee_id"`
	HoursWorked    decimal.Decimal `json:"hours_worked"`
	AccrualRate    float64         `json:"accrual_rate"`
	AllottedHours  decimal.Decimal `json:"allotted_hours"`
	AccruedHours   decimal.Decimal `json:"accrued_hours"`
	UsedHours      decimal.Decimal `json:"used_hours"`
	AvailableHours decimal.Decimal `json:"available_hours"`
	RemainingHours decimal.Decimal `json:"remaining_hours"`
}

type UpdateVacationRequest struct {
	EmployeeID    string  `json:"-"`
	AllottedHours *string `json:"allotted_hours,omitempty"`
	UsedHours     *string `json:"used_hours,omitempty"`
}

func (r *UpdateVacationRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.AllottedHours == nil && r.UsedHours == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "allotted_hours",
			Message: "allotted_hours or used_hours is required",
		})
	}
	check := func(field string, v *string) {
		if v == nil {
			return
		}
		d, err := decimal.NewFromString(*v)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: field, Message: field + " must be a decimal number"})
			return
		}
		if d.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field, Message: field + " cannot be negative"})
		}
	}
	check("allotted_hours", r.AllottedHours)
	check("used_hours", r.UsedHours)

	if len(errs) > 0 {
		return errs
	}
	return nil
}
