package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/export"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const (
	DefaultPeriodCount = 4
	MaxPeriodCount     = 26
)

// ========================================
// HOURS REPORT
// ========================================

type HoursReportRequest struct {
	Range         string  `json:"range"`
	SelectedMonth *string `json:"month,omitempty"` // YYYY-MM, only for select-month
	EmployeeID    *string `json:"employee_id,omitempty"`
}

func (r *HoursReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Range == "" {
		r.Range = string(engine.RangeCurrentMonth)
	}
	if !validator.IsInSlice(r.Range, []string{
		string(engine.RangeCurrentMonth),
		string(engine.RangeLastMonth),
		string(engine.RangeSelectMonth),
		string(engine.RangeCurrentYear),
		string(engine.RangeLastYear),
	}) {
		errs = append(errs, validator.ValidationError{
			Field:   "range",
			Message: "range must be one of current-month, last-month, select-month, current-year, last-year",
		})
	}
	if r.Range == string(engine.RangeSelectMonth) {
		if r.SelectedMonth == nil {
			errs = append(errs, validator.ValidationError{
				Field:   "month",
				Message: "month is required for select-month",
			})
		} else if _, err := time.Parse("2006-01", *r.SelectedMonth); err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "month",
				Message: "month must be in YYYY-MM format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Selected returns the parsed select-month value, or nil.
func (r *HoursReportRequest) Selected(loc *time.Location) *time.Time {
	if r.SelectedMonth == nil {
		return nil
	}
	t, err := time.ParseInLocation("2006-01", *r.SelectedMonth, loc)
	if err != nil {
		return nil
	}
	return &t
}

// EmployeeHours is one employee's hours over a report window, in hours
// rounded to two decimal places.
type EmployeeHours struct {
	EmployeeID        string          `json:"employee_id"`
	EmployeeCode      string          `json:"employee_code"`
	FullName          string          `json:"full_name"`
	TotalHours        decimal.Decimal `json:"total_hours"`
	LunchHours        decimal.Decimal `json:"lunch_hours"`
	UnpaidHours       decimal.Decimal `json:"unpaid_hours"`
	PaidHours         decimal.Decimal `json:"paid_hours"`
	AdjustedPaidHours decimal.Decimal `json:"adjusted_paid_hours"`
	Sessions          int             `json:"sessions"`
	Incomplete        bool            `json:"incomplete"`
}

// Hours rounds a float hour amount for reporting.
func Hours(h float64) decimal.Decimal {
	return decimal.NewFromFloat(h).Round(2)
}

// Add sums two rows, keeping the identity of e.
func (e EmployeeHours) Add(o EmployeeHours) EmployeeHours {
	e.TotalHours = e.TotalHours.Add(o.TotalHours)
	e.LunchHours = e.LunchHours.Add(o.LunchHours)
	e.UnpaidHours = e.UnpaidHours.Add(o.UnpaidHours)
	e.PaidHours = e.PaidHours.Add(o.PaidHours)
	e.AdjustedPaidHours = e.AdjustedPaidHours.Add(o.AdjustedPaidHours)
	e.Sessions += o.Sessions
	e.Incomplete = e.Incomplete || o.Incomplete
	return e
}

type HoursReport struct {
	Range       string          `json:"range"`
	Label       string          `json:"label"`
	PeriodStart string          `json:"period_start"`
	PeriodEnd   string          `json:"period_end"`
	GeneratedAt string          `json:"generated_at"`
	Employees   []EmployeeHours `json:"employees"`
	Totals      EmployeeHours   `json:"totals"`
}

// ========================================
// PAY PERIOD REPORT
// ========================================

type PayPeriodReportRequest struct {
	Count      int     `json:"count"`
	EmployeeID *string `json:"employee_id,omitempty"`
}

func (r *PayPeriodReportRequest) Validate() error {
	if r.Count == 0 {
		r.Count = DefaultPeriodCount
	}
	if r.Count < 1 || r.Count > MaxPeriodCount {
		return validator.ValidationErrors{{
			Field:   "count",
			Message: fmt.Sprintf("count must be between 1 and %d", MaxPeriodCount),
		}}
	}
	return nil
}

type PayPeriodHours struct {
	Number    int             `json:"number"`
	Start     string          `json:"start"`
	End       string          `json:"end"`
	Label     string          `json:"label"`
	Employees []EmployeeHours `json:"employees"`
	Totals    EmployeeHours   `json:"totals"`
}

type PayPeriodReport struct {
	GeneratedAt string           `json:"generated_at"`
	Periods     []PayPeriodHours `json:"periods"`
}

// ========================================
// EXPORT
// ========================================

var hoursHeader = []string{
	"Employee Code", "Employee", "Total Hours", "Lunch Hours", "Unpaid Hours",
	"Paid Hours", "Adjusted Paid Hours", "Sessions", "Incomplete",
}

func hoursRow(e EmployeeHours) []string {
	return []string{
		e.EmployeeCode,
		e.FullName,
		e.TotalHours.StringFixed(2),
		e.LunchHours.StringFixed(2),
		e.UnpaidHours.StringFixed(2),
		e.PaidHours.StringFixed(2),
		e.AdjustedPaidHours.StringFixed(2),
		strconv.Itoa(e.Sessions),
		strconv.FormatBool(e.Incomplete),
	}
}

func (r HoursReport) Sheets() []export.Sheet {
	sheet := export.Sheet{
		Name:   "Hours",
		Title:  "Worked Hours: " + r.Label,
		Header: hoursHeader,
	}
	for _, e := range r.Employees {
		sheet.Rows = append(sheet.Rows, hoursRow(e))
	}
	totals := r.Totals
	totals.FullName = "Total"
	sheet.Footer = hoursRow(totals)
	return []export.Sheet{sheet}
}

func (r PayPeriodReport) Sheets() []export.Sheet {
	sheets := make([]export.Sheet, 0, len(r.Periods))
	for _, p := range r.Periods {
		sheet := export.Sheet{
			Name:   fmt.Sprintf("Period %d", p.Number),
			Title:  "Pay Period " + p.Label,
			Header: hoursHeader,
		}
		for _, e := range p.Employees {
			sheet.Rows = append(sheet.Rows, hoursRow(e))
		}
		totals := p.Totals
		totals.FullName = "Total"
		sheet.Footer = hoursRow(totals)
		sheets = append(sheets, sheet)
	}
	return sheets
}
