package engine

import "math"

const (
	// DefaultAccrualRate is hours worked per accrued vacation hour.
	DefaultAccrualRate = 26.0
	// DefaultVacationAllotment is two weeks of eight hour days.
	DefaultVacationAllotment = 80.0
)

// AccruedVacationHours returns whole accrued hours for hoursWorked at one hour
// per rate hours worked.
func AccruedVacationHours(hoursWorked, rate float64) (float64, error) {
	if rate <= 0 {
		return 0, &ConfigError{Field: "vacation_accrual_rate", Reason: "must be positive"}
	}
	if hoursWorked <= 0 {
		return 0, nil
	}
	return math.Floor(hoursWorked / rate), nil
}

// VacationBalance is an employee's vacation position in hours.
type VacationBalance struct {
	Allotted float64 `json:"allotted_hours"`
	Accrued  float64 `json:"accrued_hours"`
	Used     float64 `json:"used_hours"`
}

// Available is accrued minus used; it may go negative when hours were advanced.
func (b VacationBalance) Available() float64 {
	return b.Accrued - b.Used
}

// Remaining is how much of the yearly allotment has not accrued yet.
func (b VacationBalance) Remaining() float64 {
	return math.Max(0, b.Allotted-b.Accrued)
}
