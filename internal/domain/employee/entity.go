package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID                    string
	UserID                *string
	EmployeeCode          string
	FullName              string
	Email                 string
	HireDate              time.Time
	IsActive              bool
	VacationAllottedHours decimal.Decimal
	VacationUsedHours     decimal.Decimal
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
