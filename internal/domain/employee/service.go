package employee

import (
	"context"
)

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	// ListEmployees lists employees with filters (admin only)
	ListEmployees(ctx context.Context, filter EmployeeFilter) (ListEmployeeResponse, error)

	// GetEmployee retrieves a single employee by ID (admin or the employee)
	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)

	// GetVacation computes the accrued vacation balance from all worked hours
	GetVacation(ctx context.Context, id string) (VacationResponse, error)

	// UpdateVacation sets the allotment or used hours (admin only)
	UpdateVacation(ctx context.Context, req UpdateVacationRequest) (VacationResponse, error)
}
