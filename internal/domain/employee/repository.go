package employee

import (
	"context"

	"github.com/shopspring/decimal"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByUserID(ctx context.Context, userID string) (Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, int64, error)
	// ListActiveIDs returns the IDs of employees included in batch jobs.
	ListActiveIDs(ctx context.Context) ([]string, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	UpdateVacation(ctx context.Context, id string, allotted, used decimal.Decimal) error
}
