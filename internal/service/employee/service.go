package employee

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/jwt"
	"github.com/shopspring/decimal"
)

type EmployeeServiceImpl struct {
	employeeRepo    employee.EmployeeRepository
	entryRepo       timeentry.TimeEntryRepository
	settingsService settings.SettingsService
	now             func() time.Time
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository, entryRepo timeentry.TimeEntryRepository, settingsService settings.SettingsService) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo:    employeeRepo,
		entryRepo:       entryRepo,
		settingsService: settingsService,
		now:             time.Now,
	}
}

// authorize allows admins and the employee themself.
func authorize(ctx context.Context, employeeID string) error {
	caller, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to extract caller: %w", err)
	}
	if !caller.CanAccessEmployee(employeeID) {
		return employee.ErrUnauthorized
	}
	return nil
}

// Helper function to map Employee to EmployeeResponse
func mapEmployeeToResponse(emp employee.Employee) employee.EmployeeResponse {
	return employee.EmployeeResponse{
		ID:           emp.ID,
		UserID:       emp.UserID,
		EmployeeCode: emp.EmployeeCode,
		FullName:     emp.FullName,
		Email:        emp.Email,
		HireDate:     emp.HireDate.Format(engine.DateLayout),
		IsActive:     emp.IsActive,
		CreatedAt:    emp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    emp.UpdatedAt.Format(time.RFC3339),
	}
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	filter.Normalize()

	employees, total, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		responses = append(responses, mapEmployeeToResponse(emp))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", filter.Offset()+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return employee.ListEmployeeResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Employees:  responses,
	}, nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	if err := authorize(ctx, id); err != nil {
		return employee.EmployeeResponse{}, err
	}
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return mapEmployeeToResponse(emp), nil
}

// GetVacation implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetVacation(ctx context.Context, id string) (employee.VacationResponse, error) {
	if err := authorize(ctx, id); err != nil {
		return employee.VacationResponse{}, err
	}
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.VacationResponse{}, err
	}
	return s.vacation(ctx, emp)
}

func (s *EmployeeServiceImpl) vacation(ctx context.Context, emp employee.Employee) (employee.VacationResponse, error) {
	policy, err := s.settingsService.Policy(ctx)
	if err != nil {
		return employee.VacationResponse{}, err
	}

	entries, err := s.entryRepo.ListByEmployee(ctx, emp.ID, time.Time{}, s.now())
	if err != nil {
		return employee.VacationResponse{}, fmt.Errorf("failed to list time entries: %w", err)
	}
	// Only completed sessions accrue vacation.
	hours, err := engine.Reduce(timeentry.ToEvents(entries))
	if err != nil {
		return employee.VacationResponse{}, err
	}
	accrued, err := engine.AccruedVacationHours(hours.PaidHours, policy.VacationAccrualRate)
	if err != nil {
		return employee.VacationResponse{}, err
	}

	balance := engine.VacationBalance{
		Allotted: emp.VacationAllottedHours.InexactFloat64(),
		Accrued:  accrued,
		Used:     emp.VacationUsedHours.InexactFloat64(),
	}
	return employee.VacationResponse{
		EmployeeID:     emp.ID,
		HoursWorked:    decimal.NewFromFloat(hours.PaidHours).Round(2),
		AccrualRate:    policy.VacationAccrualRate,
		AllottedHours:  emp.VacationAllottedHours.Round(2),
		AccruedHours:   decimal.NewFromFloat(accrued).Round(2),
		UsedHours:      emp.VacationUsedHours.Round(2),
		AvailableHours: decimal.NewFromFloat(balance.Available()).Round(2),
		RemainingHours: decimal.NewFromFloat(balance.Remaining()).Round(2),
	}, nil
}

// UpdateVacation implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateVacation(ctx context.Context, req employee.UpdateVacationRequest) (employee.VacationResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.VacationResponse{}, err
	}
	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return employee.VacationResponse{}, err
	}

	allotted := emp.VacationAllottedHours
	used := emp.VacationUsedHours
	if req.AllottedHours != nil {
		allotted = decimal.RequireFromString(*req.AllottedHours)
	}
	if req.UsedHours != nil {
		used = decimal.RequireFromString(*req.UsedHours)
	}
	if used.GreaterThan(allotted) {
		return employee.VacationResponse{}, employee.ErrVacationOverdrawn
	}

	if err := s.employeeRepo.UpdateVacation(ctx, emp.ID, allotted, used); err != nil {
		return employee.VacationResponse{}, fmt.Errorf("failed to update vacation: %w", err)
	}
	emp.VacationAllottedHours = allotted
	emp.VacationUsedHours = used
	return s.vacation(ctx, emp)
}
