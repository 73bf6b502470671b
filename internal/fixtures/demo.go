// Package fixtures seeds the demo accounts used in local mode and in tests.
package fixtures

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type DemoAccount struct {
	Email        string
	Password     string
	Role         user.Role
	EmployeeCode string
	FullName     string
}

var DemoAccounts = []DemoAccount{
	{Email: "john@demo.com", Password: "demo123", Role: user.RoleEmployee, EmployeeCode: "EMP-0001", FullName: "John Doe"},
	{Email: "admin@demo.com", Password: "admin123", Role: user.RoleAdmin, EmployeeCode: "EMP-0002", FullName: "Admin User"},
}

// DemoHireDate is the hire date of every demo employee.
var DemoHireDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// demoNamespace scopes the demo IDs. They are derived from the account email so
// that a restart in local mode reattaches punches already stored in sqlite.
var demoNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://timeclock.local/demo"))

// DemoID is the stable ID of a demo record of the given kind.
func DemoID(kind, key string) string {
	return uuid.NewSHA1(demoNamespace, []byte(kind+":"+strings.ToLower(key))).String()
}

// SeedDemo creates the demo accounts, each with an employee profile, and the
// policy's goals when no goal exists yet. Accounts that already exist are left alone.
func SeedDemo(ctx context.Context, users user.UserRepository, employees employee.EmployeeRepository, goals attendance.GoalRepository, policy engine.Policy) error {
	for _, acc := range DemoAccounts {
		if _, err := users.GetByEmail(ctx, acc.Email); err == nil {
			continue
		} else if !errors.Is(err, user.ErrUserNotFound) {
			return fmt.Errorf("failed to look up demo user %s: %w", acc.Email, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(acc.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash demo password: %w", err)
		}
		userID := DemoID("user", acc.Email)
		employeeID := DemoID("employee", acc.Email)

		// the employee row goes first; users reference it
		if _, err := employees.Create(ctx, employee.Employee{
			ID:                    employeeID,
			UserID:                &userID,
			EmployeeCode:          acc.EmployeeCode,
			FullName:              acc.FullName,
			Email:                 acc.Email,
			HireDate:              DemoHireDate,
			IsActive:              true,
			VacationAllottedHours: decimal.NewFromFloat(policy.VacationAllotment),
			VacationUsedHours:     decimal.Zero,
		}); err != nil {
			return fmt.Errorf("failed to create demo employee %s: %w", acc.EmployeeCode, err)
		}
		if _, err := users.Create(ctx, user.User{
			ID:           userID,
			Email:        acc.Email,
			PasswordHash: string(hash),
			Role:         acc.Role,
			EmployeeID:   &employeeID,
			IsActive:     true,
		}); err != nil {
			return fmt.Errorf("failed to create demo user %s: %w", acc.Email, err)
		}
	}

	existing, err := goals.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list goals: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for i, g := range policy.Goals {
		if g.ID == "" {
			g.ID = DemoID("goal", fmt.Sprintf("%d:%s", i, g.Name))
		}
		if _, err := goals.Create(ctx, g); err != nil {
			return fmt.Errorf("failed to seed goal %q: %w", g.Name, err)
		}
	}
	return nil
}
