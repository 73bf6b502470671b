package user

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"    // Manages employees, settings and reports
	RoleEmployee Role = "employee" // Clocks in and views own records
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	EmployeeID   *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin checks if user is an administrator
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanAccessEmployee checks if user may read the given employee's records
func (u *User) CanAccessEmployee(employeeID string) bool {
	if u.IsAdmin() {
		return true
	}
	return u.EmployeeID != nil && *u.EmployeeID == employeeID
}
