package employee

import "errors"

var (
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrEmployeeCodeExists  = errors.New("employee code already exists")
	ErrEmailExists         = errors.New("email already registered")
	ErrUnauthorized        = errors.New("unauthorized to access this employee")
	ErrNoEmployeeProfile   = errors.New("user has no employee profile")
	ErrVacationOverdrawn   = errors.New("vacation used hours exceed the allotment")
	ErrNegativeVacationHrs = errors.New("vacation hours cannot be negative")
)
