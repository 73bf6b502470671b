package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/export"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Engine errors, checked most specific first: a SequenceError may wrap
	// both ErrInconsistentSequence and the transition error that caused it.
	var configErr *engine.ConfigError
	switch {
	case errors.Is(err, engine.ErrAlreadyClockedIn):
		Conflict(w, "Already clocked in")
		return
	case errors.Is(err, engine.ErrNoActiveSession):
		BadRequest(w, "No active clock in found", nil)
		return
	case errors.Is(err, engine.ErrInconsistentSequence):
		BadRequest(w, err.Error(), nil)
		return
	case errors.Is(err, engine.ErrPeriodBeforeAnchor):
		BadRequest(w, err.Error(), nil)
		return
	case errors.As(err, &configErr):
		ValidationError(w, map[string]string{configErr.Field: configErr.Reason})
		return
	case errors.Is(err, engine.ErrInvalidConfiguration):
		ValidationError(w, map[string]string{"configuration": err.Error()})
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid email or password")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, jwt.ErrNoCaller):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrSessionExpired):
		Unauthorized(w, "Session expired")
	case errors.Is(err, auth.ErrSessionRevoked), errors.Is(err, auth.ErrSessionNotFound):
		Unauthorized(w, "Session is no longer valid")
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")

	// User domain errors
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrUserInactive):
		Forbidden(w, "User account is inactive")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeCodeExists):
		Conflict(w, "Employee code already exists")
	case errors.Is(err, employee.ErrEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, employee.ErrUnauthorized):
		Forbidden(w, "Not allowed to access this employee")
	case errors.Is(err, employee.ErrNoEmployeeProfile):
		Forbidden(w, "User has no employee profile")
	case errors.Is(err, employee.ErrVacationOverdrawn), errors.Is(err, employee.ErrNegativeVacationHrs):
		BadRequest(w, err.Error(), nil)

	// Time entry domain errors
	case errors.Is(err, timeentry.ErrTimeEntryNotFound):
		NotFound(w, "Time entry not found")
	case errors.Is(err, timeentry.ErrInvalidEventKind), errors.Is(err, timeentry.ErrFutureTimestamp):
		BadRequest(w, err.Error(), nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrDailyRecordNotFound):
		NotFound(w, "Attendance day not found")
	case errors.Is(err, attendance.ErrSummaryNotFound):
		NotFound(w, "Attendance summary not found")
	case errors.Is(err, attendance.ErrGoalNotFound):
		NotFound(w, "Attendance goal not found")
	case errors.Is(err, attendance.ErrDayAlreadyClosed):
		Conflict(w, "Attendance day is already closed")
	case errors.Is(err, attendance.ErrGoalNameExists):
		Conflict(w, "Attendance goal name already exists")
	case errors.Is(err, attendance.ErrDayNotScheduled):
		BadRequest(w, "Day is not a scheduled working day", nil)

	// Settings and report errors
	case errors.Is(err, settings.ErrSettingsNotFound):
		NotFound(w, "Settings not found")
	case errors.Is(err, settings.ErrUnknownWeekday):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, report.ErrUnsupportedFormat), errors.Is(err, export.ErrUnknownFormat):
		BadRequest(w, "Unsupported export format, use json, csv or xlsx", nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
