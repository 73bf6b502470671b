package timeentry

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
)

const (
	defaultEntryLimit = 50
	maxEntryLimit     = 200

	// allowed drift between a client-supplied correction time and the server clock
	futureTolerance = time.Minute
)

type TimeEntryServiceImpl struct {
	entryRepo       timeentry.TimeEntryRepository
	employeeRepo    employee.EmployeeRepository
	settingsService settings.SettingsService
	now             func() time.Time
}

func NewTimeEntryService(entryRepo timeentry.TimeEntryRepository, employeeRepo employee.EmployeeRepository, settingsService settings.SettingsService) timeentry.TimeEntryService {
	return &TimeEntryServiceImpl{
		entryRepo:       entryRepo,
		employeeRepo:    employeeRepo,
		settingsService: settingsService,
		now:             time.Now,
	}
}

// ownEmployeeID returns the caller's employee profile ID.
func ownEmployeeID(caller jwt.Caller) (string, error) {
	if caller.EmployeeID == nil || *caller.EmployeeID == "" {
		return "", employee.ErrNoEmployeeProfile
	}
	return *caller.EmployeeID, nil
}

// Punch implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) Punch(ctx context.Context, req timeentry.PunchRequest) (timeentry.PunchResponse, error) {
	if err := req.Validate(); err != nil {
		return timeentry.PunchResponse{}, err
	}
	caller, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return timeentry.PunchResponse{}, fmt.Errorf("failed to extract caller: %w", err)
	}

	var employeeID string
	if req.EmployeeID != nil && (caller.EmployeeID == nil || *req.EmployeeID != *caller.EmployeeID) {
		if !caller.IsAdmin() {
			return timeentry.PunchResponse{}, employee.ErrUnauthorized
		}
		employeeID = *req.EmployeeID
	} else if employeeID, err = ownEmployeeID(caller); err != nil {
		return timeentry.PunchResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return timeentry.PunchResponse{}, err
	}
	if !emp.IsActive {
		return timeentry.PunchResponse{}, employee.ErrEmployeeNotFound
	}

	now := s.now().UTC()
	ts := now
	if req.Timestamp != nil {
		if !caller.IsAdmin() {
			return timeentry.PunchResponse{}, user.ErrAdminPrivilegeRequired
		}
		parsed, ok := validator.IsValidDateTime(*req.Timestamp)
		if !ok {
			return timeentry.PunchResponse{}, validator.ValidationErrors{{Field: "timestamp", Message: "timestamp must be RFC3339"}}
		}
		if parsed.After(now.Add(futureTolerance)) {
			return timeentry.PunchResponse{}, timeentry.ErrFutureTimestamp
		}
		ts = parsed.UTC()
	}

	var resp timeentry.PunchResponse
	err = s.entryRepo.WithEmployeeLock(ctx, employeeID, func(ctx context.Context) error {
		tail, err := s.entryRepo.LatestSession(ctx, employeeID)
		if err != nil {
			return fmt.Errorf("failed to load open session: %w", err)
		}
		events := timeentry.ToEvents(tail)
		next := engine.TimeEvent{EmployeeID: employeeID, Kind: req.Kind, Timestamp: ts}
		if err := engine.CanAppend(events, next); err != nil {
			return err
		}

		saved, err := s.entryRepo.Append(ctx, timeentry.TimeEntry{
			EmployeeID: employeeID,
			Kind:       req.Kind,
			Timestamp:  ts,
			Notes:      req.Notes,
			CreatedBy:  caller.UserID,
		})
		if err != nil {
			return fmt.Errorf("failed to append time entry: %w", err)
		}

		status, err := engine.CurrentStatus(append(events, next))
		if err != nil {
			return err
		}
		resp = timeentry.PunchResponse{Entry: timeentry.NewTimeEntryResponse(saved), Status: status}
		return nil
	})
	if err != nil {
		return timeentry.PunchResponse{}, err
	}
	return resp, nil
}

// MyEntries implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) MyEntries(ctx context.Context, limit int) ([]timeentry.TimeEntryResponse, error) {
	caller, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to extract caller: %w", err)
	}
	employeeID, err := ownEmployeeID(caller)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultEntryLimit
	}
	if limit > maxEntryLimit {
		limit = maxEntryLimit
	}

	entries, err := s.entryRepo.ListRecent(ctx, employeeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	out := make([]timeentry.TimeEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, timeentry.NewTimeEntryResponse(e))
	}
	return out, nil
}

// Status implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) Status(ctx context.Context) (engine.ClockStatus, error) {
	caller, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return engine.ClockStatus{}, fmt.Errorf("failed to extract caller: %w", err)
	}
	employeeID, err := ownEmployeeID(caller)
	if err != nil {
		return engine.ClockStatus{}, err
	}
	tail, err := s.entryRepo.LatestSession(ctx, employeeID)
	if err != nil {
		return engine.ClockStatus{}, fmt.Errorf("failed to load open session: %w", err)
	}
	return engine.CurrentStatus(timeentry.ToEvents(tail))
}

// Today implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) Today(ctx context.Context) (timeentry.TodayResponse, error) {
	caller, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return timeentry.TodayResponse{}, fmt.Errorf("failed to extract caller: %w", err)
	}
	employeeID, err := ownEmployeeID(caller)
	if err != nil {
		return timeentry.TodayResponse{}, err
	}
	policy, err := s.settingsService.Policy(ctx)
	if err != nil {
		return timeentry.TodayResponse{}, err
	}

	now := s.now().In(policy.Loc())
	dayStart := engine.Civil(now)
	dayEnd := dayStart.AddDate(0, 0, 1)

	entries, err := s.entryRepo.ListByEmployee(ctx, employeeID, dayStart, dayEnd)
	if err != nil {
		return timeentry.TodayResponse{}, fmt.Errorf("failed to list time entries: %w", err)
	}
	events := engine.ClipSessions(timeentry.ToEvents(entries), dayStart, dayEnd)

	hours, err := engine.ReduceUntil(events, now)
	if err != nil {
		return timeentry.TodayResponse{}, err
	}
	tail, err := s.entryRepo.LatestSession(ctx, employeeID)
	if err != nil {
		return timeentry.TodayResponse{}, fmt.Errorf("failed to load open session: %w", err)
	}
	status, err := engine.CurrentStatus(timeentry.ToEvents(tail))
	if err != nil {
		return timeentry.TodayResponse{}, err
	}

	resp := timeentry.TodayResponse{
		Date:    dayStart.Format(engine.DateLayout),
		Status:  status,
		Hours:   hours,
		Entries: make([]timeentry.TimeEntryResponse, 0, len(entries)),
	}
	if !hours.Incomplete && hours.Sessions > 0 {
		day, err := engine.EvaluateDay(events, policy)
		if err != nil {
			return timeentry.TodayResponse{}, err
		}
		resp.AdjustedPaidHours = day.AdjustedPaidHours()
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, timeentry.NewTimeEntryResponse(e))
	}
	return resp, nil
}

// Delete implements timeentry.TimeEntryService. The employee's surrounding
// entries must still form a valid sequence without the removed one.
func (s *TimeEntryServiceImpl) Delete(ctx context.Context, id string) error {
	caller, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to extract caller: %w", err)
	}
	if !caller.IsAdmin() {
		return user.ErrAdminPrivilegeRequired
	}

	target, err := s.entryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return s.entryRepo.WithEmployeeLock(ctx, target.EmployeeID, func(ctx context.Context) error {
		// Re-validate the session the entry belonged to, through the next
		// clock in, which must still find the employee clocked out.
		prev, next, err := s.entryRepo.ClockInsAround(ctx, target.EmployeeID, target.Timestamp, target.ID)
		if err != nil {
			return fmt.Errorf("failed to look up session: %w", err)
		}
		from := target.Timestamp
		if prev != nil {
			from = prev.Timestamp
		}
		to := s.now().UTC().Add(futureTolerance + time.Nanosecond)
		if next != nil {
			to = next.Timestamp.Add(time.Nanosecond)
		}
		window, err := s.entryRepo.ListByEmployee(ctx, target.EmployeeID, from, to)
		if err != nil {
			return fmt.Errorf("failed to list time entries: %w", err)
		}

		remaining := make([]timeentry.TimeEntry, 0, len(window))
		for _, e := range window {
			if e.ID != target.ID {
				remaining = append(remaining, e)
			}
		}
		if err := engine.ValidateSequence(timeentry.ToEvents(remaining)); err != nil {
			return err
		}

		if err := s.entryRepo.Delete(ctx, id); err != nil {
			return err
		}
		return nil
	})
}
