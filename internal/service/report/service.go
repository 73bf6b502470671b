package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/jwt"
)

const defaultWorkers = 4

type ReportServiceImpl struct {
	employeeRepo    employee.EmployeeRepository
	entryRepo       timeentry.TimeEntryRepository
	settingsService settings.SettingsService
	workers         int
	now             func() time.Time
}

func NewReportService(employeeRepo employee.EmployeeRepository, entryRepo timeentry.TimeEntryRepository, settingsService settings.SettingsService, workers int) report.ReportService {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &ReportServiceImpl{
		employeeRepo:    employeeRepo,
		entryRepo:       entryRepo,
		settingsService: settingsService,
		workers:         workers,
		now:             time.Now,
	}
}

// targetEmployees resolves whose hours a report covers. Non-admins only ever
// see themselves; admins see everyone active unless they pick one employee.
func (s *ReportServiceImpl) targetEmployees(ctx context.Context, requested *string) ([]string, error) {
	caller, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to extract caller: %w", err)
	}
	if !caller.IsAdmin() {
		if caller.EmployeeID == nil || *caller.EmployeeID == "" {
			return nil, employee.ErrNoEmployeeProfile
		}
		if requested != nil && *requested != *caller.EmployeeID {
			return nil, employee.ErrUnauthorized
		}
		return []string{*caller.EmployeeID}, nil
	}
	if requested != nil {
		if _, err := s.employeeRepo.GetByID(ctx, *requested); err != nil {
			return nil, err
		}
		return []string{*requested}, nil
	}
	ids, err := s.employeeRepo.ListActiveIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	return ids, nil
}

// window is one reporting bucket: sessions whose clock in falls in [from, until).
type window struct {
	from, until time.Time
}

// employeeWindows computes one row per window for a single employee from a
// single fetch of their entries.
func (s *ReportServiceImpl) employeeWindows(ctx context.Context, policy engine.Policy, employeeID string, windows []window) ([]report.EmployeeHours, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	from, until := windows[0].from, windows[len(windows)-1].until
	// one extra day so sessions running past the end are still closed
	entries, err := s.entryRepo.ListByEmployee(ctx, employeeID, from, until.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	events := timeentry.ToEvents(entries)

	rows := make([]report.EmployeeHours, 0, len(windows))
	for _, w := range windows {
		row, err := hoursFor(engine.ClipSessions(events, w.from, w.until), policy)
		if err != nil {
			return nil, fmt.Errorf("failed to compute hours for %s: %w", emp.EmployeeCode, err)
		}
		row.EmployeeID = emp.ID
		row.EmployeeCode = emp.EmployeeCode
		row.FullName = emp.FullName
		rows = append(rows, row)
	}
	return rows, nil
}

// hoursFor reduces a window and adds the shift-adjusted paid hours of each day.
func hoursFor(events []engine.TimeEvent, policy engine.Policy) (report.EmployeeHours, error) {
	hours, err := engine.Reduce(events)
	if err != nil {
		return report.EmployeeHours{}, err
	}

	var adjusted float64
	for _, day := range engine.SplitByDay(events, policy.Loc()) {
		res, err := engine.EvaluateDay(day, policy)
		if err != nil {
			return report.EmployeeHours{}, err
		}
		adjusted += res.AdjustedPaidHours()
	}

	return report.EmployeeHours{
		TotalHours:        report.Hours(hours.TotalHours),
		LunchHours:        report.Hours(hours.LunchHours),
		UnpaidHours:       report.Hours(hours.UnpaidHours),
		PaidHours:         report.Hours(hours.PaidHours),
		AdjustedPaidHours: report.Hours(adjusted),
		Sessions:          hours.Sessions,
		Incomplete:        hours.Incomplete,
	}, nil
}

// collect runs employeeWindows for every employee and returns the rows of each
// window sorted by employee name.
func (s *ReportServiceImpl) collect(ctx context.Context, policy engine.Policy, ids []string, windows []window) ([][]report.EmployeeHours, error) {
	byEmployee, err := engine.MapEmployees(ctx, ids, s.workers, func(ctx context.Context, employeeID string) ([]report.EmployeeHours, error) {
		return s.employeeWindows(ctx, policy, employeeID, windows)
	})
	if err != nil {
		return nil, err
	}

	out := make([][]report.EmployeeHours, len(windows))
	for i := range windows {
		rows := make([]report.EmployeeHours, 0, len(byEmployee))
		for _, perWindow := range byEmployee {
			rows = append(rows, perWindow[i])
		}
		sort.Slice(rows, func(a, b int) bool {
			if rows[a].FullName != rows[b].FullName {
				return rows[a].FullName < rows[b].FullName
			}
			return rows[a].EmployeeCode < rows[b].EmployeeCode
		})
		out[i] = rows
	}
	return out, nil
}

func totals(rows []report.EmployeeHours) report.EmployeeHours {
	var t report.EmployeeHours
	for _, r := range rows {
		t = t.Add(r)
	}
	return t
}

// HoursReport implements report.ReportService.
func (s *ReportServiceImpl) HoursReport(ctx context.Context, req report.HoursReportRequest) (report.HoursReport, error) {
	if err := req.Validate(); err != nil {
		return report.HoursReport{}, err
	}
	policy, err := s.settingsService.Policy(ctx)
	if err != nil {
		return report.HoursReport{}, err
	}
	ids, err := s.targetEmployees(ctx, req.EmployeeID)
	if err != nil {
		return report.HoursReport{}, err
	}

	now := s.now().In(policy.Loc())
	r := engine.DateRangeFor(engine.DateRangeOption(req.Range), now, req.Selected(policy.Loc()))

	result := report.HoursReport{
		Range:       req.Range,
		Label:       r.Label,
		PeriodStart: r.Start.Format(engine.DateLayout),
		PeriodEnd:   r.End.Format(engine.DateLayout),
		GeneratedAt: now.Format(time.RFC3339),
		Employees:   []report.EmployeeHours{},
	}
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := s.collect(ctx, policy, ids, []window{{from: r.Start, until: r.Until()}})
	if err != nil {
		return report.HoursReport{}, err
	}
	result.Employees = rows[0]
	result.Totals = totals(rows[0])
	return result, nil
}

// PayPeriodReport implements report.ReportService.
func (s *ReportServiceImpl) PayPeriodReport(ctx context.Context, req report.PayPeriodReportRequest) (report.PayPeriodReport, error) {
	if err := req.Validate(); err != nil {
		return report.PayPeriodReport{}, err
	}
	policy, err := s.settingsService.Policy(ctx)
	if err != nil {
		return report.PayPeriodReport{}, err
	}
	ids, err := s.targetEmployees(ctx, req.EmployeeID)
	if err != nil {
		return report.PayPeriodReport{}, err
	}

	now := s.now().In(policy.Loc())
	periods, err := policy.PayPeriod.Recent(now, req.Count)
	if err != nil {
		return report.PayPeriodReport{}, err
	}

	windows := make([]window, 0, len(periods))
	for _, p := range periods {
		windows = append(windows, window{from: p.Start, until: p.Until()})
	}
	var rows [][]report.EmployeeHours
	if len(ids) > 0 {
		if rows, err = s.collect(ctx, policy, ids, windows); err != nil {
			return report.PayPeriodReport{}, err
		}
	}

	result := report.PayPeriodReport{GeneratedAt: now.Format(time.RFC3339)}
	// newest first, the way pay periods are usually reviewed
	for i := len(periods) - 1; i >= 0; i-- {
		p := periods[i]
		bucket := report.PayPeriodHours{
			Number:    p.Number,
			Start:     p.Start.Format(engine.DateLayout),
			End:       p.End.Format(engine.DateLayout),
			Label:     p.Start.Format("Jan 2") + " - " + p.End.Format("Jan 2, 2006"),
			Employees: []report.EmployeeHours{},
		}
		if rows != nil {
			bucket.Employees = rows[i]
			bucket.Totals = totals(rows[i])
		}
		result.Periods = append(result.Periods, bucket)
	}
	return result, nil
}
