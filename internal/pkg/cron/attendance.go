package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/settings"
)

// AttendanceJobs closes out finished days and keeps monthly summaries fresh.
type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
	settingsService   settings.SettingsService
	sessions          auth.SessionStore
	now               func() time.Time
}

func NewAttendanceJobs(attendanceService attendance.AttendanceService, settingsService settings.SettingsService, sessions auth.SessionStore) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceService: attendanceService,
		settingsService:   settingsService,
		sessions:          sessions,
		now:               time.Now,
	}
}

// JobsConfig toggles the jobs registered by RegisterJobs.
type JobsConfig struct {
	CloseOut       bool
	Recalculate    bool
	SessionCleanup bool
	Interval       time.Duration
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, cfg JobsConfig) {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	if cfg.CloseOut {
		scheduler.AddJob("close_out_attendance_days", interval, j.CloseOutYesterday)
	}
	if cfg.Recalculate {
		scheduler.AddJob("recalculate_attendance_summaries", interval, j.RecalculateSummaries)
	}
	if cfg.SessionCleanup && j.sessions != nil {
		scheduler.AddJob("delete_expired_sessions", interval, j.DeleteExpiredSessions)
	}
}

// CloseOutYesterday classifies the previous day in the policy time zone.
// Days that already have a record are skipped, so repeated runs are harmless.
func (j *AttendanceJobs) CloseOutYesterday(ctx context.Context) error {
	policy, err := j.settingsService.Policy(ctx)
	if err != nil {
		return err
	}
	yesterday := j.now().In(policy.Loc()).AddDate(0, 0, -1)

	result, err := j.attendanceService.CloseOutDay(ctx, yesterday)
	if err != nil {
		return fmt.Errorf("failed to close out %s: %w", result.Date, err)
	}
	slog.Info("Cron: Closed out attendance day",
		"date", result.Date,
		"processed", result.Processed,
		"skipped", result.Skipped)
	return nil
}

// RecalculateSummaries rebuilds the current month, and the previous month
// while yesterday still belongs to it.
func (j *AttendanceJobs) RecalculateSummaries(ctx context.Context) error {
	policy, err := j.settingsService.Policy(ctx)
	if err != nil {
		return err
	}
	today := j.now().In(policy.Loc())
	yesterday := today.AddDate(0, 0, -1)

	months := [][2]int{{today.Year(), int(today.Month())}}
	if yesterday.Month() != today.Month() {
		months = append(months, [2]int{yesterday.Year(), int(yesterday.Month())})
	}

	for _, m := range months {
		n, err := j.attendanceService.RecalculateMonth(ctx, m[0], time.Month(m[1]))
		if err != nil {
			return fmt.Errorf("failed to recalculate %04d-%02d: %w", m[0], m[1], err)
		}
		slog.Info("Cron: Recalculated attendance summaries", "year", m[0], "month", m[1], "count", n)
	}
	return nil
}

func (j *AttendanceJobs) DeleteExpiredSessions(ctx context.Context) error {
	n, err := j.sessions.DeleteExpired(ctx, j.now())
	if err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	if n > 0 {
		slog.Info("Cron: Deleted expired sessions", "count", n)
	}
	return nil
}
