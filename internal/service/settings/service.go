package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/jwt"
)

type SettingsServiceImpl struct {
	settingsRepo settings.SettingsRepository
	goalRepo     attendance.GoalRepository
	defaults     engine.Policy
}

// NewSettingsService uses defaults until an administrator first saves settings.
func NewSettingsService(settingsRepo settings.SettingsRepository, goalRepo attendance.GoalRepository, defaults engine.Policy) settings.SettingsService {
	return &SettingsServiceImpl{
		settingsRepo: settingsRepo,
		goalRepo:     goalRepo,
		defaults:     defaults,
	}
}

func (s *SettingsServiceImpl) current(ctx context.Context) (settings.Settings, error) {
	cur, err := s.settingsRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, settings.ErrSettingsNotFound) {
			return settings.FromPolicy(s.defaults), nil
		}
		return settings.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return cur, nil
}

// Get implements settings.SettingsService.
func (s *SettingsServiceImpl) Get(ctx context.Context) (settings.SettingsResponse, error) {
	cur, err := s.current(ctx)
	if err != nil {
		return settings.SettingsResponse{}, err
	}
	return settings.NewSettingsResponse(cur), nil
}

// Update implements settings.SettingsService.
func (s *SettingsServiceImpl) Update(ctx context.Context, req settings.UpdateSettingsRequest) (settings.SettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return settings.SettingsResponse{}, err
	}
	cur, err := s.current(ctx)
	if err != nil {
		return settings.SettingsResponse{}, err
	}
	next, err := req.ApplyTo(cur)
	if err != nil {
		return settings.SettingsResponse{}, err
	}
	return s.save(ctx, next)
}

// ApplyTemplate implements settings.SettingsService.
func (s *SettingsServiceImpl) ApplyTemplate(ctx context.Context, req settings.ApplyTemplateRequest) (settings.SettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return settings.SettingsResponse{}, err
	}
	cur, err := s.current(ctx)
	if err != nil {
		return settings.SettingsResponse{}, err
	}
	shifts, err := engine.ApplyTemplate(engine.ScheduleTemplate(req.Template), cur.Shifts, cur.DefaultLunchMinutes)
	if err != nil {
		return settings.SettingsResponse{}, err
	}
	cur.Shifts = shifts
	return s.save(ctx, cur)
}

func (s *SettingsServiceImpl) save(ctx context.Context, next settings.Settings) (settings.SettingsResponse, error) {
	// Reject anything the engine cannot run against before it is stored.
	if _, err := next.ToPolicy(nil); err != nil {
		return settings.SettingsResponse{}, err
	}
	if caller, err := jwt.CallerFromContext(ctx); err == nil {
		next.UpdatedBy = &caller.UserID
	}
	if err := s.settingsRepo.Save(ctx, next); err != nil {
		return settings.SettingsResponse{}, fmt.Errorf("failed to save settings: %w", err)
	}
	saved, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return settings.SettingsResponse{}, fmt.Errorf("failed to reload settings: %w", err)
	}
	return settings.NewSettingsResponse(saved), nil
}

// Policy implements settings.SettingsService.
func (s *SettingsServiceImpl) Policy(ctx context.Context) (engine.Policy, error) {
	cur, err := s.current(ctx)
	if err != nil {
		return engine.Policy{}, err
	}
	goals, err := s.goalRepo.List(ctx)
	if err != nil {
		return engine.Policy{}, fmt.Errorf("failed to list goals: %w", err)
	}
	return cur.ToPolicy(goals)
}
