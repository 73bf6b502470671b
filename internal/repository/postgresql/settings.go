package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type settingsRepositoryImpl struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) settings.SettingsRepository {
	return &settingsRepositoryImpl{db: db}
}

// Get implements settings.SettingsRepository.
func (r *settingsRepositoryImpl) Get(ctx context.Context) (settings.Settings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT pay_buffer_minutes, pay_period_type, pay_period_start_date, shifts,
			default_lunch_minutes, grace_minutes, late_from, vacation_accrual_rate,
			vacation_allotment, timezone, updated_by, updated_at
		FROM system_settings
		WHERE id = 1
	`
	var (
		s      settings.Settings
		anchor time.Time
		shifts []byte
	)
	err := q.QueryRow(ctx, query).Scan(
		&s.PayBufferMinutes, &s.PayPeriodType, &anchor, &shifts,
		&s.DefaultLunchMinutes, &s.GraceMinutes, &s.LateFrom, &s.VacationAccrualRate,
		&s.VacationAllotment, &s.Timezone, &s.UpdatedBy, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return settings.Settings{}, settings.ErrSettingsNotFound
		}
		return settings.Settings{}, err
	}
	s.PayPeriodStartDate = anchor.Format(engine.DateLayout)
	if err := json.Unmarshal(shifts, &s.Shifts); err != nil {
		return settings.Settings{}, fmt.Errorf("failed to decode shifts: %w", err)
	}
	return s, nil
}

// Save implements settings.SettingsRepository.
func (r *settingsRepositoryImpl) Save(ctx context.Context, s settings.Settings) error {
	q := GetQuerier(ctx, r.db)

	anchor, err := time.Parse(engine.DateLayout, s.PayPeriodStartDate)
	if err != nil {
		return fmt.Errorf("failed to parse pay period start date: %w", err)
	}
	shifts, err := json.Marshal(s.Shifts)
	if err != nil {
		return fmt.Errorf("failed to encode shifts: %w", err)
	}

	query := `
		INSERT INTO system_settings (
			id, pay_buffer_minutes, pay_period_type, pay_period_start_date, shifts,
			default_lunch_minutes, grace_minutes, late_from, vacation_accrual_rate,
			vacation_allotment, timezone, updated_by, updated_at
		)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (id) DO UPDATE SET
			pay_buffer_minutes = EXCLUDED.pay_buffer_minutes,
			pay_period_type = EXCLUDED.pay_period_type,
			pay_period_start_date = EXCLUDED.pay_period_start_date,
			shifts = EXCLUDED.shifts,
			default_lunch_minutes = EXCLUDED.default_lunch_minutes,
			grace_minutes = EXCLUDED.grace_minutes,
			late_from = EXCLUDED.late_from,
			vacation_accrual_rate = EXCLUDED.vacation_accrual_rate,
			vacation_allotment = EXCLUDED.vacation_allotment,
			timezone = EXCLUDED.timezone,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
	`
	_, err = q.Exec(ctx, query,
		s.PayBufferMinutes, s.PayPeriodType, anchor, shifts,
		s.DefaultLunchMinutes, s.GraceMinutes, s.LateFrom, s.VacationAccrualRate,
		s.VacationAllotment, s.Timezone, s.UpdatedBy,
	)
	return err
}
