package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"gopkg.in/yaml.v3"
)

// PolicyFile is the YAML form of the default policy. Omitted fields keep the
// built-in defaults; shifts are overlaid per named weekday.
type PolicyFile struct {
	Timezone                 *string                 `yaml:"timezone"`
	PayPeriod                PolicyPayPeriod         `yaml:"pay_period"`
	RoundingIncrementMinutes *int                    `yaml:"rounding_increment_minutes"`
	DefaultLunchMinutes      *int                    `yaml:"default_lunch_minutes"`
	GraceMinutes             *int                    `yaml:"grace_minutes"`
	LateFrom                 *string                 `yaml:"late_from"`
	Vacation                 PolicyVacation          `yaml:"vacation"`
	Shifts                   settings.ShiftsByDay    `yaml:"shifts"`
	Goals                    []engine.AttendanceGoal `yaml:"goals"`
}

type PolicyPayPeriod struct {
	Type      *string `yaml:"type"`
	StartDate *string `yaml:"start_date"`
}

type PolicyVacation struct {
	AccrualRate *float64 `yaml:"accrual_rate"`
	Allotment   *float64 `yaml:"allotment"`
}

// LoadPolicy reads path, or returns the built-in defaults when path is empty.
func LoadPolicy(path string) (engine.Policy, error) {
	if path == "" {
		return engine.DefaultPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.Policy{}, fmt.Errorf("failed to read policy file: %w", err)
	}
	return ParsePolicy(bytes.NewReader(data))
}

// ParsePolicy decodes a policy file. Unknown keys are rejected so typos do
// not silently fall back to defaults.
func ParsePolicy(r io.Reader) (engine.Policy, error) {
	var file PolicyFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && err != io.EOF {
		return engine.Policy{}, fmt.Errorf("failed to parse policy file: %w", err)
	}
	return file.Policy()
}

// Policy overlays the file onto the defaults and validates the result.
func (f PolicyFile) Policy() (engine.Policy, error) {
	s := settings.FromPolicy(engine.DefaultPolicy())

	if f.Timezone != nil {
		s.Timezone = *f.Timezone
	}
	if f.PayPeriod.Type != nil {
		s.PayPeriodType = engine.PeriodType(*f.PayPeriod.Type)
	}
	if f.PayPeriod.StartDate != nil {
		s.PayPeriodStartDate = *f.PayPeriod.StartDate
	}
	if f.RoundingIncrementMinutes != nil {
		s.PayBufferMinutes = *f.RoundingIncrementMinutes
	}
	if f.DefaultLunchMinutes != nil {
		s.DefaultLunchMinutes = *f.DefaultLunchMinutes
	}
	if f.GraceMinutes != nil {
		s.GraceMinutes = *f.GraceMinutes
	}
	if f.LateFrom != nil {
		s.LateFrom = engine.LateBasis(*f.LateFrom)
	}
	if f.Vacation.AccrualRate != nil {
		s.VacationAccrualRate = *f.Vacation.AccrualRate
	}
	if f.Vacation.Allotment != nil {
		s.VacationAllotment = *f.Vacation.Allotment
	}
	shifts, err := f.Shifts.Apply(s.Shifts)
	if err != nil {
		return engine.Policy{}, err
	}
	s.Shifts = shifts

	goals := make([]engine.AttendanceGoal, len(f.Goals))
	for i, g := range f.Goals {
		if g.DisplayOrder == 0 {
			g.DisplayOrder = i + 1
		}
		goals[i] = g
	}
	return s.ToPolicy(goals)
}
