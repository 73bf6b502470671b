package settings

import (
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
)

// Settings is the single system-wide configuration row.
type Settings struct {
	PayBufferMinutes    int
	PayPeriodType       engine.PeriodType
	PayPeriodStartDate  string
	Shifts              engine.WeeklyShiftPolicy
	DefaultLunchMinutes int
	GraceMinutes        int
	LateFrom            engine.LateBasis
	VacationAccrualRate float64
	VacationAllotment   float64
	Timezone            string
	UpdatedBy           *string
	UpdatedAt           time.Time
}

// FromPolicy builds the settings row that reproduces p.
func FromPolicy(p engine.Policy) Settings {
	periodType := engine.PeriodBiweekly
	if p.PayPeriod.PeriodLengthDays == 7 {
		periodType = engine.PeriodWeekly
	}
	return Settings{
		PayBufferMinutes:    p.RoundingIncrementMinutes,
		PayPeriodType:       periodType,
		PayPeriodStartDate:  p.PayPeriod.AnchorDate.Format(engine.DateLayout),
		Shifts:              p.Shifts,
		DefaultLunchMinutes: p.DefaultLunchMinutes,
		GraceMinutes:        p.GraceMinutes,
		LateFrom:            p.LateFrom,
		VacationAccrualRate: p.VacationAccrualRate,
		VacationAllotment:   p.VacationAllotment,
		Timezone:            p.Loc().String(),
	}
}

// ToPolicy builds the engine snapshot from stored settings and goals.
func (s Settings) ToPolicy(goals []engine.AttendanceGoal) (engine.Policy, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return engine.Policy{}, &engine.ConfigError{Field: "timezone", Reason: err.Error()}
	}
	period, err := engine.NewPayPeriodConfig(s.PayPeriodStartDate, s.PayPeriodType, loc)
	if err != nil {
		return engine.Policy{}, err
	}
	p := engine.Policy{
		Shifts:                   s.Shifts,
		PayPeriod:                period,
		Goals:                    goals,
		RoundingIncrementMinutes: s.PayBufferMinutes,
		DefaultLunchMinutes:      s.DefaultLunchMinutes,
		GraceMinutes:             s.GraceMinutes,
		LateFrom:                 s.LateFrom,
		VacationAccrualRate:      s.VacationAccrualRate,
		VacationAllotment:        s.VacationAllotment,
		Location:                 loc,
	}
	if err := p.Validate(); err != nil {
		return engine.Policy{}, err
	}
	return p, nil
}
