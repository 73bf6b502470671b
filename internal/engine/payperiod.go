package engine

import (
	"fmt"
	"time"
)

// PeriodType is the pay frequency as configured by an administrator.
type PeriodType string

const (
	PeriodWeekly   PeriodType = "weekly"
	PeriodBiweekly PeriodType = "biweekly"
)

// LengthDays maps the type to its period length.
func (t PeriodType) LengthDays() (int, error) {
	switch t {
	case PeriodWeekly:
		return 7, nil
	case PeriodBiweekly:
		return 14, nil
	}
	return 0, &ConfigError{Field: "pay_period_type", Reason: fmt.Sprintf("unknown type %q", t)}
}

// PayPeriodConfig anchors period #1 and fixes the period length.
type PayPeriodConfig struct {
	AnchorDate       time.Time
	PeriodLengthDays int
}

// NewPayPeriodConfig builds a config from a "2006-01-02" anchor and a period type.
func NewPayPeriodConfig(anchor string, t PeriodType, loc *time.Location) (PayPeriodConfig, error) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(DateLayout, anchor, loc)
	if err != nil {
		return PayPeriodConfig{}, &ConfigError{Field: "pay_period_start_date", Reason: err.Error()}
	}
	n, err := t.LengthDays()
	if err != nil {
		return PayPeriodConfig{}, err
	}
	return PayPeriodConfig{AnchorDate: d, PeriodLengthDays: n}, nil
}

func (c PayPeriodConfig) Validate() error {
	if c.PeriodLengthDays <= 0 {
		return &ConfigError{Field: "period_length_days", Reason: "must be positive"}
	}
	if c.AnchorDate.IsZero() {
		return &ConfigError{Field: "anchor_date", Reason: "is required"}
	}
	return nil
}

// PayPeriod is a numbered, inclusive range of calendar days.
type PayPeriod struct {
	Number int       `json:"number"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// Contains reports whether t falls on a day in [Start, End].
func (p PayPeriod) Contains(t time.Time) bool {
	d := civil(t.In(p.Start.Location()))
	return !d.Before(p.Start) && !d.After(p.End)
}

// Days returns every calendar day of the period.
func (p PayPeriod) Days() []time.Time {
	var days []time.Time
	for d := p.Start; !d.After(p.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Until is the exclusive upper bound, for range queries on instants.
func (p PayPeriod) Until() time.Time {
	return p.End.AddDate(0, 0, 1)
}

func (p PayPeriod) String() string {
	return fmt.Sprintf("#%d [%s, %s]", p.Number, p.Start.Format(DateLayout), p.End.Format(DateLayout))
}

// PeriodFor returns the period containing date. Dates before the anchor are out of range.
func (c PayPeriodConfig) PeriodFor(date time.Time) (PayPeriod, error) {
	if err := c.Validate(); err != nil {
		return PayPeriod{}, err
	}
	anchor := civil(c.AnchorDate)
	d := civil(date.In(anchor.Location()))
	if d.Before(anchor) {
		return PayPeriod{}, &PeriodError{Date: d, Anchor: anchor}
	}
	n := daysBetween(anchor, d)/c.PeriodLengthDays + 1
	return c.period(anchor, n), nil
}

// Period returns period number n (1-based).
func (c PayPeriodConfig) Period(n int) (PayPeriod, error) {
	if err := c.Validate(); err != nil {
		return PayPeriod{}, err
	}
	if n < 1 {
		return PayPeriod{}, &PeriodError{Date: civil(c.AnchorDate).AddDate(0, 0, (n-1)*c.PeriodLengthDays), Anchor: civil(c.AnchorDate)}
	}
	return c.period(civil(c.AnchorDate), n), nil
}

// Periods returns every period overlapping [from, to]. A from before the anchor
// is moved up to the anchor.
func (c PayPeriodConfig) Periods(from, to time.Time) ([]PayPeriod, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	anchor := civil(c.AnchorDate)
	if to.Before(anchor) {
		return nil, &PeriodError{Date: civil(to), Anchor: anchor}
	}
	if from.Before(anchor) {
		from = anchor
	}
	first, err := c.PeriodFor(from)
	if err != nil {
		return nil, err
	}
	last := civil(to.In(anchor.Location()))
	var out []PayPeriod
	for p := first; !p.Start.After(last); p = c.period(anchor, p.Number+1) {
		out = append(out, p)
	}
	return out, nil
}

// Recent returns the count periods ending with the one containing now, oldest first.
func (c PayPeriodConfig) Recent(now time.Time, count int) ([]PayPeriod, error) {
	if count < 1 {
		return nil, &ConfigError{Field: "count", Reason: fmt.Sprintf("must be at least 1, got %d", count)}
	}
	cur, err := c.PeriodFor(now)
	if err != nil {
		return nil, err
	}
	first := cur.Number - count + 1
	if first < 1 {
		first = 1
	}
	out := make([]PayPeriod, 0, cur.Number-first+1)
	for n := first; n <= cur.Number; n++ {
		out = append(out, c.period(civil(c.AnchorDate), n))
	}
	return out, nil
}

// Next returns the period after p under the same config.
func (c PayPeriodConfig) Next(p PayPeriod) PayPeriod {
	return c.period(civil(c.AnchorDate), p.Number+1)
}

func (c PayPeriodConfig) period(anchor time.Time, n int) PayPeriod {
	start := anchor.AddDate(0, 0, (n-1)*c.PeriodLengthDays)
	return PayPeriod{
		Number: n,
		Start:  start,
		End:    start.AddDate(0, 0, c.PeriodLengthDays-1),
	}
}

// civil truncates t to midnight of its calendar day in its own location.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b, ignoring DST shifts.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// Civil is exported for callers bucketing events by local day.
func Civil(t time.Time) time.Time {
	return civil(t)
}
