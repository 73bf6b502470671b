package engine

import (
	"math"
	"time"
)

// WorkedHoursResult is the derived hours for an event window. It is never persisted.
type WorkedHoursResult struct {
	TotalHours  float64 `json:"total_hours"`
	LunchHours  float64 `json:"lunch_hours"`
	UnpaidHours float64 `json:"unpaid_hours"`
	PaidHours   float64 `json:"paid_hours"`

	LunchBreaks  int `json:"lunch_breaks"`
	UnpaidBreaks int `json:"unpaid_breaks"`
	Sessions     int `json:"sessions"`

	FirstClockIn *time.Time `json:"first_clock_in,omitempty"`
	LastClockOut *time.Time `json:"last_clock_out,omitempty"`

	// Incomplete is set when the window ends with an open session.
	Incomplete bool       `json:"incomplete"`
	OpenSince  *time.Time `json:"open_since,omitempty"`
}

// Reduce folds a time-ordered event stream for one employee into worked hours.
// Only closed sessions are counted; breaks taken inside a session that is still
// open are held back with it so that PaidHours = Total - Lunch - Unpaid holds.
func Reduce(events []TimeEvent) (WorkedHoursResult, error) {
	return reduce(events, nil)
}

// ReduceUntil is Reduce with every open interval closed at asOf. It is used for
// live "hours so far" views; the result is still marked Incomplete.
func ReduceUntil(events []TimeEvent, asOf time.Time) (WorkedHoursResult, error) {
	return reduce(events, &asOf)
}

func reduce(events []TimeEvent, asOf *time.Time) (WorkedHoursResult, error) {
	var (
		res    WorkedHoursResult
		st     foldState
		total  time.Duration
		lunch  time.Duration
		unpaid time.Duration

		// breaks of the session that is currently open
		pendingLunch, pendingUnpaid           time.Duration
		pendingLunchCount, pendingUnpaidCount int
	)

	for i, ev := range events {
		closed, err := st.apply(i, ev)
		if err != nil {
			return WorkedHoursResult{}, err
		}
		if ev.Kind == ClockIn && res.FirstClockIn == nil {
			ts := ev.Timestamp
			res.FirstClockIn = &ts
		}
		if closed == nil {
			continue
		}

		d := closed.end.Sub(closed.start)
		switch closed.kind {
		case ClockIn:
			total += d
			lunch += pendingLunch
			unpaid += pendingUnpaid
			res.LunchBreaks += pendingLunchCount
			res.UnpaidBreaks += pendingUnpaidCount
			pendingLunch, pendingUnpaid = 0, 0
			pendingLunchCount, pendingUnpaidCount = 0, 0
			res.Sessions++
			end := closed.end
			res.LastClockOut = &end
		case LunchOut:
			pendingLunch += d
			pendingLunchCount++
		case UnpaidOut:
			pendingUnpaid += d
			pendingUnpaidCount++
		}
	}

	if st.open() {
		res.Incomplete = true
		since := *st.clockIn
		res.OpenSince = &since

		if asOf != nil && !asOf.Before(since) {
			total += asOf.Sub(since)
			if st.lunchOut != nil && asOf.After(*st.lunchOut) {
				pendingLunch += asOf.Sub(*st.lunchOut)
				pendingLunchCount++
			}
			if st.unpaidOut != nil && asOf.After(*st.unpaidOut) {
				pendingUnpaid += asOf.Sub(*st.unpaidOut)
				pendingUnpaidCount++
			}
			lunch += pendingLunch
			unpaid += pendingUnpaid
			res.LunchBreaks += pendingLunchCount
			res.UnpaidBreaks += pendingUnpaidCount
		}
	}

	res.TotalHours = total.Hours()
	res.LunchHours = lunch.Hours()
	res.UnpaidHours = unpaid.Hours()
	res.PaidHours = math.Max(0, res.TotalHours-res.LunchHours-res.UnpaidHours)
	return res, nil
}

// Add sums two results, e.g. days into a pay period. Incomplete is sticky.
func (r WorkedHoursResult) Add(o WorkedHoursResult) WorkedHoursResult {
	out := WorkedHoursResult{
		TotalHours:   r.TotalHours + o.TotalHours,
		LunchHours:   r.LunchHours + o.LunchHours,
		UnpaidHours:  r.UnpaidHours + o.UnpaidHours,
		PaidHours:    r.PaidHours + o.PaidHours,
		LunchBreaks:  r.LunchBreaks + o.LunchBreaks,
		UnpaidBreaks: r.UnpaidBreaks + o.UnpaidBreaks,
		Sessions:     r.Sessions + o.Sessions,
		FirstClockIn: r.FirstClockIn,
		LastClockOut: o.LastClockOut,
		Incomplete:   r.Incomplete || o.Incomplete,
		OpenSince:    o.OpenSince,
	}
	if out.FirstClockIn == nil {
		out.FirstClockIn = o.FirstClockIn
	}
	if out.LastClockOut == nil {
		out.LastClockOut = r.LastClockOut
	}
	if out.OpenSince == nil {
		out.OpenSince = r.OpenSince
	}
	return out
}
