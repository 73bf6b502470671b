package cli

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/spf13/cobra"
)

// HoursRow is one day, or the total, of an employee's hours.
type HoursRow struct {
	Date              string  `json:"date,omitempty"`
	Sessions          int     `json:"sessions"`
	TotalHours        float64 `json:"total_hours"`
	LunchHours        float64 `json:"lunch_hours"`
	UnpaidHours       float64 `json:"unpaid_hours"`
	PaidHours         float64 `json:"paid_hours"`
	AdjustedPaidHours float64 `json:"adjusted_paid_hours"`
	Incomplete        bool    `json:"incomplete"`
}

type EmployeeHours struct {
	EmployeeID string     `json:"employee_id"`
	Days       []HoursRow `json:"days"`
	Total      HoursRow   `json:"total"`
}

func NewHoursCommand(rootOpts *RootOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "hours <punch-file>",
		Short: "Worked hours per employee and day",
		Long: `Reduces each employee's punches to worked hours, one row per local day
plus a total. Adjusted paid hours apply the weekday's shift clamping, lunch
deduction and rounding.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			punches, err := ReadEvents(args[0])
			if err != nil {
				return err
			}
			start, end, err := dateRange(from, to, rootOpts.policy.Loc())
			if err != nil {
				return err
			}
			report, err := ComputeHours(punches, rootOpts.policy, start, end)
			if err != nil {
				return err
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			return writeHoursText(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day to include (YYYY-MM-DD)")
	return cmd
}

// ComputeHours evaluates every employee in the punch file over [from, to].
func ComputeHours(punches EventLog, policy engine.Policy, from, to time.Time) ([]EmployeeHours, error) {
	out := make([]EmployeeHours, 0, len(punches.Employees))
	for _, id := range punches.Employees {
		events := clip(punches.Events[id], from, to)
		if len(events) == 0 {
			continue
		}
		emp, err := employeeHours(id, events, policy)
		if err != nil {
			return nil, fmt.Errorf("employee %s: %w", id, err)
		}
		out = append(out, emp)
	}
	return out, nil
}

func employeeHours(id string, events []engine.TimeEvent, policy engine.Policy) (EmployeeHours, error) {
	total, err := engine.Reduce(events)
	if err != nil {
		return EmployeeHours{}, err
	}

	byDay := engine.SplitByDay(events, policy.Loc())
	dates := make([]string, 0, len(byDay))
	for d := range byDay {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	emp := EmployeeHours{EmployeeID: id, Days: make([]HoursRow, 0, len(dates))}
	var adjusted float64
	for _, d := range dates {
		res, err := engine.EvaluateDay(byDay[d], policy)
		if err != nil {
			return EmployeeHours{}, fmt.Errorf("%s: %w", d, err)
		}
		row := hoursRow(res.Hours, res.AdjustedPaidHours())
		row.Date = d
		emp.Days = append(emp.Days, row)
		adjusted += res.AdjustedPaidHours()
	}
	emp.Total = hoursRow(total, adjusted)
	return emp, nil
}

func hoursRow(h engine.WorkedHoursResult, adjusted float64) HoursRow {
	return HoursRow{
		Sessions:          h.Sessions,
		TotalHours:        round2(h.TotalHours),
		LunchHours:        round2(h.LunchHours),
		UnpaidHours:       round2(h.UnpaidHours),
		PaidHours:         round2(h.PaidHours),
		AdjustedPaidHours: round2(adjusted),
		Incomplete:        h.Incomplete,
	}
}

func writeHoursText(w io.Writer, report []EmployeeHours) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "EMPLOYEE\tDATE\tSESSIONS\tTOTAL\tLUNCH\tUNPAID\tPAID\tADJUSTED\t")
	line := func(id, date string, r HoursRow) {
		mark := ""
		if r.Incomplete {
			mark = "open"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%s\n",
			id, date, r.Sessions, r.TotalHours, r.LunchHours, r.UnpaidHours, r.PaidHours, r.AdjustedPaidHours, mark)
	}
	for _, emp := range report {
		for _, d := range emp.Days {
			line(emp.EmployeeID, d.Date, d)
		}
		line(emp.EmployeeID, "total", emp.Total)
	}
	return tw.Flush()
}
