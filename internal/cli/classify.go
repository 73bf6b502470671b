package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/recurrence"
	"github.com/spf13/cobra"
)

type ClassifiedDay struct {
	Date        string                  `json:"date"`
	Status      engine.AttendanceStatus `json:"status"`
	MinutesLate int                     `json:"minutes_late"`
	CheckIn     string                  `json:"check_in,omitempty"`
}

// EmployeeAttendance is an employee's scheduled days over a range, their tally
// and the first matching goal.
type EmployeeAttendance struct {
	EmployeeID string                 `json:"employee_id"`
	Days       []ClassifiedDay        `json:"days"`
	Tally      engine.AttendanceTally `json:"tally"`
	Goal       string                 `json:"goal,omitempty"`
	GoalKind   engine.GoalKind        `json:"goal_kind,omitempty"`
	// Ambiguous is set when more than one goal matched the tally.
	Ambiguous bool `json:"ambiguous,omitempty"`
}

func NewClassifyCommand(rootOpts *RootOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "classify <punch-file>",
		Short: "Classify scheduled days as present, late or missed",
		Long: `Classifies every scheduled day in the range for each employee in the
punch file, tallies the result and matches it against the policy's goals.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" || to == "" {
				return fmt.Errorf("--from and --to are required")
			}
			punches, err := ReadEvents(args[0])
			if err != nil {
				return err
			}
			start, end, err := dateRange(from, to, rootOpts.policy.Loc())
			if err != nil {
				return err
			}
			result, err := Classify(punches, rootOpts.policy, start, end)
			if err != nil {
				return err
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return writeClassifyText(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day (YYYY-MM-DD)")
	return cmd
}

// Classify scores each scheduled day in [from, to] against the first clock in
// of that local day.
func Classify(punches EventLog, policy engine.Policy, from, to time.Time) ([]EmployeeAttendance, error) {
	loc := policy.Loc()
	days, err := recurrence.ScheduledDays(policy.Shifts, from, to, loc)
	if err != nil {
		return nil, err
	}
	rules := policy.ClassifierRules()

	out := make([]EmployeeAttendance, 0, len(punches.Employees))
	for _, id := range punches.Employees {
		events := punches.Events[id]
		if err := engine.ValidateSequence(events); err != nil {
			return nil, fmt.Errorf("employee %s: %w", id, err)
		}
		checkIns := firstCheckIns(events, loc)

		emp := EmployeeAttendance{EmployeeID: id, Days: make([]ClassifiedDay, 0, len(days))}
		classified := make([]engine.Classification, 0, len(days))
		for _, day := range days {
			input := engine.ScheduledDay(day, policy.Shifts)
			if in, ok := checkIns[day.Format(engine.DateLayout)]; ok {
				input.CheckIn = &in
			}
			c := engine.Classify(input, rules)
			classified = append(classified, c)

			row := ClassifiedDay{Date: day.Format(engine.DateLayout), Status: c.Status, MinutesLate: c.MinutesLate}
			if input.CheckIn != nil {
				row.CheckIn = input.CheckIn.In(loc).Format("15:04")
			}
			emp.Days = append(emp.Days, row)
		}

		emp.Tally = engine.Tally(classified)
		if g, ok := engine.MatchGoal(policy.Goals, emp.Tally); ok {
			emp.Goal = g.Name
			emp.GoalKind = g.Kind
			emp.Ambiguous = len(engine.MatchingGoals(policy.Goals, emp.Tally)) > 1
		}
		out = append(out, emp)
	}
	return out, nil
}

// firstCheckIns maps each local date to its earliest clock in.
func firstCheckIns(events []engine.TimeEvent, loc *time.Location) map[string]time.Time {
	out := make(map[string]time.Time)
	for _, ev := range events {
		if ev.Kind != engine.ClockIn {
			continue
		}
		date := ev.Timestamp.In(loc).Format(engine.DateLayout)
		if _, ok := out[date]; !ok {
			out[date] = ev.Timestamp
		}
	}
	return out
}

func writeClassifyText(w io.Writer, result []EmployeeAttendance) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "EMPLOYEE\tDATE\tSTATUS\tCHECK IN\tMINUTES LATE\t")
	for _, emp := range result {
		for _, d := range emp.Days {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t\n", emp.EmployeeID, d.Date, d.Status, d.CheckIn, d.MinutesLate)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = newTable(w)
	fmt.Fprintln(tw, "EMPLOYEE\tPRESENT\tLATE\tMISSED\tEXCUSED\tMINUTES LATE\tGOAL\t")
	for _, emp := range result {
		goal := emp.Goal
		if emp.Ambiguous {
			goal += " (+more)"
		}
		t := emp.Tally
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%s\t\n",
			emp.EmployeeID, t.DaysPresent, t.DaysLate, t.DaysMissed, t.DaysExcused, t.TotalMinutesLate, goal)
	}
	return tw.Flush()
}
