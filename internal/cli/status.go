package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/spf13/cobra"
)

type EmployeeStatus struct {
	EmployeeID  string             `json:"employee_id"`
	State       engine.ClockState  `json:"state"`
	Since       string             `json:"since,omitempty"`
	NextActions []engine.EventKind `json:"next_actions"`
	Error       string             `json:"error,omitempty"`
}

func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <punch-file>",
		Short: "Current clock state of each employee",
		Long: `Replays each employee's punches and prints where they stand now and
which punches are valid next. Employees whose punches are out of sequence
are listed with the error instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			punches, err := ReadEvents(args[0])
			if err != nil {
				return err
			}
			result := Statuses(punches, rootOpts.policy.Loc())
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return writeStatusText(cmd.OutOrStdout(), result)
		},
	}
}

func Statuses(punches EventLog, loc *time.Location) []EmployeeStatus {
	out := make([]EmployeeStatus, 0, len(punches.Employees))
	for _, id := range punches.Employees {
		row := EmployeeStatus{EmployeeID: id}
		st, err := engine.CurrentStatus(punches.Events[id])
		if err != nil {
			row.Error = err.Error()
			out = append(out, row)
			continue
		}
		row.State = st.State
		row.NextActions = st.NextActions
		if st.Since != nil {
			row.Since = st.Since.In(loc).Format(time.RFC3339)
		}
		out = append(out, row)
	}
	return out
}

func writeStatusText(w io.Writer, result []EmployeeStatus) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "EMPLOYEE\tSTATE\tSINCE\tNEXT\t")
	for _, s := range result {
		if s.Error != "" {
			fmt.Fprintf(tw, "%s\terror\t\t%s\t\n", s.EmployeeID, s.Error)
			continue
		}
		next := make([]string, len(s.NextActions))
		for i, k := range s.NextActions {
			next[i] = string(k)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", s.EmployeeID, s.State, s.Since, strings.Join(next, ","))
	}
	return tw.Flush()
}
