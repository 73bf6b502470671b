package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/export"
	"github.com/spf13/cobra"
)

func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var from, to, out string

	cmd := &cobra.Command{
		Use:   "export <punch-file>",
		Short: "Write an hours report as CSV or XLSX",
		Long: `Writes the same hours report the API serves from /reports/hours, for
the employees in the punch file. The output format follows the extension
of --out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" || to == "" || out == "" {
				return fmt.Errorf("--from, --to and --out are required")
			}
			format, err := export.ParseFormat(strings.TrimPrefix(filepath.Ext(out), "."))
			if err != nil || format == export.FormatJSON {
				return fmt.Errorf("unsupported output %q: use .csv or .xlsx", out)
			}
			punches, err := ReadEvents(args[0])
			if err != nil {
				return err
			}
			start, end, err := dateRange(from, to, rootOpts.policy.Loc())
			if err != nil {
				return err
			}
			hr, err := BuildHoursReport(punches, rootOpts.policy, start, end)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := export.Write(f, format, hr.Sheets()); err != nil {
				f.Close()
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d employees to %s\n", len(hr.Employees), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (.csv or .xlsx)")
	return cmd
}

// BuildHoursReport shapes the per-employee totals as the API's hours report.
func BuildHoursReport(punches EventLog, policy engine.Policy, from, to time.Time) (report.HoursReport, error) {
	hours, err := ComputeHours(punches, policy, from, to)
	if err != nil {
		return report.HoursReport{}, err
	}

	hr := report.HoursReport{
		Range:       "custom",
		Label:       from.Format(engine.DateLayout) + " to " + to.Format(engine.DateLayout),
		PeriodStart: from.Format(engine.DateLayout),
		PeriodEnd:   to.Format(engine.DateLayout),
		Employees:   make([]report.EmployeeHours, 0, len(hours)),
	}
	for _, emp := range hours {
		row := report.EmployeeHours{
			EmployeeID:        emp.EmployeeID,
			EmployeeCode:      emp.EmployeeID,
			TotalHours:        report.Hours(emp.Total.TotalHours),
			LunchHours:        report.Hours(emp.Total.LunchHours),
			UnpaidHours:       report.Hours(emp.Total.UnpaidHours),
			PaidHours:         report.Hours(emp.Total.PaidHours),
			AdjustedPaidHours: report.Hours(emp.Total.AdjustedPaidHours),
			Sessions:          emp.Total.Sessions,
			Incomplete:        emp.Total.Incomplete,
		}
		hr.Employees = append(hr.Employees, row)
		hr.Totals = hr.Totals.Add(row)
	}
	return hr, nil
}
