package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/spf13/cobra"
)

type PeriodRow struct {
	Number int    `json:"number"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Days   int    `json:"days"`
}

func NewPeriodCommand(rootOpts *RootOptions) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "period [date]",
		Short: "Show the pay period containing a date",
		Long: `Prints the pay period containing the date (today when omitted) and,
with --count, the periods that follow it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := rootOpts.policy.Loc()
			date := time.Now().In(loc)
			if len(args) == 1 {
				var err error
				if date, err = time.ParseInLocation(engine.DateLayout, args[0], loc); err != nil {
					return fmt.Errorf("invalid date %q: want YYYY-MM-DD", args[0])
				}
			}
			rows, err := Periods(rootOpts.policy.PayPeriod, date, count)
			if err != nil {
				return err
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			return writePeriodText(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of periods to list")
	return cmd
}

// Periods returns count consecutive periods starting with the one containing date.
func Periods(cfg engine.PayPeriodConfig, date time.Time, count int) ([]PeriodRow, error) {
	if count < 1 {
		return nil, fmt.Errorf("--count must be at least 1")
	}
	p, err := cfg.PeriodFor(date)
	if err != nil {
		return nil, err
	}
	rows := make([]PeriodRow, 0, count)
	for i := 0; i < count; i++ {
		rows = append(rows, PeriodRow{
			Number: p.Number,
			Start:  p.Start.Format(engine.DateLayout),
			End:    p.End.Format(engine.DateLayout),
			Days:   len(p.Days()),
		})
		p = cfg.Next(p)
	}
	return rows, nil
}

func writePeriodText(w io.Writer, rows []PeriodRow) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "PERIOD\tSTART\tEND\tDAYS\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%d\t\n", r.Number, r.Start, r.End, r.Days)
	}
	return tw.Flush()
}
