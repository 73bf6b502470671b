// Package cli is the offline timeclock command: it runs the hours engine over
// punch files without a server or database.
package cli

import (
	"fmt"
	"slices"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/config"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	PolicyFile string
	Format     string // "text" | "json"
	Verbose    bool

	policy engine.Policy
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the timeclock CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "timeclock",
		Short: "Worked hours, pay periods and attendance from punch files",
		Long: `Computes worked hours, pay periods and attendance classifications
from an exported punch file (CSV or XLSX with employee_id, kind, timestamp
columns) using the same engine and policy format as the API server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			policy, err := config.LoadPolicy(opts.PolicyFile)
			if err != nil {
				return err
			}
			opts.policy = policy
			if opts.Verbose {
				fmt.Fprintf(cmd.ErrOrStderr(), "policy: timezone=%s period=%d days goals=%d\n",
					policy.Loc(), policy.PayPeriod.PeriodLengthDays, len(policy.Goals))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.PolicyFile, "policy", "p", "", "policy YAML file (defaults to the built-in policy)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewHoursCommand(opts))
	cmd.AddCommand(NewClassifyCommand(opts))
	cmd.AddCommand(NewPeriodCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}
