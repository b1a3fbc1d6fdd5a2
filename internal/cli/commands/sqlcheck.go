package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vitale232/WMXDataReviewerTools/internal/milepoint"
	"github.com/vitale232/WMXDataReviewerTools/internal/predicate"
	"github.com/vitale232/WMXDataReviewerTools/internal/reviewer"
	"github.com/vitale232/WMXDataReviewerTools/internal/runner"
)

// SQLCheckOptions holds options for the sqlcheck command.
type SQLCheckOptions struct {
	DryRun bool
}

// NewSQLCheckCommand creates the sqlcheck command.
func NewSQLCheckCommand() *cobra.Command {
	opts := &SQLCheckOptions{}

	cmd := &cobra.Command{
		Use:   "sqlcheck",
		Short: "Run the network-level SQL checks",
		Long: `Run the whole-table SQL validations: attribute agreement across a
divided roadway's routes, and non-repeating DIRECTION codes per roadway.
These checks always cover the full active table regardless of edit scope.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSQLCheck(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Report findings without writing to the reviewer workspace")

	return cmd
}

func runSQLCheck(cmd *cobra.Command, opts *SQLCheckOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var (
		run  *reviewer.Run
		sink runner.Sink
	)
	if !opts.DryRun {
		var rs *reviewer.RunSink
		run, rs, err = cc.NewRun(milepoint.ActiveRoutesWhereClause)
		if err != nil {
			return err
		}
		sink = rs
	}

	pred := predicate.NewBuilder(milepoint.ActiveRoutesWhereClause, "", cc.Logger)
	checks := milepoint.NewNetworkChecks(cc.DB, cc.Cfg.Table, pred, cc.Logger)
	r := runner.New(nil, nil, cc.Cfg.Checker(), pred, sink, cc.Logger)

	startTime := time.Now()
	results, err := r.RunNetworkChecks(cmd.Context(), checks)
	if err != nil {
		if run != nil {
			_ = cc.Store.CompleteRun(run.ID, reviewer.RunStatusFailed, err.Error())
		}
		return err
	}
	if run != nil {
		if err := cc.Store.CompleteRun(run.ID, reviewer.RunStatusCompleted, ""); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	renderChecks(out, results)
	fmt.Fprintf(out, "Completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	return nil
}
