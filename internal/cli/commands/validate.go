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

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	DryRun bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run the roadway-level attribute and sequence checks",
		Long: `Evaluate the roadway-level attribute rules and the county-order
sequence rules against the scoped Milepoint records, then file each violated
rule in the reviewer workspace as a selection predicate.

The scope defaults to active records edited by --user since --edited-since.
Use --full-db to validate every active record instead.`,
		Example: `  # Validate one editor's recent work
  reviewer validate --user avitale --edited-since "2026-08-01" --job-id 12345

  # Validate the whole network without writing results
  reviewer validate --full-db --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Report findings without writing to the reviewer workspace")

	return cmd
}

func runValidate(cmd *cobra.Command, opts *ValidateOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := cc.Cfg.Validate(); err != nil {
		return err
	}
	scope, err := cc.Cfg.ScopeClause()
	if err != nil {
		return err
	}

	var (
		run  *reviewer.Run
		sink runner.Sink
	)
	if !opts.DryRun {
		var rs *reviewer.RunSink
		run, rs, err = cc.NewRun(scope)
		if err != nil {
			return err
		}
		sink = rs
	}

	pred := predicate.NewBuilder(milepoint.ActiveRoutesWhereClause, scope, cc.Logger)
	source := milepoint.NewSQLSource(cc.DB, cc.Cfg.Table, scope, cc.Logger)
	r := runner.New(source, source, cc.Cfg.Checker(), pred, sink, cc.Logger)

	startTime := time.Now()
	report, err := r.Run(cmd.Context())
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
	fmt.Fprintf(out, "Checked %d records across %d roadways\n",
		report.SegmentsChecked, report.GroupsChecked)
	renderFindings(out, report.Findings)
	fmt.Fprintf(out, "Completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	return nil
}
