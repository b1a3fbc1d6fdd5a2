// Package runner orchestrates a validation run: it loads the scoped
// records and the network-wide group index, evaluates the attribute and
// sequence rules, rewrites the aggregated findings into selection
// predicates, and files them with the reviewer sink.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/vitale232/WMXDataReviewerTools/internal/milepoint"
	"github.com/vitale232/WMXDataReviewerTools/internal/predicate"
	"github.com/vitale232/WMXDataReviewerTools/internal/validate"
)

// Sink receives one write per violated rule. The reviewer store provides
// the production implementation.
type Sink interface {
	Write(description, whereClause string, recordCount int) error
}

// Finding is one violated rule with its selection predicate.
type Finding struct {
	Rule        validate.RuleID
	RouteIDs    []string
	WhereClause string
}

// Report summarizes a completed validation run.
type Report struct {
	SegmentsChecked int
	GroupsChecked   int
	Findings        []Finding
	Violations      validate.Violations
}

// Runner wires the record source, the rule checkers, the predicate
// builder, and the result sink into a single run.
type Runner struct {
	records milepoint.RecordSource
	groups  milepoint.GroupSource
	checker validate.Checker
	pred    *predicate.Builder
	sink    Sink
	logger  *slog.Logger
}

// New creates a runner. A nil sink skips write-back, which is used for
// dry runs. A nil logger discards log output.
func New(records milepoint.RecordSource, groups milepoint.GroupSource, checker validate.Checker, pred *predicate.Builder, sink Sink, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		records: records,
		groups:  groups,
		checker: checker,
		pred:    pred,
		sink:    sink,
		logger:  logger,
	}
}

// Run executes the validation checks over the scoped records. The record
// load and the group-index load hit the feature store independently, so
// they run concurrently. Any record with an unknown roadway type aborts
// the run before anything is written back.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	var (
		segments []validate.Segment
		index    validate.GroupIndex
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		segments, err = r.records.Segments(gctx)
		if err != nil {
			return fmt.Errorf("failed to load segments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		index, err = r.groups.GroupIndex(gctx)
		if err != nil {
			return fmt.Errorf("failed to load group index: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Info("loaded records for validation",
		"segments", len(segments), "roadways", len(index))

	agg := validate.NewAggregator()

	for _, seg := range segments {
		violations, err := r.checker.CheckSegment(seg)
		if err != nil {
			return nil, fmt.Errorf("attribute check failed: %w", err)
		}
		agg.Fold(violations)
	}

	// Sequence checks run once per roadway touched by the scoped records,
	// against the full active network for that roadway. Buckets the scope
	// never touched are left alone.
	seen := make(map[string]struct{})
	var dotIDs []string
	for _, seg := range segments {
		if seg.DotID == "" {
			continue
		}
		if _, ok := seen[seg.DotID]; ok {
			continue
		}
		seen[seg.DotID] = struct{}{}
		dotIDs = append(dotIDs, seg.DotID)
	}
	sort.Strings(dotIDs)

	groupsChecked := 0
	for _, dotID := range dotIDs {
		group, ok := index[dotID]
		if !ok {
			continue
		}
		agg.Fold(validate.CheckGroup(group))
		groupsChecked++
	}

	report := &Report{
		SegmentsChecked: len(segments),
		GroupsChecked:   groupsChecked,
		Violations:      agg.Result(),
	}

	for _, rule := range report.Violations.Rules() {
		routeIDs := report.Violations.RouteIDs(rule)
		clause, ok := r.pred.Rewrite(rule, routeIDs)
		if !ok {
			continue
		}

		finding := Finding{Rule: rule, RouteIDs: routeIDs, WhereClause: clause}
		report.Findings = append(report.Findings, finding)

		if r.sink == nil {
			continue
		}
		if err := r.sink.Write(string(rule), clause, len(routeIDs)); err != nil {
			return nil, fmt.Errorf("failed to write result for rule %q: %w", rule, err)
		}
	}

	r.logger.Info("validation run complete",
		"segments", report.SegmentsChecked,
		"roadways", report.GroupsChecked,
		"rules_violated", len(report.Findings))

	return report, nil
}

// RunNetworkChecks executes the network-level SQL checks and files their
// results with the sink. Checks that flag no records are reported but not
// written.
func (r *Runner) RunNetworkChecks(ctx context.Context, checks *milepoint.NetworkChecks) ([]*milepoint.CheckResult, error) {
	results := make([]*milepoint.CheckResult, 0, 2)

	coDir, err := checks.UniqueCountyOrderDirection(ctx)
	if err != nil {
		return nil, err
	}
	if coDir != nil {
		results = append(results, coDir)
	}

	attrs, err := checks.UniqueRoadwayAttrs(ctx)
	if err != nil {
		return nil, err
	}
	if attrs != nil {
		results = append(results, attrs)
	}

	if r.sink == nil {
		return results, nil
	}
	for _, result := range results {
		if err := r.sink.Write(result.Description, result.WhereClause, result.Flagged); err != nil {
			return nil, fmt.Errorf("failed to write result for check %q: %w", result.Description, err)
		}
	}

	return results, nil
}
