package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/vitale232/WMXDataReviewerTools/internal/milepoint"
	"github.com/vitale232/WMXDataReviewerTools/internal/runner"
)

const maxClauseWidth = 60

// renderFindings writes the per-rule findings as a summary table.
func renderFindings(w io.Writer, findings []runner.Finding) {
	if len(findings) == 0 {
		_, _ = fmt.Fprintln(w, "No violations found")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Rule", "Routes", "Where Clause"})

	total := 0
	for _, finding := range findings {
		t.AppendRow(table.Row{
			string(finding.Rule),
			len(finding.RouteIDs),
			truncate(finding.WhereClause, maxClauseWidth),
		})
		total += len(finding.RouteIDs)
	}
	t.Render()

	_, _ = fmt.Fprintf(w, "%d rules violated, %d flagged routes\n", len(findings), total)
}

// renderChecks writes the network-level check results as a summary table.
func renderChecks(w io.Writer, results []*milepoint.CheckResult) {
	if len(results) == 0 {
		_, _ = fmt.Fprintln(w, "All network checks passed")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Check", "Flagged", "Where Clause"})

	for _, result := range results {
		t.AppendRow(table.Row{
			result.Description,
			result.Flagged,
			truncate(result.WhereClause, maxClauseWidth),
		})
	}
	t.Render()
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}
