// Package mapper reduces deflake results to render patterns.
package mapper

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dkoosis/deflake/internal/reconcile"
	"github.com/dkoosis/deflake/pkg/expectation"
	"github.com/dkoosis/deflake/pkg/outcome"
	"github.com/dkoosis/deflake/pkg/pattern"
)

const (
	kindSuccess = "success"
	kindWarning = "warning"
	kindInfo    = "info"

	leaderboardSize = 10
)

// FromReport converts a reconciliation report into patterns: a headline
// summary, per-build failure trend, record decisions, new records and the
// rebaseline plan. Sections with nothing to show are omitted.
func FromReport(r *reconcile.Report) []pattern.Pattern {
	removed := r.Count(expectation.Remove)
	narrowed := r.Count(expectation.Narrow)

	label := fmt.Sprintf("reconciled %d builds", len(r.Builds))
	if r.Skipped > 0 {
		label += fmt.Sprintf(", skipped %d", r.Skipped)
	}
	summary := &pattern.Summary{
		Label: label,
		Kind:  pattern.SummaryKindReconcile,
		Metrics: []pattern.SummaryItem{
			{Label: "removed", Value: strconv.Itoa(removed), Kind: kindSuccess},
			{Label: "narrowed", Value: strconv.Itoa(narrowed), Kind: kindInfo},
			{Label: "kept", Value: strconv.Itoa(len(r.Records) - removed - narrowed), Kind: kindInfo},
			{Label: "added", Value: strconv.Itoa(len(r.Added)), Kind: kindWarning},
			{Label: "rebaselines", Value: strconv.Itoa(len(r.Rebaselines)), Kind: kindInfo},
		},
	}

	patterns := []pattern.Pattern{summary}
	if len(r.Builds) > 1 {
		patterns = append(patterns, failureTrend(r.Builds), failureLeaders(r.Builds))
	}
	if t := decisionTable(r.Records); t != nil {
		patterns = append(patterns, t)
	}
	if c := narrowedComparison(r.Records); c != nil {
		patterns = append(patterns, c)
	}
	if len(r.Added) > 0 {
		patterns = append(patterns, addedTable(r.Added))
	}
	if len(r.Rebaselines) > 0 {
		patterns = append(patterns, rebaselineTable(r.Rebaselines))
	}
	return patterns
}

func failureTrend(builds []reconcile.BuildSummary) *pattern.Sparkline {
	values := make([]float64, len(builds))
	for i, b := range builds {
		values[i] = float64(b.Failures)
	}
	return &pattern.Sparkline{Label: "failures per build", Values: values}
}

func failureLeaders(builds []reconcile.BuildSummary) *pattern.Leaderboard {
	sorted := slices.Clone(builds)
	slices.SortStableFunc(sorted, func(a, b reconcile.BuildSummary) int {
		return cmp.Compare(b.Failures, a.Failures)
	})
	top := sorted[:min(len(sorted), leaderboardSize)]

	items := make([]pattern.LeaderboardItem, len(top))
	for i, b := range top {
		name := b.ID
		if b.BuildNumber != "" && b.BuildNumber != b.ID {
			name += " #" + b.BuildNumber
		}
		items[i] = pattern.LeaderboardItem{
			Name:   name,
			Metric: fmt.Sprintf("%d/%d failing", b.Failures, b.Entries),
			Value:  float64(b.Failures),
			Rank:   i + 1,
		}
	}
	return &pattern.Leaderboard{
		Label:      "failures by build",
		MetricName: "failures",
		Items:      items,
		TotalCount: len(builds),
		ShowRank:   true,
	}
}

// decisionTable lists records whose expectations change.
func decisionTable(records []reconcile.RecordResult) *pattern.TestTable {
	var rows []pattern.TestTableItem
	for _, rr := range records {
		if rr.Decision == expectation.Keep {
			continue
		}
		rows = append(rows, pattern.TestTableItem{
			Name:    rr.Path,
			Status:  rr.Decision.String(),
			Tag:     rr.Bug,
			Details: "actual: " + join(rr.Actual),
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return &pattern.TestTable{Label: "changed expectations", Source: "records", Results: rows}
}

func narrowedComparison(records []reconcile.RecordResult) *pattern.Comparison {
	var changes []pattern.ComparisonItem
	for _, rr := range records {
		if rr.Decision != expectation.Narrow {
			continue
		}
		changes = append(changes, pattern.ComparisonItem{
			Label:  rr.Path,
			Before: join(rr.Before),
			After:  join(rr.Expected),
			Change: float64(len(rr.Expected) - len(rr.Before)),
			Unit:   "categories",
		})
	}
	if len(changes) == 0 {
		return nil
	}
	return &pattern.Comparison{Label: "narrowed", Changes: changes}
}

func addedTable(added []reconcile.RecordResult) *pattern.TestTable {
	rows := make([]pattern.TestTableItem, len(added))
	for i, rr := range added {
		rows[i] = pattern.TestTableItem{
			Name:    rr.Path,
			Status:  pattern.StatusAdd,
			Tag:     rr.Bug,
			Details: "expected: " + join(rr.Expected),
		}
	}
	return &pattern.TestTable{Label: "new expectations", Source: "added", Results: rows}
}

func rebaselineTable(plans []reconcile.Rebaseline) *pattern.TestTable {
	rows := make([]pattern.TestTableItem, len(plans))
	for i, p := range plans {
		var details []string
		if len(p.Dirs) > 0 {
			details = append(details, "into "+p.Dirs[0])
		}
		for _, a := range p.Artifacts {
			details = append(details, a.Source+" → "+a.Dest)
		}
		rows[i] = pattern.TestTableItem{
			Name:    p.Path,
			Status:  pattern.StatusInfo,
			Count:   len(p.Artifacts),
			Details: strings.Join(details, "\n"),
		}
	}
	return &pattern.TestTable{Label: "rebaseline", Source: "rebaseline", Results: rows}
}

func join(cats []outcome.Category) string {
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return strings.Join(names, " ")
}
