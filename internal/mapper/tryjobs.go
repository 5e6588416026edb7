package mapper

import (
	"fmt"
	"strconv"

	"github.com/dkoosis/deflake/internal/history"
	"github.com/dkoosis/deflake/pkg/pattern"
	"github.com/dkoosis/deflake/pkg/tryjob"
)

// FromTryJobs lists the builds found in a try-job listing.
func FromTryJobs(res *tryjob.ParseResult) []pattern.Pattern {
	ids := res.IDs()
	summary := &pattern.Summary{
		Label: fmt.Sprintf("%d try jobs (%s listing)", len(res.Jobs), res.Shape),
		Kind:  pattern.SummaryKindTryJobs,
		Metrics: []pattern.SummaryItem{
			{Label: "builds", Value: strconv.Itoa(len(ids)), Kind: kindInfo},
			{Label: "skipped", Value: strconv.Itoa(res.Skipped), Kind: skippedKind(res.Skipped)},
		},
	}

	rows := make([]pattern.TestTableItem, len(res.Jobs))
	for i, j := range res.Jobs {
		rows[i] = pattern.TestTableItem{
			Name:    j.Builder,
			Status:  pattern.StatusInfo,
			Details: j.ID + " " + j.URL,
		}
		if j.Section != "" {
			rows[i].Tag = j.Section
		}
	}
	patterns := []pattern.Pattern{summary}
	if len(rows) > 0 {
		patterns = append(patterns, &pattern.TestTable{Label: "try jobs", Source: "tryjobs", Results: rows})
	}
	return patterns
}

func skippedKind(n int) string {
	if n > 0 {
		return kindWarning
	}
	return kindSuccess
}

// FromRuns lists recorded reconciliation runs, newest first.
func FromRuns(runs []history.Run) []pattern.Pattern {
	total := 0
	rows := make([]pattern.TestTableItem, len(runs))
	trend := make([]float64, len(runs))
	for i, r := range runs {
		total += r.Builds
		rows[i] = pattern.TestTableItem{
			Name:    r.ID,
			Status:  pattern.StatusInfo,
			Tag:     r.Bug,
			Count:   r.Builds,
			Details: r.StartedAt.Format("2006-01-02 15:04:05 MST"),
		}
		trend[len(runs)-1-i] = float64(r.Builds)
	}

	patterns := []pattern.Pattern{&pattern.Summary{
		Label: fmt.Sprintf("%d recorded runs", len(runs)),
		Kind:  pattern.SummaryKindHistory,
		Metrics: []pattern.SummaryItem{
			{Label: "builds processed", Value: strconv.Itoa(total), Kind: kindInfo},
		},
	}}
	if len(runs) > 1 {
		patterns = append(patterns, &pattern.Sparkline{Label: "builds per run", Values: trend})
	}
	if len(rows) > 0 {
		patterns = append(patterns, &pattern.TestTable{Label: "runs", Source: "history", Results: rows})
	}
	return patterns
}
