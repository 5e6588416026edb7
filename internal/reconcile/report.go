package reconcile

import (
	"github.com/dkoosis/deflake/pkg/baseline"
	"github.com/dkoosis/deflake/pkg/expectation"
	"github.com/dkoosis/deflake/pkg/outcome"
)

// Report is the outcome of one reconciliation pass.
type Report struct {
	RunID       string         `json:"run_id,omitempty"`
	Builds      []BuildSummary `json:"builds"`
	Skipped     int            `json:"skipped_builds"`
	Records     []RecordResult `json:"records"`
	Added       []RecordResult `json:"added"`
	Rebaselines []Rebaseline   `json:"rebaselines"`

	added []*expectation.Record
}

// BuildSummary describes one processed build.
type BuildSummary struct {
	ID          string `json:"id"`
	BuildNumber string `json:"build_number,omitempty"`
	Entries     int    `json:"entries"`
	Failures    int    `json:"failures"`
}

// RecordResult is the decision reached for one record.
type RecordResult struct {
	Bug      string               `json:"bug,omitempty"`
	Path     string               `json:"path"`
	Decision expectation.Decision `json:"decision"`
	Before   []outcome.Category   `json:"before,omitempty"`
	Expected []outcome.Category   `json:"expected"`
	Actual   []outcome.Category   `json:"actual"`
}

// Rebaseline lists the baseline files a failing test should update.
type Rebaseline struct {
	Path      string              `json:"path"`
	Dirs      []string            `json:"dirs"`
	Artifacts []baseline.Artifact `json:"artifacts"`
}

func newRecordResult(rec *expectation.Record, before outcome.CategorySet, d expectation.Decision) RecordResult {
	return RecordResult{
		Bug:      rec.Bug,
		Path:     rec.Path,
		Decision: d,
		Before:   before.Slice(),
		Expected: rec.Expected().Slice(),
		Actual:   rec.Actual().Slice(),
	}
}

// NewRecords returns the records created for failures that had none.
func (r *Report) NewRecords() []*expectation.Record {
	return r.added
}

// Count returns how many records reached decision d.
func (r *Report) Count(d expectation.Decision) int {
	n := 0
	for _, rr := range r.Records {
		if rr.Decision == d {
			n++
		}
	}
	return n
}

// Changed reports whether applying the report would modify any file.
func (r *Report) Changed() bool {
	return len(r.Added) > 0 || r.Count(expectation.Narrow) > 0 || r.Count(expectation.Remove) > 0
}
