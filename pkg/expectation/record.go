// Package expectation models test-expectation records and decides, from
// re-run evidence, whether a record is stale.
package expectation

import (
	"regexp"
	"strings"

	"github.com/dkoosis/deflake/pkg/outcome"
)

// BugPrefix is prepended to bare numeric bug ids.
const BugPrefix = "crbug.com/"

var bareBugRe = regexp.MustCompile(`^\d+$`)

// NormalizeBug turns a bare numeric id into a bug-tracker reference and
// leaves anything else as given.
func NormalizeBug(bug string) string {
	bug = strings.TrimSpace(bug)
	if bareBugRe.MatchString(bug) {
		return BugPrefix + bug
	}
	return bug
}

// Decision is the result of deflaking one record.
type Decision int

const (
	Keep   Decision = iota // expected set unchanged
	Narrow                 // expected set replaced by a strict subset
	Remove                 // record should be deleted
)

func (d Decision) String() string {
	switch d {
	case Narrow:
		return "narrow"
	case Remove:
		return "remove"
	}
	return "keep"
}

// MarshalText lets decisions appear by name in JSON and YAML output.
func (d Decision) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Record is one expectation entry under reconciliation.
type Record struct {
	Bug  string
	Path string

	expected outcome.CategorySet
	actual   outcome.CategorySet
	raw      outcome.Set
	removed  bool
}

// New creates an active record. bug is normalized with NormalizeBug.
func New(bug, path string, expected outcome.CategorySet) *Record {
	return &Record{
		Bug:      NormalizeBug(bug),
		Path:     path,
		expected: expected,
	}
}

// Expected returns the current expected categories.
func (r *Record) Expected() outcome.CategorySet { return r.expected }

// Actual returns the categories accumulated from re-runs.
func (r *Record) Actual() outcome.CategorySet { return r.actual }

// ActualTokens returns the union of raw tokens observed across re-runs.
func (r *Record) ActualTokens() outcome.Set { return r.raw }

// Removed reports whether the record has been marked for removal.
func (r *Record) Removed() bool { return r.removed }

// AddActuals folds one re-run observation into the accumulated actuals.
// Adding the same set twice is the same as adding it once.
func (r *Record) AddActuals(s outcome.Set) {
	r.raw = r.raw.Union(s)
	r.actual = r.actual.Union(s.Categories())
}

// Deflake applies the decision rule once all observations are merged:
//
//  1. no re-run evidence: keep
//  2. every re-run passed cleanly: remove
//  3. the expected set never allowed Pass: keep
//  4. evidence is a strict subset of the expected set: narrow to it
//  5. otherwise (a new failure mode, or evidence equal to the expected set): keep
//
// Expectations are never widened.
func (r *Record) Deflake() Decision {
	if r.removed {
		return Remove
	}
	if r.actual.IsEmpty() {
		return Keep
	}
	if r.actual.Equal(outcome.NewCategorySet(outcome.CategoryPass)) {
		r.removed = true
		return Remove
	}
	if !r.expected.Has(outcome.CategoryPass) {
		return Keep
	}
	if r.actual.StrictSubsetOf(r.expected) {
		r.expected = r.actual
		return Narrow
	}
	return Keep
}
