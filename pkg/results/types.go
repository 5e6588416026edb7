// Package results loads per-run web test result documents (full_results.json)
// into a flat, ordered collection of entries.
package results

import (
	"iter"
	"strings"

	"github.com/dkoosis/deflake/pkg/outcome"
)

// Entry is one test's observed outcome within a run.
type Entry struct {
	Path     string
	Actual   outcome.Set
	Expected outcome.Set
	Time     float64

	// IsRefTest is derived from the leaf's reftest_type metadata.
	IsRefTest bool
	// IsFlagSpecificFailure is true only for failures attributable to a flag
	// or virtual suite variant that do not also occur in the base configuration.
	IsFlagSpecificFailure bool
}

// leaf mirrors the fields read from a result leaf.
type leaf struct {
	Actual           string    `json:"actual"`
	Expected         string    `json:"expected"`
	Time             float64   `json:"time"`
	ReftestType      []string  `json:"reftest_type"`
	BaseExpectations *[]string `json:"base_expectations"`
}

// Tree holds every entry of one run in document order.
type Tree struct {
	SecondsSinceEpoch float64
	BuildNumber       string
	NumFailuresByType map[string]int
	FlagName          string

	entries []Entry
	index   map[string]int
}

// Len returns the number of entries.
func (t *Tree) Len() int { return len(t.entries) }

// At returns the i-th entry in document order.
func (t *Tree) At(i int) Entry { return t.entries[i] }

// All iterates entries in document order.
func (t *Tree) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range t.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// Result looks up an entry by its exact path.
func (t *Tree) Result(path string) (Entry, bool) {
	i, ok := t.index[path]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Failures returns the entries whose actual outcome includes a failure.
func (t *Tree) Failures() []Entry {
	var out []Entry
	for _, e := range t.entries {
		if e.Actual.HasFailure() {
			out = append(out, e)
		}
	}
	return out
}

func (t *Tree) newEntry(path string, l leaf) Entry {
	e := Entry{
		Path:      path,
		Actual:    outcome.ParseString(l.Actual),
		Expected:  outcome.ParseString(l.Expected),
		Time:      l.Time,
		IsRefTest: len(l.ReftestType) > 0,
	}
	e.IsFlagSpecificFailure = t.flagSpecific(e, l)
	return e
}

func (t *Tree) flagSpecific(e Entry, l leaf) bool {
	worst, failed := e.Actual.SeverestFailure()
	if !failed {
		return false
	}
	if l.BaseExpectations != nil {
		base := outcome.Parse(outcome.Tokens(toTokens(*l.BaseExpectations)...))
		if base.Has(worst) {
			return false
		}
		cat, ok := worst.Category()
		if !ok {
			return true
		}
		return !base.Categories().Has(cat) && !hasCategoryName(*l.BaseExpectations, cat)
	}
	return t.FlagName != "" || strings.HasPrefix(e.Path, "virtual/")
}

func toTokens(ss []string) []outcome.Token {
	out := make([]outcome.Token, len(ss))
	for i, s := range ss {
		out[i] = outcome.Token(s)
	}
	return out
}

// hasCategoryName accepts base expectations written as category names
// ("Failure") as well as raw tokens ("IMAGE").
func hasCategoryName(ss []string, c outcome.Category) bool {
	for _, s := range ss {
		if outcome.Category(s) == c {
			return true
		}
	}
	return false
}
