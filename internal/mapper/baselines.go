package mapper

import (
	"fmt"
	"strconv"

	"github.com/dkoosis/deflake/pkg/baseline"
	"github.com/dkoosis/deflake/pkg/pattern"
)

// FromBaselines shows where a test's baselines are looked up and which
// artifacts a rebaseline would copy. problems maps an artifact source to the
// error found while verifying it.
func FromBaselines(testPath string, dirs []string, artifacts []baseline.Artifact, problems map[string]error) []pattern.Pattern {
	kind := kindSuccess
	if len(problems) > 0 {
		kind = "error"
	}
	patterns := []pattern.Pattern{&pattern.Summary{
		Label: testPath,
		Kind:  pattern.SummaryKindBaselines,
		Metrics: []pattern.SummaryItem{
			{Label: "directories", Value: strconv.Itoa(len(dirs)), Kind: kindInfo},
			{Label: "artifacts", Value: strconv.Itoa(len(artifacts)), Kind: kindInfo},
			{Label: "invalid", Value: strconv.Itoa(len(problems)), Kind: kind},
		},
	}}

	dirRows := make([]pattern.TestTableItem, len(dirs))
	for i, d := range dirs {
		name := d
		if name == "" {
			name = "."
		}
		dirRows[i] = pattern.TestTableItem{Name: name, Status: pattern.StatusInfo, Tag: fmt.Sprintf("#%d", i+1)}
	}
	patterns = append(patterns, &pattern.TestTable{Label: "lookup order", Source: "dirs", Results: dirRows})

	if len(artifacts) > 0 {
		rows := make([]pattern.TestTableItem, len(artifacts))
		for i, art := range artifacts {
			rows[i] = pattern.TestTableItem{Name: art.Source, Status: pattern.StatusInfo, Details: "→ " + art.Dest}
			if err := problems[art.Source]; err != nil {
				rows[i].Status = pattern.StatusFail
				rows[i].Details += "\n" + err.Error()
			}
		}
		patterns = append(patterns, &pattern.TestTable{Label: "artifacts", Source: "artifacts", Results: rows})
	}
	return patterns
}
