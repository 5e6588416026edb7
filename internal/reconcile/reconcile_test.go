package reconcile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dkoosis/deflake/internal/config"
	"github.com/dkoosis/deflake/internal/history"
	"github.com/dkoosis/deflake/internal/reconcile"
	"github.com/dkoosis/deflake/pkg/baseline"
	"github.com/dkoosis/deflake/pkg/expectation"
	"github.com/dkoosis/deflake/pkg/outcome"
	"github.com/dkoosis/deflake/pkg/results"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeFetcher struct {
	docs  map[string]string
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, id string) ([]byte, error) {
	f.calls = append(f.calls, id)
	doc, ok := f.docs[id]
	if !ok {
		return nil, errors.New("no such build")
	}
	return []byte(doc), nil
}

const build1 = `{
  "build_number": "1",
  "tests": {
    "fast": {
      "a.html": {"actual": "PASS", "expected": "FAIL PASS"},
      "b.html": {"actual": "TEXT", "expected": "CRASH FAIL PASS"},
      "c.html": {"actual": "TEXT", "expected": "FAIL"},
      "d.html": {"actual": "IMAGE", "expected": "PASS"},
      "ref.html": {"actual": "IMAGE", "expected": "PASS", "reftest_type": ["=="]},
      "skipped.html": {"actual": "SKIP", "expected": "SKIP"}
    }
  }
}`

const build2 = `{
  "build_number": "2",
  "tests": {
    "fast": {
      "a.html": {"actual": "PASS", "expected": "FAIL PASS"},
      "b.html": {"actual": "PASS", "expected": "CRASH FAIL PASS"},
      "d.html": {"actual": "PASS", "expected": "PASS"}
    }
  }
}`

func cats(cs ...outcome.Category) outcome.CategorySet {
	return outcome.NewCategorySet(cs...)
}

func baseConfig() config.Run {
	return config.Run{
		Bug:          "42",
		Expects:      config.DefaultExpects,
		Platforms:    []string{"linux"},
		BaselineRoot: "web_tests",
		AddNew:       true,
	}
}

func existingRecords() []*expectation.Record {
	return []*expectation.Record{
		expectation.New("1", "fast/a.html", cats(outcome.CategoryFailure, outcome.CategoryPass)),
		expectation.New("2", "fast/b.html", cats(outcome.CategoryCrash, outcome.CategoryFailure, outcome.CategoryPass)),
		expectation.New("3", "fast/c.html", cats(outcome.CategoryFailure)),
		expectation.New("4", "fast/untouched.html", cats(outcome.CategoryFailure, outcome.CategoryPass)),
	}
}

func TestRun_Decisions(t *testing.T) {
	f := &fakeFetcher{docs: map[string]string{"1": build1, "2": build2}}
	recs := existingRecords()

	report, err := reconcile.New(baseConfig(), f).Run(context.Background(), recs, []string{"2", "1", "2"})
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, f.calls, "builds are deduplicated and processed in numeric order")
	require.Len(t, report.Builds, 2)
	assert.Equal(t, reconcile.BuildSummary{ID: "1", BuildNumber: "1", Entries: 6, Failures: 4}, report.Builds[0])

	require.Len(t, report.Records, 4)
	assert.Equal(t, expectation.Remove, report.Records[0].Decision)
	assert.True(t, recs[0].Removed())

	assert.Equal(t, expectation.Narrow, report.Records[1].Decision)
	assert.Equal(t, "Failure Pass", recs[1].Expected().String())
	assert.Equal(t, []outcome.Category{outcome.CategoryCrash, outcome.CategoryFailure, outcome.CategoryPass}, report.Records[1].Before)

	assert.Equal(t, expectation.Keep, report.Records[2].Decision, "Pass never allowed")
	assert.Equal(t, expectation.Keep, report.Records[3].Decision, "no evidence")

	assert.Equal(t, 1, report.Count(expectation.Remove))
	assert.Equal(t, 1, report.Count(expectation.Narrow))
	assert.True(t, report.Changed())
}

func TestRun_NewRecords(t *testing.T) {
	f := &fakeFetcher{docs: map[string]string{"1": build1, "2": build2}}

	report, err := reconcile.New(baseConfig(), f).Run(context.Background(), existingRecords(), []string{"1", "2"})
	require.NoError(t, err)

	added := report.NewRecords()
	require.Len(t, added, 2)
	assert.Equal(t, "fast/d.html", added[0].Path)
	assert.Equal(t, "crbug.com/42", added[0].Bug)
	assert.Equal(t, "Failure Pass", added[0].Expected().String())
	assert.Equal(t, "fast/ref.html", added[1].Path)
	assert.Equal(t, "Failure", added[1].Expected().String())
	assert.Len(t, report.Added, 2)
}

func TestRun_ExpectsFilterAndAddNew(t *testing.T) {
	cfg := baseConfig()
	cfg.Expects = cats(outcome.CategoryPass, outcome.CategoryCrash)
	f := &fakeFetcher{docs: map[string]string{"1": build1, "2": build2}}

	report, err := reconcile.New(cfg, f).Run(context.Background(), nil, []string{"1", "2"})
	require.NoError(t, err)
	assert.Empty(t, report.NewRecords(), "a filter leaving only Pass adds nothing")

	cfg = baseConfig()
	cfg.AddNew = false
	f.calls = nil
	report, err = reconcile.New(cfg, f).Run(context.Background(), nil, []string{"1"})
	require.NoError(t, err)
	assert.Empty(t, report.NewRecords())
}

func TestRun_Rebaselines(t *testing.T) {
	f := &fakeFetcher{docs: map[string]string{"1": build1, "2": build2}}

	report, err := reconcile.New(baseConfig(), f).Run(context.Background(), existingRecords(), []string{"1", "2"})
	require.NoError(t, err)

	var paths []string
	for _, rb := range report.Rebaselines {
		paths = append(paths, rb.Path)
	}
	assert.Equal(t, []string{"fast/b.html", "fast/c.html", "fast/d.html"}, paths,
		"removed records and reftests get no baselines")

	assert.Equal(t, []string{"web_tests/platform/linux", "web_tests"}, report.Rebaselines[0].Dirs)
	assert.Equal(t, []baseline.Artifact{{Source: "fast/d-actual.png", Dest: "fast/d-expected.png"}}, report.Rebaselines[2].Artifacts)
}

func TestRun_FlagSpecificOnlyAddsFlagFailures(t *testing.T) {
	cfg := baseConfig()
	cfg.FlagSpecific = []string{"enable-foo"}
	doc := `{"tests": {
		"x.html": {"actual": "TEXT", "expected": "PASS", "base_expectations": ["TEXT"]},
		"y.html": {"actual": "CRASH", "expected": "PASS", "base_expectations": ["TEXT"]}
	}}`
	f := &fakeFetcher{docs: map[string]string{"5": doc}}

	report, err := reconcile.New(cfg, f).Run(context.Background(), nil, []string{"5"})
	require.NoError(t, err)
	require.Len(t, report.NewRecords(), 1)
	assert.Equal(t, "y.html", report.NewRecords()[0].Path)
	assert.Empty(t, report.Rebaselines, "crashes have no baseline artifacts")
}

func TestRun_ExistingPathsAreNotAdded(t *testing.T) {
	f := &fakeFetcher{docs: map[string]string{"1": build1}}
	existing := map[string]bool{"fast/b.html": true, "fast/c.html": true, "fast/d.html": true}

	report, err := reconcile.New(baseConfig(), f, reconcile.WithExistingPaths(existing)).
		Run(context.Background(), nil, []string{"1"})
	require.NoError(t, err)

	added := report.NewRecords()
	require.Len(t, added, 1)
	assert.Equal(t, "fast/ref.html", added[0].Path)
}

func TestRun_AbortsOnFetchOrLoadError(t *testing.T) {
	recs := existingRecords()
	f := &fakeFetcher{docs: map[string]string{"1": build1}}

	_, err := reconcile.New(baseConfig(), f).Run(context.Background(), recs, []string{"1", "9"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build 9")
	assert.False(t, recs[0].Removed(), "no decisions on a failed pass")

	f = &fakeFetcher{docs: map[string]string{"1": "{not json"}}
	_, err = reconcile.New(baseConfig(), f).Run(context.Background(), recs, []string{"1"})
	assert.ErrorIs(t, err, results.ErrMalformed)
}

func TestRun_NoBuilds(t *testing.T) {
	_, err := reconcile.New(baseConfig(), &fakeFetcher{}).Run(context.Background(), nil, nil)
	assert.ErrorIs(t, err, reconcile.ErrNoBuilds)
}

func TestRun_HistorySkipsSeenBuilds(t *testing.T) {
	ctx := context.Background()
	store, err := history.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer store.Close()

	clock := func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	cfg := baseConfig()
	cfg.SkipSeen = true
	f := &fakeFetcher{docs: map[string]string{"1": build1, "2": build2}}

	report, err := reconcile.New(cfg, f, reconcile.WithHistory(store), reconcile.WithClock(clock)).
		Run(ctx, existingRecords(), []string{"1"})
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)

	f.calls = nil
	report, err = reconcile.New(cfg, f, reconcile.WithHistory(store), reconcile.WithClock(clock)).
		Run(ctx, existingRecords(), []string{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, f.calls)
	assert.Equal(t, 1, report.Skipped)

	_, err = reconcile.New(cfg, f, reconcile.WithHistory(store)).Run(ctx, nil, []string{"1", "2"})
	assert.ErrorIs(t, err, reconcile.ErrNoBuilds)
}
