// Package reconcile folds re-run results from try-job builds into a set of
// expectation records and reports what should change.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/dkoosis/deflake/internal/config"
	"github.com/dkoosis/deflake/internal/logging"
	"github.com/dkoosis/deflake/pkg/baseline"
	"github.com/dkoosis/deflake/pkg/expectation"
	"github.com/dkoosis/deflake/pkg/outcome"
	"github.com/dkoosis/deflake/pkg/results"
	"github.com/dkoosis/deflake/pkg/tryjob"
)

// ErrNoBuilds is returned when there is nothing left to process.
var ErrNoBuilds = errors.New("no builds to process")

// Fetcher retrieves the raw result document of one build.
type Fetcher interface {
	Fetch(ctx context.Context, buildID string) ([]byte, error)
}

// History remembers which builds earlier runs consumed.
type History interface {
	BeginRun(ctx context.Context, bug string, now time.Time) (string, error)
	RecordBuild(ctx context.Context, runID, buildID string, now time.Time) error
	Unseen(ctx context.Context, ids []string) ([]string, error)
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reconciler) { r.log = logging.OrNop(l) }
}

// WithHistory records consumed builds in h.
func WithHistory(h History) Option {
	return func(r *Reconciler) { r.history = h }
}

// WithClock overrides the time source used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// WithExistingPaths names tests that already have a line in the
// expectations file, managed or not. Failures of these paths never become
// new records.
func WithExistingPaths(paths map[string]bool) Option {
	return func(r *Reconciler) { r.existing = paths }
}

// Reconciler runs one reconciliation pass.
type Reconciler struct {
	cfg      config.Run
	fetcher  Fetcher
	log      *zap.Logger
	history  History
	now      func() time.Time
	existing map[string]bool
}

// New returns a Reconciler for cfg reading builds through f.
func New(cfg config.Run, f Fetcher, opts ...Option) *Reconciler {
	r := &Reconciler{
		cfg:     cfg.Clone(),
		fetcher: f,
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// observation is everything seen for one path across all builds.
type observation struct {
	raw     outcome.Set
	refTest bool
}

// Run fetches every build, folds its results into records, deflakes them and
// plans new records and rebaselines. Records are updated in place. Any fetch
// or load failure aborts the pass before a decision is made.
func (r *Reconciler) Run(ctx context.Context, records []*expectation.Record, buildIDs []string) (*Report, error) {
	ids := sortedIDs(buildIDs)
	report := &Report{}

	if r.history != nil && r.cfg.SkipSeen {
		unseen, err := r.history.Unseen(ctx, ids)
		if err != nil {
			return nil, err
		}
		report.Skipped = len(ids) - len(unseen)
		if report.Skipped > 0 {
			r.log.Info("skipping builds already processed", zap.Int("count", report.Skipped))
		}
		ids = unseen
	}
	if len(ids) == 0 {
		return nil, ErrNoBuilds
	}

	byPath := make(map[string]*expectation.Record, len(records))
	for _, rec := range records {
		if _, dup := byPath[rec.Path]; !dup {
			byPath[rec.Path] = rec
		}
	}

	observed := make(map[string]*observation)
	var newPaths []string

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.log.Debug("fetching build", zap.String("build", id))
		data, err := r.fetcher.Fetch(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", id, err)
		}
		tree, err := results.Load(data)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", id, err)
		}

		summary := BuildSummary{
			ID:          id,
			BuildNumber: tree.BuildNumber,
			Entries:     tree.Len(),
			Failures:    len(tree.Failures()),
		}
		for e := range tree.All() {
			obs := observed[e.Path]
			if obs == nil {
				obs = &observation{}
				observed[e.Path] = obs
			}
			obs.raw = obs.raw.Union(e.Actual)
			obs.refTest = obs.refTest || e.IsRefTest

			if rec, ok := byPath[e.Path]; ok {
				rec.AddActuals(e.Actual)
				continue
			}
			if r.isNewFailure(e) {
				newPaths = appendOnce(newPaths, e.Path)
			}
		}
		report.Builds = append(report.Builds, summary)
		r.log.Info("processed build",
			zap.String("build", id),
			zap.String("build_number", tree.BuildNumber),
			zap.Int("entries", summary.Entries),
			zap.Int("failures", summary.Failures))
	}

	for _, rec := range records {
		before := rec.Expected()
		decision := rec.Deflake()
		report.Records = append(report.Records, newRecordResult(rec, before, decision))
	}

	for _, p := range newPaths {
		obs := observed[p]
		expected := obs.raw.Categories().Intersect(r.cfg.Expects)
		if expected.IsEmpty() || expected.Equal(outcome.NewCategorySet(outcome.CategoryPass)) {
			r.log.Debug("expects filter leaves nothing to add", zap.String("path", p))
			continue
		}
		rec := expectation.New(r.cfg.Bug, p, expected)
		rec.AddActuals(obs.raw)
		report.added = append(report.added, rec)
		report.Added = append(report.Added, newRecordResult(rec, outcome.CategorySet{}, expectation.Keep))
	}

	report.Rebaselines = r.plan(records, report.added, observed)

	if err := r.record(ctx, report, ids); err != nil {
		return nil, err
	}
	return report, nil
}

// sortedIDs dedupes ids and orders them numerically.
func sortedIDs(ids []string) []string {
	out := slices.Clone(ids)
	slices.SortFunc(out, tryjob.CompareIDs)
	return slices.Compact(out)
}

func (r *Reconciler) isNewFailure(e results.Entry) bool {
	if !r.cfg.AddNew || !e.Actual.HasFailure() || r.existing[e.Path] {
		return false
	}
	if len(r.cfg.FlagSpecific) > 0 && !e.IsFlagSpecificFailure {
		return false
	}
	return true
}

func appendOnce(paths []string, p string) []string {
	if slices.Contains(paths, p) {
		return paths
	}
	return append(paths, p)
}

// plan lists baseline updates for failing, still-active, non-reftest paths.
func (r *Reconciler) plan(records, added []*expectation.Record, observed map[string]*observation) []Rebaseline {
	dirs := baseline.DirList(r.cfg.Platforms, r.cfg.FlagSpecific, r.cfg.BaselineRoot)
	var out []Rebaseline
	seen := make(map[string]bool)
	for _, rec := range append(append([]*expectation.Record(nil), records...), added...) {
		if rec.Removed() || seen[rec.Path] {
			continue
		}
		seen[rec.Path] = true
		obs := observed[rec.Path]
		raw := rec.ActualTokens()
		if obs == nil || obs.refTest || !raw.HasFailure() {
			continue
		}
		artifacts := baseline.Artifacts(rec.Path, raw)
		if len(artifacts) == 0 {
			continue
		}
		out = append(out, Rebaseline{Path: rec.Path, Dirs: dirs, Artifacts: artifacts})
	}
	return out
}

func (r *Reconciler) record(ctx context.Context, report *Report, ids []string) error {
	if r.history == nil {
		return nil
	}
	now := r.now()
	runID, err := r.history.BeginRun(ctx, r.cfg.Bug, now)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := r.history.RecordBuild(ctx, runID, id, now); err != nil {
			return err
		}
	}
	report.RunID = runID
	return nil
}
