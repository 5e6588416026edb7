package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dkoosis/deflake/internal/expfile"
	"github.com/dkoosis/deflake/internal/fetch"
	"github.com/dkoosis/deflake/internal/history"
	"github.com/dkoosis/deflake/internal/mapper"
	"github.com/dkoosis/deflake/internal/reconcile"
	"github.com/dkoosis/deflake/pkg/expectation"
	"github.com/dkoosis/deflake/pkg/tryjob"
)

type updateOptions struct {
	expectations string
	tryjobs      string
	write        bool
	check        bool
}

func newUpdateCmd(a *app) *cobra.Command {
	var opts updateOptions
	cmd := &cobra.Command{
		Use:   "update [build-id...]",
		Short: "Deflake expectations using results from try-job builds",
		Long: `Fetch the result document of every build, fold the observed outcomes into
the records of the expectations file and report which records can be removed
or narrowed. Failing tests without a record get a new one, filtered by
--expects. Nothing is written unless --write is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUpdate(cmd.Context(), opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&a.flags.Bug, "bug", "b", "", "bug for new expectations (a bare number becomes crbug.com/N)")
	f.StringVarP(&a.flags.Expects, "expects", "e", "", "outcome filter for new expectations, e.g. Failure,Pass or -Timeout")
	f.StringSliceVar(&a.flags.Platforms, "platform", nil, "platform baseline directories, most specific first")
	f.StringSliceVar(&a.flags.FlagSpecific, "flag-specific", nil, "flag-specific suites the builds ran")
	f.StringVar(&a.flags.BaselineRoot, "baseline-root", "", "web tests root used for baseline directories")
	f.StringVar(&a.flags.ResultsDir, "results-dir", "", "directory holding <build>.json or <build>/full_results.json")
	f.StringVar(&a.flags.ResultsURL, "results-url", "", "result document URL template containing "+fetch.BuildPlaceholder)
	f.StringVar(&a.flags.History, "history", "", "build history database")
	f.BoolVar(&a.flags.SkipSeen, "skip-seen", false, "skip builds recorded by earlier runs (needs --history)")
	f.BoolVar(&a.flags.AddNew, "add-new", true, "add expectations for failing tests that have none")
	f.StringVar(&opts.expectations, "expectations", "", "TestExpectations file to reconcile")
	f.StringVar(&opts.tryjobs, "tryjobs", "", "try-job listing to take build ids from (- for stdin)")
	f.BoolVar(&opts.write, "write", false, "rewrite the expectations file in place")
	f.BoolVar(&opts.check, "check", false, "exit 1 when expectations would change")
	_ = cmd.MarkFlagRequired("expectations")
	return cmd
}

func (a *app) runUpdate(ctx context.Context, opts updateOptions, args []string) error {
	ids := slices.Clone(args)
	if opts.tryjobs != "" {
		listing, err := a.readInput(opts.tryjobs)
		if err != nil {
			return err
		}
		res, err := tryjob.Parse(listing)
		if err != nil {
			return fmt.Errorf("parsing try-job listing: %w", err)
		}
		a.log.Info("parsed try-job listing",
			zap.Stringer("shape", res.Shape),
			zap.Int("jobs", len(res.Jobs)),
			zap.Int("skipped", res.Skipped))
		ids = append(ids, res.IDs()...)
	}

	fetcher, err := a.fetcher()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(opts.expectations)
	if err != nil {
		return err
	}
	exp, err := expfile.Parse(bytes.NewReader(data))
	if err != nil {
		return err
	}

	ropts := []reconcile.Option{
		reconcile.WithLogger(a.log),
		reconcile.WithExistingPaths(exp.Paths()),
	}
	if a.cfg.SkipSeen && a.cfg.History == "" {
		return errors.New("--skip-seen needs a history database (--history)")
	}
	if a.cfg.History != "" {
		store, err := history.Open(ctx, a.cfg.History)
		if err != nil {
			return err
		}
		defer store.Close()
		ropts = append(ropts, reconcile.WithHistory(store))
	}

	report, err := reconcile.New(a.cfg, fetcher, ropts...).Run(ctx, exp.Records(a.cfg.Platforms), ids)
	if err != nil {
		return err
	}

	if opts.write && report.Changed() {
		if err := writeExpectations(opts.expectations, exp, report.NewRecords()); err != nil {
			return err
		}
		a.log.Info("expectations updated", zap.String("path", opts.expectations))
	}

	if a.jsonMode() {
		err = a.emitJSON(report)
	} else {
		err = a.emit(mapper.FromReport(report))
	}
	if err != nil {
		return err
	}
	if opts.check && report.Changed() {
		return &codeError{code: exitChanged}
	}
	return nil
}

func (a *app) fetcher() (reconcile.Fetcher, error) {
	switch {
	case a.cfg.ResultsDir != "":
		return fetch.NewDir(a.cfg.ResultsDir), nil
	case a.cfg.ResultsURL != "":
		return fetch.NewHTTP(a.cfg.ResultsURL), nil
	default:
		return nil, errors.New("one of --results-dir or --results-url is required")
	}
}

// readInput reads a file, or stdin for "-".
func (a *app) readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(a.stdin)
	}
	return os.ReadFile(path)
}

// writeExpectations replaces path atomically, keeping its permissions.
func writeExpectations(path string, exp *expfile.File, added []*expectation.Record) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".deflake-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := exp.Write(tmp, added); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
