package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dkoosis/deflake/internal/mapper"
	"github.com/dkoosis/deflake/pkg/baseline"
	"github.com/dkoosis/deflake/pkg/outcome"
)

func newBaselinesCmd(a *app) *cobra.Command {
	var actualDir string
	cmd := &cobra.Command{
		Use:   "baselines <test-path> [outcome...]",
		Short: "Show baseline directories and rebaseline artifacts for a test",
		Long: `Print the directories searched for the test's baselines, most specific
first, and the actual/expected artifact pairs a rebaseline would copy for the
given outcome tokens (e.g. IMAGE TEXT). With --actual-dir, image artifacts are
read from that directory and checked for a valid PNG signature.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			testPath := args[0]
			tokens := make([]outcome.Token, 0, len(args)-1)
			for _, s := range args[1:] {
				tokens = append(tokens, outcome.Token(strings.ToUpper(s)))
			}
			actual := outcome.Parse(outcome.Tokens(tokens...))

			dirs := baseline.DirList(a.cfg.Platforms, a.cfg.FlagSpecific, a.cfg.BaselineRoot)
			artifacts := baseline.Artifacts(testPath, actual)

			problems := make(map[string]error)
			if actualDir != "" {
				for _, art := range artifacts {
					if filepath.Ext(art.Source) != ".png" {
						continue
					}
					data, err := os.ReadFile(filepath.Join(actualDir, filepath.FromSlash(art.Source)))
					if err == nil {
						err = baseline.CheckPNG(data)
					}
					if err != nil {
						problems[art.Source] = err
					}
				}
			}

			if err := a.emit(mapper.FromBaselines(testPath, dirs, artifacts, problems)); err != nil {
				return err
			}
			if len(problems) > 0 {
				return &codeError{code: exitChanged}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&a.flags.Platforms, "platform", nil, "platform baseline directories, most specific first")
	f.StringSliceVar(&a.flags.FlagSpecific, "flag-specific", nil, "flag-specific suites")
	f.StringVar(&a.flags.BaselineRoot, "baseline-root", "", "web tests root used for baseline directories")
	f.StringVar(&actualDir, "actual-dir", "", "directory holding *-actual.* files to verify")
	return cmd
}
