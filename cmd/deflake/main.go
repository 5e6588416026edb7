// deflake removes or narrows stale web-test expectations using re-run
// results collected from try-job builds.
//
// Usage:
//
//	deflake update --expectations TestExpectations --results-dir out/ 8812 8813
//	deflake update --expectations TestExpectations --results-dir out/ --tryjobs tryjobs.json --write
//	deflake tryjobs listing.txt --ids
//	deflake baselines fast/dom/a.html IMAGE TEXT --platform linux
//	deflake history
//
// Output modes (auto-detected):
//
//	terminal  styled output (default when stdout is a TTY)
//	text      terse plain text (default when piped)
//	json      structured JSON for automation
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dkoosis/deflake/internal/config"
	"github.com/dkoosis/deflake/internal/logging"
)

// Exit codes.
const (
	exitOK      = 0
	exitChanged = 1 // update --check found stale expectations
	exitError   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// app carries per-invocation state shared by every subcommand.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	flags      config.Flags
	cfg        config.Run
	log        *zap.Logger
}

// codeError lets a command choose a non-zero exit code without printing.
type codeError struct{ code int }

func (e *codeError) Error() string { return fmt.Sprintf("exit %d", e.code) }

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, log: zap.NewNop()}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		var ee *codeError
		if errors.As(err, &ee) {
			return ee.code
		}
		fmt.Fprintf(stderr, "deflake: %v\n", err)
		return exitError
	}
	return exitOK
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "deflake",
		Short:         "Reconcile flaky test expectations against try-job re-runs",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.configure(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default .deflake.yaml or <config dir>/deflake/config.yaml)")
	pf.BoolVar(&a.flags.Debug, "debug", false, "enable debug logging")
	pf.BoolVar(&a.flags.NoColor, "no-color", false, "disable colored output")
	pf.StringVar(&a.flags.Format, "format", "", "output format: auto, terminal, text, json")
	pf.StringVar(&a.flags.Theme, "theme", "", "terminal theme: default, mono")

	root.AddCommand(
		newUpdateCmd(a),
		newTryJobsCmd(a),
		newBaselinesCmd(a),
		newHistoryCmd(a),
		newVersionCmd(a),
	)
	return root
}

// configure resolves configuration and the logger once flags are parsed.
func (a *app) configure(cmd *cobra.Command) error {
	var file *config.FileConfig
	var err error
	if a.configPath != "" {
		file, err = config.LoadFile(a.configPath)
	} else {
		file, a.configPath, err = config.Load()
	}
	if err != nil {
		return err
	}

	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	a.flags.BugSet = changed("bug")
	a.flags.ExpectsSet = changed("expects")
	a.flags.SkipSeenSet = changed("skip-seen")
	a.flags.AddNewSet = changed("add-new")
	a.flags.DebugSet = changed("debug")
	a.flags.NoColorSet = changed("no-color")

	a.cfg, err = config.Resolve(a.flags, file)
	if err != nil {
		return err
	}

	a.log = logging.New(a.stderr, a.cfg.Debug)
	a.log.Debug("configuration resolved",
		zap.String("config_file", a.configPath),
		zap.String("expects", a.cfg.Expects.String()),
		zap.String("expects_source", a.cfg.ExpectsSource))
	return nil
}
