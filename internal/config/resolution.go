package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/dkoosis/deflake/pkg/expectation"
	"github.com/dkoosis/deflake/pkg/outcome"
)

// ErrInvalidExpects is returned for an --expects value naming an unknown category.
var ErrInvalidExpects = errors.New("invalid expected-outcome filter")

// DefaultExpects is the filter used when none is configured.
var DefaultExpects = outcome.NewCategorySet(
	outcome.CategoryPass,
	outcome.CategoryFailure,
	outcome.CategoryCrash,
	outcome.CategoryTimeout,
)

// Output formats.
const (
	FormatAuto     = "auto"
	FormatTerminal = "terminal"
	FormatText     = "text"
	FormatJSON     = "json"
)

// Flags holds command-line values and whether each was explicitly set.
type Flags struct {
	Bug          string
	Expects      string
	Platforms    []string
	FlagSpecific []string
	BaselineRoot string
	ResultsDir   string
	ResultsURL   string
	History      string
	SkipSeen     bool
	AddNew       bool
	Debug        bool
	NoColor      bool
	Format       string
	Theme        string

	BugSet      bool
	ExpectsSet  bool
	SkipSeenSet bool
	AddNewSet   bool
	DebugSet    bool
	NoColorSet  bool
}

// Run is the resolved, read-only configuration of one reconciliation pass.
type Run struct {
	Bug          string
	Expects      outcome.CategorySet
	Platforms    []string
	FlagSpecific []string
	BaselineRoot string
	ResultsDir   string
	ResultsURL   string
	History      string
	SkipSeen     bool
	AddNew       bool
	Debug        bool
	NoColor      bool
	Format       string
	Theme        string

	// ExpectsSource records where Expects came from: "cli", "env", "file" or "default".
	ExpectsSource string
}

// Clone returns a copy that shares no slices with r.
func (r Run) Clone() Run {
	r.Platforms = slices.Clone(r.Platforms)
	r.FlagSpecific = slices.Clone(r.FlagSpecific)
	return r
}

// Resolve merges flags, environment, file and defaults, highest priority first.
func Resolve(flags Flags, file *FileConfig) (Run, error) {
	if file == nil {
		file = &FileConfig{}
	}
	run := Run{
		Bug:           file.Bug,
		Expects:       DefaultExpects,
		ExpectsSource: "default",
		Platforms:     slices.Clone(file.Platforms),
		FlagSpecific:  slices.Clone(file.FlagSpecific),
		BaselineRoot:  file.BaselineRoot,
		ResultsDir:    file.ResultsDir,
		ResultsURL:    file.ResultsURL,
		History:       file.History,
		AddNew:        true,
		Debug:         file.Debug,
		NoColor:       file.NoColor,
		Format:        FormatAuto,
		Theme:         "default",
	}
	if file.SkipSeen != nil {
		run.SkipSeen = *file.SkipSeen
	}
	if file.AddNew != nil {
		run.AddNew = *file.AddNew
	}
	if file.Format != "" {
		run.Format = file.Format
	}
	if file.Theme != "" {
		run.Theme = file.Theme
	}

	// Expects: CLI > ENV > file > default
	expectsSpec, source := "", ""
	if flags.ExpectsSet {
		expectsSpec, source = flags.Expects, "cli"
	} else if v, ok := os.LookupEnv("DEFLAKE_EXPECTS"); ok {
		expectsSpec, source = v, "env"
	} else if file.Expects != nil {
		expectsSpec, source = *file.Expects, "file"
	}
	if source != "" {
		cs, err := ParseExpects(expectsSpec)
		if err != nil {
			return Run{}, err
		}
		run.Expects, run.ExpectsSource = cs, source
	}

	// Bug: CLI > ENV > file
	if flags.BugSet {
		run.Bug = flags.Bug
	} else if v := os.Getenv("DEFLAKE_BUG"); v != "" {
		run.Bug = v
	}
	run.Bug = expectation.NormalizeBug(run.Bug)

	if len(flags.Platforms) > 0 {
		run.Platforms = slices.Clone(flags.Platforms)
	}
	if len(flags.FlagSpecific) > 0 {
		run.FlagSpecific = slices.Clone(flags.FlagSpecific)
	}
	if flags.BaselineRoot != "" {
		run.BaselineRoot = flags.BaselineRoot
	}
	if flags.ResultsDir != "" {
		run.ResultsDir = flags.ResultsDir
	}
	if flags.ResultsURL != "" {
		run.ResultsURL = flags.ResultsURL
	}

	if flags.History != "" {
		run.History = flags.History
	} else if v := os.Getenv("DEFLAKE_HISTORY"); v != "" {
		run.History = v
	}
	if flags.SkipSeenSet {
		run.SkipSeen = flags.SkipSeen
	}
	if flags.AddNewSet {
		run.AddNew = flags.AddNew
	}

	if flags.DebugSet {
		run.Debug = flags.Debug
	} else if b := getEnvBool("DEFLAKE_DEBUG"); b != nil {
		run.Debug = *b
	}
	if flags.NoColorSet {
		run.NoColor = flags.NoColor
	} else if b := getEnvBool("DEFLAKE_NO_COLOR"); b != nil {
		run.NoColor = *b
	} else if os.Getenv("NO_COLOR") != "" {
		run.NoColor = true
	}
	if flags.Format != "" {
		run.Format = flags.Format
	}
	if flags.Theme != "" {
		run.Theme = flags.Theme
	}

	if err := validate(run); err != nil {
		return Run{}, fmt.Errorf("config validation failed: %w", err)
	}
	return run, nil
}

// ParseExpects parses the expected-outcome filter. Items prefixed with "-"
// are removed; if every item is a removal, removal starts from DefaultExpects.
func ParseExpects(spec string) (outcome.CategorySet, error) {
	var items []string
	for _, item := range strings.Split(spec, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return outcome.CategorySet{}, nil
	}

	set := DefaultExpects
	for _, item := range items {
		if !strings.HasPrefix(item, "-") {
			set = outcome.CategorySet{}
			break
		}
	}
	for _, item := range items {
		name, remove := strings.CutPrefix(item, "-")
		c, ok := outcome.ParseCategory(name)
		if !ok {
			return outcome.CategorySet{}, fmt.Errorf("%w: unknown category %q", ErrInvalidExpects, name)
		}
		if remove {
			set = set.Without(c)
		} else {
			set = set.With(c)
		}
	}
	return set, nil
}

// getEnvBool reads a boolean from environment variables, trying multiple keys.
// Returns nil if none are set.
func getEnvBool(keys ...string) *bool {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				return &b
			}
		}
	}
	return nil
}

func validate(run Run) error {
	switch run.Format {
	case FormatAuto, FormatTerminal, FormatText, FormatJSON:
	default:
		return fmt.Errorf("invalid format %q (must be: auto, terminal, text, json)", run.Format)
	}
	switch run.Theme {
	case "default", "mono":
	default:
		return fmt.Errorf("invalid theme %q (must be: default, mono)", run.Theme)
	}
	if run.ResultsDir != "" && run.ResultsURL != "" {
		return errors.New("results_dir and results_url are mutually exclusive")
	}
	return nil
}
