package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/deflake/pkg/outcome"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DEFLAKE_BUG", "DEFLAKE_HISTORY", "DEFLAKE_DEBUG", "DEFLAKE_NO_COLOR", "NO_COLOR"} {
		t.Setenv(k, "")
	}
}

// unsetEnv removes key for the duration of the test so LookupEnv reports it absent.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	_ = os.Unsetenv(key)
}

func TestParseExpects(t *testing.T) {
	tests := []struct {
		spec string
		want outcome.CategorySet
	}{
		{"", outcome.CategorySet{}},
		{"-Pass", outcome.NewCategorySet(outcome.CategoryFailure, outcome.CategoryCrash, outcome.CategoryTimeout)},
		{"Failure,Crash", outcome.NewCategorySet(outcome.CategoryFailure, outcome.CategoryCrash)},
		{" Failure , Skip ", outcome.NewCategorySet(outcome.CategoryFailure, outcome.CategorySkip)},
		{"-Pass,-Timeout", outcome.NewCategorySet(outcome.CategoryFailure, outcome.CategoryCrash)},
		{"Failure,-Failure", outcome.CategorySet{}},
	}
	for _, tt := range tests {
		got, err := ParseExpects(tt.spec)
		require.NoError(t, err, tt.spec)
		assert.True(t, tt.want.Equal(got), "ParseExpects(%q) = %s, want %s", tt.spec, got, tt.want)
	}
}

func TestParseExpects_UnknownCategory(t *testing.T) {
	_, err := ParseExpects("Failure,Flaky")
	assert.ErrorIs(t, err, ErrInvalidExpects)
}

func TestResolve_Defaults(t *testing.T) {
	clearEnv(t)
	unsetEnv(t, "DEFLAKE_EXPECTS")

	run, err := Resolve(Flags{}, nil)
	require.NoError(t, err)
	assert.True(t, DefaultExpects.Equal(run.Expects))
	assert.Equal(t, "default", run.ExpectsSource)
	assert.Equal(t, FormatAuto, run.Format)
	assert.Equal(t, "default", run.Theme)
	assert.True(t, run.AddNew)
	assert.False(t, run.SkipSeen)
	assert.Empty(t, run.Bug)
}

func TestResolve_PriorityOrder(t *testing.T) {
	fileExpects := "Crash"
	file := &FileConfig{Bug: "1", Expects: &fileExpects, Platforms: []string{"linux"}}

	tests := []struct {
		name        string
		flags       Flags
		env         map[string]string
		wantBug     string
		wantSource  string
		wantExpects outcome.CategorySet
	}{
		{
			name:        "file only",
			wantBug:     "crbug.com/1",
			wantSource:  "file",
			wantExpects: outcome.NewCategorySet(outcome.CategoryCrash),
		},
		{
			name:        "env over file",
			env:         map[string]string{"DEFLAKE_BUG": "2", "DEFLAKE_EXPECTS": "Timeout"},
			wantBug:     "crbug.com/2",
			wantSource:  "env",
			wantExpects: outcome.NewCategorySet(outcome.CategoryTimeout),
		},
		{
			name:        "cli over env",
			flags:       Flags{Bug: "3", BugSet: true, Expects: "", ExpectsSet: true},
			env:         map[string]string{"DEFLAKE_BUG": "2", "DEFLAKE_EXPECTS": "Timeout"},
			wantBug:     "crbug.com/3",
			wantSource:  "cli",
			wantExpects: outcome.CategorySet{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			unsetEnv(t, "DEFLAKE_EXPECTS")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			run, err := Resolve(tt.flags, file)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBug, run.Bug)
			assert.Equal(t, tt.wantSource, run.ExpectsSource)
			assert.True(t, tt.wantExpects.Equal(run.Expects), "expects = %s", run.Expects)
			assert.Equal(t, []string{"linux"}, run.Platforms)
		})
	}
}

func TestResolve_FlagsOverrideLists(t *testing.T) {
	clearEnv(t)
	unsetEnv(t, "DEFLAKE_EXPECTS")

	file := &FileConfig{Platforms: []string{"linux"}, FlagSpecific: []string{"a"}, History: "file.db"}
	run, err := Resolve(Flags{Platforms: []string{"mac", "win"}, History: "cli.db", NoColor: true, NoColorSet: true}, file)
	require.NoError(t, err)
	assert.Equal(t, []string{"mac", "win"}, run.Platforms)
	assert.Equal(t, []string{"a"}, run.FlagSpecific)
	assert.Equal(t, "cli.db", run.History)
	assert.True(t, run.NoColor)
}

func TestResolve_EnvBooleans(t *testing.T) {
	clearEnv(t)
	unsetEnv(t, "DEFLAKE_EXPECTS")
	t.Setenv("DEFLAKE_DEBUG", "true")
	t.Setenv("NO_COLOR", "1")

	run, err := Resolve(Flags{}, nil)
	require.NoError(t, err)
	assert.True(t, run.Debug)
	assert.True(t, run.NoColor)
}

func TestResolve_NoColorAnyValue(t *testing.T) {
	for _, val := range []string{"1", "yes", "anything"} {
		t.Run(val, func(t *testing.T) {
			clearEnv(t)
			unsetEnv(t, "DEFLAKE_EXPECTS")
			t.Setenv("NO_COLOR", val)

			run, err := Resolve(Flags{}, nil)
			require.NoError(t, err)
			assert.True(t, run.NoColor)
		})
	}

	clearEnv(t)
	unsetEnv(t, "DEFLAKE_EXPECTS")
	t.Setenv("NO_COLOR", "yes")
	t.Setenv("DEFLAKE_NO_COLOR", "false")
	run, err := Resolve(Flags{}, nil)
	require.NoError(t, err)
	assert.False(t, run.NoColor, "DEFLAKE_NO_COLOR takes precedence")
}

func TestResolve_Validation(t *testing.T) {
	clearEnv(t)
	unsetEnv(t, "DEFLAKE_EXPECTS")

	_, err := Resolve(Flags{Format: "xml"}, nil)
	assert.Error(t, err)

	_, err = Resolve(Flags{Theme: "neon"}, nil)
	assert.Error(t, err)

	_, err = Resolve(Flags{ResultsDir: "a", ResultsURL: "http://b/{build}"}, nil)
	assert.Error(t, err)

	_, err = Resolve(Flags{Expects: "Nope", ExpectsSet: true}, nil)
	assert.ErrorIs(t, err, ErrInvalidExpects)
}

func TestRun_CloneSharesNoSlices(t *testing.T) {
	run := Run{Platforms: []string{"linux"}, FlagSpecific: []string{"a"}}
	c := run.Clone()
	c.Platforms[0] = "mac"
	c.FlagSpecific[0] = "b"
	assert.Equal(t, "linux", run.Platforms[0])
	assert.Equal(t, "a", run.FlagSpecific[0])
}
