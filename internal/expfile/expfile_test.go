package expfile_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/deflake/internal/expfile"
	"github.com/dkoosis/deflake/pkg/expectation"
	"github.com/dkoosis/deflake/pkg/outcome"
)

const sample = `# LayoutNG failures
crbug.com/1 fast/a.html [ Failure Pass ]
crbug.com/2 [ Linux Mac ] fast/b.html [ Crash Failure Pass ]  # flaky on bots

fast/c.html [ Failure ]
crbug.com/3 fast/slow.html [ Slow ]
`

func TestParse_Records(t *testing.T) {
	t.Parallel()

	f, err := expfile.Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, f.Lines, 6)

	recs := f.Records([]string{"linux"})
	require.Len(t, recs, 3)

	assert.Equal(t, "crbug.com/1", recs[0].Bug)
	assert.Equal(t, "fast/a.html", recs[0].Path)
	assert.Equal(t, "Failure Pass", recs[0].Expected().String())

	assert.Equal(t, "crbug.com/2", recs[1].Bug)
	assert.Equal(t, "fast/b.html", recs[1].Path)
	assert.Equal(t, []string{"Linux", "Mac"}, f.Lines[2].Tags)
	assert.Equal(t, "# flaky on bots", f.Lines[2].Comment)

	assert.Equal(t, "", recs[2].Bug)
	assert.Equal(t, "fast/c.html", recs[2].Path)

	assert.Nil(t, f.Lines[5].Record, "lines with modifiers are not managed")
	assert.Equal(t, "fast/slow.html", f.Lines[5].Path)
}

func TestRecords_TagsSelectPlatforms(t *testing.T) {
	t.Parallel()

	f, err := expfile.Parse(strings.NewReader(`crbug.com/1 [ Mac ] fast/a.html [ Failure ]
crbug.com/2 [ Mac11 ] fast/b.html [ Failure Pass ]
fast/c.html [ Crash ]
`))
	require.NoError(t, err)

	paths := func(recs []*expectation.Record) []string {
		var out []string
		for _, r := range recs {
			out = append(out, r.Path)
		}
		return out
	}
	assert.Equal(t, []string{"fast/c.html"}, paths(f.Records([]string{"linux"})))
	assert.Equal(t, []string{"fast/c.html"}, paths(f.Records(nil)), "tagged lines need a matching platform")
	assert.Equal(t, []string{"fast/a.html", "fast/c.html"}, paths(f.Records([]string{"MAC"})))
	assert.Equal(t, []string{"fast/a.html", "fast/b.html", "fast/c.html"}, paths(f.Records([]string{"mac-mac11"})))
}

func TestPaths_IncludesUnmanagedLines(t *testing.T) {
	t.Parallel()

	f, err := expfile.Parse(strings.NewReader(sample + "crbug.com/4 [ Win ] fast/d.html [ Failure Slow ]\n"))
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{
		"fast/a.html":    true,
		"fast/b.html":    true,
		"fast/c.html":    true,
		"fast/slow.html": true,
		"fast/d.html":    true,
	}, f.Paths())
}

func TestWrite_UnchangedRoundTrip(t *testing.T) {
	t.Parallel()

	f, err := expfile.Parse(strings.NewReader(sample))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf, nil))
	assert.Equal(t, sample, buf.String())
}

func TestWrite_AppliesDecisions(t *testing.T) {
	t.Parallel()

	f, err := expfile.Parse(strings.NewReader(sample))
	require.NoError(t, err)
	recs := f.Records([]string{"linux"})

	recs[0].AddActuals(outcome.ParseString("PASS"))
	recs[0].Deflake()
	recs[1].AddActuals(outcome.ParseString("TEXT"))
	recs[1].Deflake()

	added := expectation.New("9", "fast/new.html", outcome.NewCategorySet(outcome.CategoryTimeout))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf, []*expectation.Record{added}))

	want := `# LayoutNG failures
crbug.com/2 [ Linux Mac ] fast/b.html [ Failure ] # flaky on bots

fast/c.html [ Failure ]
crbug.com/3 fast/slow.html [ Slow ]
crbug.com/9 fast/new.html [ Timeout ]
`
	assert.Equal(t, want, buf.String())
}

func TestFormat(t *testing.T) {
	t.Parallel()

	r := expectation.New("", "a/b.html", outcome.NewCategorySet(outcome.CategoryPass, outcome.CategoryCrash))
	assert.Equal(t, "a/b.html [ Crash Pass ]", expfile.Format(r, nil, ""))
	assert.Equal(t, "a/b.html [ Crash Pass ] # x", expfile.Format(r, nil, "# x"))
}
