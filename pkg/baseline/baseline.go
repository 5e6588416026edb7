// Package baseline resolves where baseline artifacts for a failing test are
// looked up and which artifact files a rebaseline produces.
package baseline

import (
	"bytes"
	"errors"
	"iter"
	"path"
	"slices"
	"strings"

	"github.com/dkoosis/deflake/pkg/outcome"
)

// ErrNotPNG is returned by CheckPNG for data without a PNG signature.
var ErrNotPNG = errors.New("not a PNG image")

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Dirs yields candidate baseline directories in lookup precedence:
// platform-specific, then flag-specific, then the generic root last.
// The generic entry is always present, even for nil inputs.
func Dirs(platforms, flagSpecific []string, root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, p := range platforms {
			if !yield(join(root, "platform", p)) {
				return
			}
		}
		for _, f := range flagSpecific {
			if !yield(join(root, "flag-specific", f)) {
				return
			}
		}
		yield(root)
	}
}

// DirList is the materialized form of Dirs.
func DirList(platforms, flagSpecific []string, root string) []string {
	return slices.Collect(Dirs(platforms, flagSpecific, root))
}

func join(root, kind, name string) string {
	if root == "" {
		return kind + "/" + name
	}
	return root + "/" + kind + "/" + name
}

// Artifact names the actual result file produced by a run and the baseline
// it should become.
type Artifact struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
}

// Artifacts lists the rebaseline pairs for a failing test, image before text.
// Names drop the test's own extension: "a/b.html" yields "a/b-actual.png".
func Artifacts(testPath string, actual outcome.Set) []Artifact {
	stem := strings.TrimSuffix(testPath, path.Ext(testPath))
	var out []Artifact
	for ext := range actual.FailureExtensions() {
		out = append(out, Artifact{
			Source: stem + "-actual" + ext,
			Dest:   stem + "-expected" + ext,
		})
	}
	return out
}

// CheckPNG verifies data starts with the PNG file signature.
func CheckPNG(data []byte) error {
	if !bytes.HasPrefix(data, pngSignature) {
		return ErrNotPNG
	}
	return nil
}
