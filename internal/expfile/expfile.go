// Package expfile reads and writes the TestExpectations line syntax:
//
//	crbug.com/123 [ Linux ] fast/dom/foo.html [ Failure Pass ]  # note
//
// Lines whose result list uses only canonical categories become records;
// everything else (comments, blank lines, lines with modifiers such as Slow)
// is preserved verbatim.
package expfile

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dkoosis/deflake/pkg/expectation"
	"github.com/dkoosis/deflake/pkg/outcome"
)

// Line is one line of an expectations file.
type Line struct {
	Raw     string
	Path    string // test named by the line, managed or not
	Record  *expectation.Record
	Tags    []string
	Comment string

	original outcome.CategorySet
}

// File is a parsed expectations file.
type File struct {
	Lines []Line
}

// Parse reads an expectations file.
func Parse(r io.Reader) (*File, error) {
	f := &File{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		f.Lines = append(f.Lines, parseLine(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading expectations: %w", err)
	}
	return f, nil
}

func parseLine(raw string) Line {
	line := Line{Raw: raw}
	body := raw
	if i := strings.Index(body, "#"); i >= 0 {
		line.Comment = strings.TrimSpace(body[i:])
		body = body[:i]
	}
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return line
	}
	if fields[len(fields)-1] != "]" {
		if last := fields[len(fields)-1]; last != "[" {
			line.Path = last
		}
		return line
	}

	open := lastIndex(fields, "[")
	if open < 1 {
		return line
	}
	path := fields[open-1]
	if path == "]" || path == "[" {
		return line
	}
	line.Path = path

	var expected outcome.CategorySet
	for _, name := range fields[open+1 : len(fields)-1] {
		c, ok := outcome.ParseCategory(name)
		if !ok {
			return line
		}
		expected = expected.With(c)
	}
	if expected.IsEmpty() {
		return line
	}

	prefix := fields[:open-1]
	var tags []string
	if n := len(prefix); n > 0 && prefix[n-1] == "]" {
		tagOpen := lastIndex(prefix, "[")
		if tagOpen < 0 {
			return line
		}
		tags = append([]string(nil), prefix[tagOpen+1:n-1]...)
		prefix = prefix[:tagOpen]
	}

	line.Tags = tags
	line.Record = expectation.New(strings.Join(prefix, " "), path, expected)
	line.original = expected
	return line
}

func lastIndex(ss []string, want string) int {
	for i := len(ss) - 1; i >= 0; i-- {
		if ss[i] == want {
			return i
		}
	}
	return -1
}

// AppliesTo reports whether the line's tags select one of platforms. Untagged
// lines apply everywhere. A tag matches a platform by name or by one of its
// dash-separated parts, ignoring case, so Mac11 matches "mac-mac11".
func (l Line) AppliesTo(platforms []string) bool {
	if len(l.Tags) == 0 {
		return true
	}
	for _, p := range platforms {
		parts := append([]string{p}, strings.Split(p, "-")...)
		for _, tag := range l.Tags {
			for _, part := range parts {
				if strings.EqualFold(tag, part) {
					return true
				}
			}
		}
	}
	return false
}

// Records returns the managed records that apply to platforms, in file
// order. Tagged records for other platforms stay untouched.
func (f *File) Records(platforms []string) []*expectation.Record {
	var out []*expectation.Record
	for _, l := range f.Lines {
		if l.Record != nil && l.AppliesTo(platforms) {
			out = append(out, l.Record)
		}
	}
	return out
}

// Paths returns every test path named anywhere in the file, including lines
// that are not managed.
func (f *File) Paths() map[string]bool {
	out := make(map[string]bool)
	for _, l := range f.Lines {
		if l.Path != "" {
			out[l.Path] = true
		}
	}
	return out
}

// Write emits the file: removed records are dropped, changed records are
// reformatted, untouched lines keep their original text, and added records
// are appended.
func (f *File) Write(w io.Writer, added []*expectation.Record) error {
	bw := bufio.NewWriter(w)
	for _, l := range f.Lines {
		text := l.Raw
		if l.Record != nil {
			if l.Record.Removed() {
				continue
			}
			if !l.Record.Expected().Equal(l.original) {
				text = Format(l.Record, l.Tags, l.Comment)
			}
		}
		if _, err := bw.WriteString(text + "\n"); err != nil {
			return err
		}
	}
	for _, r := range added {
		if r.Removed() {
			continue
		}
		if _, err := bw.WriteString(Format(r, nil, "") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Format renders one record as an expectations line.
func Format(r *expectation.Record, tags []string, comment string) string {
	var parts []string
	if r.Bug != "" {
		parts = append(parts, r.Bug)
	}
	if len(tags) > 0 {
		parts = append(parts, "[ "+strings.Join(tags, " ")+" ]")
	}
	parts = append(parts, r.Path, "[ "+r.Expected().String()+" ]")
	if comment != "" {
		parts = append(parts, comment)
	}
	return strings.Join(parts, " ")
}
