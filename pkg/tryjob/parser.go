package tryjob

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ErrUnknownShape is returned when a listing is empty or unrecognizable.
var ErrUnknownShape = errors.New("unrecognized try-job listing")

// StatusCompleted is the only structured status whose builds are used.
const StatusCompleted = "COMPLETED"

// Job is one try-job build found in a listing.
type Job struct {
	Builder string
	URL     string
	ID      string
	// Section is the text report heading ("Success", "Failures", "Started")
	// or the structured record's result.
	Section string
}

// ParseResult is the outcome of parsing a listing.
type ParseResult struct {
	Shape   Shape
	Jobs    []Job
	Skipped int // lines or records that carried no usable build id
}

// IDs returns the deduplicated, numerically sorted build ids.
func (r *ParseResult) IDs() []string {
	return BuildIDs(r.Jobs)
}

var (
	buildURLRe = regexp.MustCompile(`/builds/(\d+)/?$`)
	trailingRe = regexp.MustCompile(`(\d+)/?$`)
	headerRe   = regexp.MustCompile(`^(\S[^:]*):\s*$`)
)

// Parse resolves the listing shape once and dispatches to its parser.
func Parse(data []byte) (*ParseResult, error) {
	switch shape := Sniff(data); shape {
	case ShapeText:
		return ParseText(data)
	case ShapeStructured:
		return ParseStructured(data)
	default:
		return nil, ErrUnknownShape
	}
}

// ParseText parses the legacy text report. Builds from every section are
// kept; input without headers is one implicit section.
func ParseText(data []byte) (*ParseResult, error) {
	res := &ParseResult{Shape: ShapeText}
	section := ""
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if m := headerRe.FindStringSubmatch(line); m != nil {
			section = m[1]
			continue
		}
		fields := strings.Fields(line)
		url := fields[len(fields)-1]
		m := buildURLRe.FindStringSubmatch(url)
		if m == nil {
			res.Skipped++
			continue
		}
		job := Job{URL: url, ID: m[1], Section: section}
		if len(fields) > 1 {
			job.Builder = fields[0]
		}
		res.Jobs = append(res.Jobs, job)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning try-job report: %w", err)
	}
	return res, nil
}

// record is one entry of the structured listing.
type record struct {
	Result  *string `json:"result"`
	Status  string  `json:"status"`
	URL     string  `json:"url"`
	Builder string  `json:"builder"`
}

// ParseStructured parses a JSON list of build records. Only COMPLETED
// records contribute; malformed records are skipped.
func ParseStructured(data []byte) (*ParseResult, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownShape, err)
	}
	res := &ParseResult{Shape: ShapeStructured}
	for _, raw := range raws {
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			res.Skipped++
			continue
		}
		if rec.Status != StatusCompleted {
			continue
		}
		m := trailingRe.FindStringSubmatch(rec.URL)
		if m == nil {
			res.Skipped++
			continue
		}
		job := Job{Builder: rec.Builder, URL: rec.URL, ID: m[1]}
		if rec.Result != nil {
			job.Section = *rec.Result
		}
		res.Jobs = append(res.Jobs, job)
	}
	return res, nil
}

// BuildIDs deduplicates job ids and sorts them by numeric value.
func BuildIDs(jobs []Job) []string {
	seen := make(map[string]bool, len(jobs))
	ids := make([]string, 0, len(jobs))
	for _, j := range jobs {
		if seen[j.ID] {
			continue
		}
		seen[j.ID] = true
		ids = append(ids, j.ID)
	}
	slices.SortFunc(ids, CompareIDs)
	return ids
}

// CompareIDs orders decimal build ids numerically without a width limit.
func CompareIDs(a, b string) int {
	ta := strings.TrimLeft(a, "0")
	tb := strings.TrimLeft(b, "0")
	if len(ta) != len(tb) {
		return len(ta) - len(tb)
	}
	if c := strings.Compare(ta, tb); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
