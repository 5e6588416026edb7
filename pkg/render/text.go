package render

import (
	"fmt"
	"strings"

	"github.com/dkoosis/deflake/pkg/pattern"
)

// Text renders patterns as terse, uncolored plain text. Output is stable
// for a given input, which makes it suitable for logs and diffs.
type Text struct{}

// NewText creates a plain-text renderer.
func NewText() *Text {
	return &Text{}
}

// Render formats all patterns as plain text.
func (x *Text) Render(patterns []pattern.Pattern) string {
	var sb strings.Builder
	for i, p := range patterns {
		if i > 0 {
			sb.WriteString("\n")
		}
		switch v := p.(type) {
		case *pattern.Summary:
			x.summary(&sb, v)
		case *pattern.TestTable:
			x.table(&sb, v)
		case *pattern.Comparison:
			x.comparison(&sb, v)
		case *pattern.Leaderboard:
			x.leaderboard(&sb, v)
		case *pattern.Sparkline:
			x.sparkline(&sb, v)
		}
	}
	return sb.String()
}

func (x *Text) summary(sb *strings.Builder, s *pattern.Summary) {
	sb.WriteString("SCOPE: " + s.Label + "\n")
	parts := make([]string, 0, len(s.Metrics))
	for _, m := range s.Metrics {
		parts = append(parts, m.Value+" "+m.Label)
	}
	if len(parts) > 0 {
		sb.WriteString("  " + strings.Join(parts, ", ") + "\n")
	}
}

func (x *Text) table(sb *strings.Builder, t *pattern.TestTable) {
	sb.WriteString(t.Label + "\n")
	for _, item := range t.Results {
		line := "  " + strings.ToUpper(item.Status) + " " + item.Name
		if item.Tag != "" {
			line += " " + item.Tag
		}
		if item.Count > 0 {
			line += fmt.Sprintf(" (%d)", item.Count)
		}
		sb.WriteString(line + "\n")
		writeDetails(sb, item.Details, "    ")
	}
}

func (x *Text) comparison(sb *strings.Builder, c *pattern.Comparison) {
	sb.WriteString(c.Label + "\n")
	for _, item := range c.Changes {
		fmt.Fprintf(sb, "  %s: [ %s ] -> [ %s ]\n", item.Label, item.Before, item.After)
	}
}

func (x *Text) leaderboard(sb *strings.Builder, l *pattern.Leaderboard) {
	sb.WriteString(l.Label + "\n")
	for _, item := range l.Items {
		fmt.Fprintf(sb, "  %d. %s %s\n", item.Rank, item.Name, item.Metric)
	}
}

func (x *Text) sparkline(sb *strings.Builder, s *pattern.Sparkline) {
	vals := make([]string, 0, len(s.Values))
	for _, v := range s.Values {
		vals = append(vals, fmt.Sprintf("%g", v))
	}
	fmt.Fprintf(sb, "%s: %s%s\n", s.Label, strings.Join(vals, " "), s.Unit)
}

func writeDetails(sb *strings.Builder, details, indent string) {
	if details == "" {
		return
	}
	lines := strings.Split(details, "\n")
	shown := min(len(lines), maxDetailLines)
	for _, line := range lines[:shown] {
		sb.WriteString(indent + line + "\n")
	}
	if len(lines) > shown {
		fmt.Fprintf(sb, "%s... (%d more lines)\n", indent, len(lines)-shown)
	}
}
