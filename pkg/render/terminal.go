package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dkoosis/deflake/pkg/pattern"
)

// Terminal renders patterns as styled terminal output via lipgloss.
type Terminal struct {
	theme  Theme
	width  int
	titler cases.Caser
}

// NewTerminal creates a terminal renderer with the given theme.
func NewTerminal(theme Theme, width int) *Terminal {
	if width <= 0 {
		width = 80
	}
	return &Terminal{theme: theme, width: width, titler: cases.Title(language.English)}
}

// Render formats all patterns for terminal display.
func (t *Terminal) Render(patterns []pattern.Pattern) string {
	var sections []string
	for _, p := range patterns {
		if s := t.renderOne(p); s != "" {
			sections = append(sections, s)
		}
	}
	return strings.Join(sections, "\n")
}

func (t *Terminal) renderOne(p pattern.Pattern) string {
	switch v := p.(type) {
	case *pattern.Summary:
		return t.renderSummary(v)
	case *pattern.Leaderboard:
		return t.renderLeaderboard(v)
	case *pattern.TestTable:
		return t.renderTestTable(v)
	case *pattern.Sparkline:
		return t.renderSparkline(v)
	case *pattern.Comparison:
		return t.renderComparison(v)
	default:
		return ""
	}
}

func (t *Terminal) heading(s string) string {
	return t.theme.Bold.Render(t.titler.String(s))
}

func (t *Terminal) renderSummary(s *pattern.Summary) string {
	var sb strings.Builder
	if s.Label != "" {
		sb.WriteString(t.heading(s.Label))
		sb.WriteString("\n")
	}
	for _, m := range s.Metrics {
		icon, style := t.iconStyle(m.Kind)
		sb.WriteString("  ")
		sb.WriteString(style.Render(icon + " " + m.Label + ": " + m.Value))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderLeaderboard(l *pattern.Leaderboard) string {
	if len(l.Items) == 0 {
		return ""
	}
	var sb strings.Builder
	header := l.Label
	if l.TotalCount > len(l.Items) {
		header += fmt.Sprintf(" (top %d of %d)", len(l.Items), l.TotalCount)
	}
	sb.WriteString(t.heading(header))
	sb.WriteString("\n")

	maxName, maxMetric := 0, 0
	for _, item := range l.Items {
		maxName = max(maxName, runewidth.StringWidth(item.Name))
		maxMetric = max(maxMetric, runewidth.StringWidth(item.Metric))
	}
	maxName = min(maxName, t.width/2)

	for _, item := range l.Items {
		sb.WriteString("  ")
		if l.ShowRank {
			sb.WriteString(t.theme.Muted.Render(fmt.Sprintf("%2d. ", item.Rank)))
		}
		sb.WriteString(t.theme.Primary.Render(padRight(truncate(item.Name, maxName), maxName)))
		sb.WriteString("  ")
		sb.WriteString(t.theme.Warning.Render(padLeft(item.Metric, maxMetric)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderTestTable(tt *pattern.TestTable) string {
	if len(tt.Results) == 0 {
		return ""
	}
	var sb strings.Builder
	if tt.Label != "" {
		sb.WriteString(t.heading(tt.Label))
		sb.WriteString("\n")
	}

	maxName := 0
	for _, r := range tt.Results {
		maxName = max(maxName, runewidth.StringWidth(r.Name))
	}
	maxName = min(maxName, t.width*3/4)

	for _, r := range tt.Results {
		icon, style := t.statusIconStyle(r.Status)
		sb.WriteString("  ")
		sb.WriteString(style.Render(icon))
		sb.WriteString(" ")
		sb.WriteString(padRight(truncate(r.Name, maxName), maxName))
		if r.Tag != "" {
			sb.WriteString("  ")
			sb.WriteString(t.theme.Muted.Render(r.Tag))
		}
		if r.Count > 0 {
			sb.WriteString(t.theme.Muted.Render(fmt.Sprintf("  ×%d", r.Count)))
		}
		if r.Details != "" {
			lines := strings.Split(r.Details, "\n")
			for _, line := range lines[:min(len(lines), maxDetailLines)] {
				sb.WriteString("\n    ")
				sb.WriteString(t.theme.Muted.Render(line))
			}
			if extra := len(lines) - maxDetailLines; extra > 0 {
				sb.WriteString("\n    ")
				sb.WriteString(t.theme.Muted.Render(fmt.Sprintf("… %d more", extra)))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderSparkline(s *pattern.Sparkline) string {
	if len(s.Values) == 0 {
		return ""
	}
	var sb strings.Builder
	if s.Label != "" {
		sb.WriteString(t.theme.Primary.Render(s.Label + ": "))
	}

	lo, hi := s.Values[0], s.Values[0]
	for _, v := range s.Values {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	var spark strings.Builder
	for _, v := range s.Values {
		idx := int((v - lo) / span * 7)
		spark.WriteRune(blocks[max(0, min(idx, 7))])
	}
	sb.WriteString(t.theme.Error.Render(spark.String()))

	latest := s.Values[len(s.Values)-1]
	sb.WriteString(t.theme.Muted.Render(fmt.Sprintf(" %g%s", latest, s.Unit)))
	sb.WriteString("\n")
	return sb.String()
}

func (t *Terminal) renderComparison(c *pattern.Comparison) string {
	if len(c.Changes) == 0 {
		return ""
	}
	var sb strings.Builder
	if c.Label != "" {
		sb.WriteString(t.heading(c.Label))
		sb.WriteString("\n")
	}
	for _, item := range c.Changes {
		sb.WriteString("  ")
		sb.WriteString(item.Label + ": ")
		sb.WriteString(t.theme.Muted.Render(item.Before + " → " + item.After))
		if item.Change != 0 {
			sb.WriteString(" ")
			sb.WriteString(t.theme.Success.Render(fmt.Sprintf("%+g %s", item.Change, item.Unit)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) iconStyle(kind string) (string, lipgloss.Style) {
	switch kind {
	case "success":
		return t.theme.Icons.Pass, t.theme.Success
	case "error":
		return t.theme.Icons.Fail, t.theme.Error
	case "warning":
		return t.theme.Icons.Warn, t.theme.Warning
	default:
		return t.theme.Icons.Info, t.theme.Primary
	}
}

func (t *Terminal) statusIconStyle(status string) (string, lipgloss.Style) {
	switch status {
	case pattern.StatusRemove:
		return t.theme.Icons.Remove, t.theme.Success
	case pattern.StatusNarrow:
		return t.theme.Icons.Narrow, t.theme.Primary
	case pattern.StatusAdd:
		return t.theme.Icons.Add, t.theme.Warning
	case pattern.StatusFail:
		return t.theme.Icons.Fail, t.theme.Error
	case pattern.StatusKeep:
		return t.theme.Icons.Keep, t.theme.Muted
	default:
		return t.theme.Icons.Info, t.theme.Muted
	}
}

// truncate shortens s to width display cells, ending in an ellipsis.
func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func padLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}
