package magetasks

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	out = io.Writer(os.Stdout)

	headerStyle  = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// PrintH1Header prints a top-level header with decoration.
func PrintH1Header(title string) {
	const width = 80
	rule := strings.Repeat("=", width)
	padding := max(0, (width-len(title))/2)
	fmt.Fprintf(out, "\n%s\n%s%s\n%s\n\n", rule, strings.Repeat(" ", padding), headerStyle.Render(title), rule)
}

// PrintH2Header prints a section header.
func PrintH2Header(title string) {
	fmt.Fprintf(out, "\n=== %s ===\n\n", headerStyle.Render(title))
}

// PrintSuccess prints a success message.
func PrintSuccess(msg string) {
	fmt.Fprintln(out, successStyle.Render("✓ "+msg))
}

// PrintWarning prints a warning message.
func PrintWarning(msg string) {
	fmt.Fprintln(out, warningStyle.Render("! "+msg))
}

// PrintError prints an error message.
func PrintError(msg string) {
	fmt.Fprintln(out, errorStyle.Render("✗ "+msg))
}
