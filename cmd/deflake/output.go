package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/dkoosis/deflake/internal/config"
	"github.com/dkoosis/deflake/pkg/pattern"
	"github.com/dkoosis/deflake/pkg/render"
)

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termWidth returns the terminal width for w, defaulting to 80.
func termWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			return tw
		}
	}
	return 80
}

// resolveFormat turns "auto" into terminal or text depending on w.
func resolveFormat(format string, w io.Writer) string {
	if format != config.FormatAuto {
		return format
	}
	if isTTYWriter(w) {
		return config.FormatTerminal
	}
	return config.FormatText
}

func (a *app) renderer() render.Renderer {
	switch resolveFormat(a.cfg.Format, a.stdout) {
	case config.FormatJSON:
		return render.NewJSON()
	case config.FormatText:
		return render.NewText()
	default:
		theme := render.ThemeByName(a.cfg.Theme)
		if a.cfg.NoColor {
			theme = render.MonoTheme()
		}
		return render.NewTerminal(theme, termWidth(a.stdout))
	}
}

func (a *app) emit(patterns []pattern.Pattern) error {
	_, err := fmt.Fprint(a.stdout, a.renderer().Render(patterns))
	return err
}

func (a *app) emitJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) jsonMode() bool {
	return resolveFormat(a.cfg.Format, a.stdout) == config.FormatJSON
}
