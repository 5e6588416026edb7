// Package render turns patterns into terminal, plain-text or JSON output.
package render

import "github.com/dkoosis/deflake/pkg/pattern"

// Renderer converts patterns to formatted output.
type Renderer interface {
	Render(patterns []pattern.Pattern) string
}

// maxDetailLines caps the detail lines printed under one row.
const maxDetailLines = 3
