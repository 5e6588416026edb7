package magetasks

import (
	"bytes"
	"strings"
	"testing"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	saved := out
	out = &buf
	defer func() { out = saved }()
	fn()
	return buf.String()
}

func TestPrintHelpers(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
		want string
	}{
		{"h1", func() { PrintH1Header("QA") }, "QA"},
		{"h2", func() { PrintH2Header("Build") }, "=== Build ==="},
		{"success", func() { PrintSuccess("done") }, "✓ done"},
		{"warning", func() { PrintWarning("careful") }, "! careful"},
		{"error", func() { PrintError("broken") }, "✗ broken"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := captureOutput(t, tt.fn)
			if !strings.Contains(got, tt.want) {
				t.Errorf("output %q does not contain %q", got, tt.want)
			}
		})
	}
}
