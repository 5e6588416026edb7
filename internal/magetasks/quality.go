package magetasks

import "fmt"

// QualityCheck lints, tests and builds. Lint findings are reported but do
// not stop the run.
func QualityCheck() error {
	PrintH1Header("deflake Quality Assurance")

	if err := LintAll(); err != nil {
		PrintWarning(fmt.Sprintf("Linting issues found: %v", err))
	}
	if err := TestAll(); err != nil {
		return fmt.Errorf("tests failed: %w", err)
	}
	if err := BuildAll(); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	PrintSuccess("Quality checks complete")
	return nil
}
