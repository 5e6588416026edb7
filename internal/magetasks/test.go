package magetasks

import "github.com/magefile/mage/sh"

// TestAll runs all tests.
func TestAll() error {
	PrintH2Header("Tests")
	if err := sh.RunV("go", "test", "./..."); err != nil {
		PrintError("Tests failed")
		return err
	}
	PrintSuccess("All tests passed")
	return nil
}

// TestCoverage runs tests with a coverage profile and prints the summary.
func TestCoverage() error {
	PrintH2Header("Test Coverage")
	if err := sh.RunV("go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		PrintError("Tests failed")
		return err
	}
	_ = sh.RunV("go", "tool", "cover", "-func=coverage.out")
	PrintSuccess("Coverage report generated")
	return nil
}

// TestRace runs tests with the race detector.
func TestRace() error {
	PrintH2Header("Race Detector")
	if err := sh.RunV("go", "test", "-race", "./..."); err != nil {
		PrintError("Race detector found issues")
		return err
	}
	PrintSuccess("No race conditions detected")
	return nil
}
