//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"

	"github.com/dkoosis/deflake/internal/magetasks"
)

// Default target builds the binary.
var Default = Build

func init() {
	if err := magetasks.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: %v\n", err)
		os.Exit(1)
	}
}

// Build builds the deflake binary.
func Build() error {
	return magetasks.BuildAll()
}

// Clean removes build artifacts.
func Clean() error {
	return magetasks.Clean()
}

// QA lints, tests and builds.
func QA() error {
	return magetasks.QualityCheck()
}

// Test groups the test targets.
type Test mg.Namespace

// All runs all tests.
func (Test) All() error {
	return magetasks.TestAll()
}

// Coverage runs tests with coverage.
func (Test) Coverage() error {
	return magetasks.TestCoverage()
}

// Race runs tests with the race detector.
func (Test) Race() error {
	return magetasks.TestRace()
}

// Lint groups the lint targets.
type Lint mg.Namespace

// All runs every linter.
func (Lint) All() error {
	return magetasks.LintAll()
}

// Vet runs go vet.
func (Lint) Vet() error {
	return magetasks.LintVet()
}

// Format checks gofmt.
func (Lint) Format() error {
	return magetasks.LintFormat()
}

// CI runs the lint and test targets in order, then builds.
func CI() {
	mg.SerialDeps(Lint.All, Test.All, Build)
}
