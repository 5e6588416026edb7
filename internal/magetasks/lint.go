package magetasks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/magefile/mage/sh"
)

var golangciDisabled = "--disable=exhaustruct,varnamelen,ireturn,wrapcheck,nlreturn,gochecknoglobals,mnd,depguard,tagalign"

// LintAll runs every linter. Optional tools that are not installed are skipped.
func LintAll() error {
	var errs []error
	for _, lint := range []func() error{LintFormat, LintVet, LintGolangci} {
		if err := lint(); err != nil && !IsCommandNotFound(err) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	PrintSuccess("All linters passed")
	return nil
}

// LintFormat fails when gofmt would change any file.
func LintFormat() error {
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return err
	}
	if files := strings.TrimSpace(out); files != "" {
		return fmt.Errorf("files need gofmt:\n%s", files)
	}
	return nil
}

// LintVet runs go vet.
func LintVet() error {
	return sh.RunV("go", "vet", "./...")
}

// LintGolangci runs golangci-lint.
func LintGolangci() error {
	if err := sh.RunV("golangci-lint", "run", golangciDisabled, "--timeout=5m", "./..."); err != nil {
		if IsCommandNotFound(err) {
			PrintWarning("golangci-lint not found (install: go install github.com/golangci/golangci-lint/cmd/golangci-lint@latest)")
			return err
		}
		return fmt.Errorf("golangci-lint failed: %w", err)
	}
	return nil
}
