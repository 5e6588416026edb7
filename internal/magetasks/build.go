package magetasks

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/magefile/mage/sh"
)

// BuildAll builds the deflake binary with version metadata.
func BuildAll() error {
	PrintH2Header("Build")

	flags := ldflags(gitVersion(), gitCommit(), time.Now().UTC().Format(time.RFC3339))
	if err := sh.RunV("go", "build", "-ldflags", flags, "-o", BinPath, MainPackage); err != nil {
		PrintError("Build failed")
		return err
	}
	PrintSuccess(fmt.Sprintf("Built: %s", BinPath))
	return nil
}

// Clean removes build artifacts.
func Clean() error {
	PrintH2Header("Clean")

	if err := os.RemoveAll("./bin"); err != nil {
		return err
	}
	if err := sh.Rm("coverage.out"); err != nil {
		return err
	}
	PrintSuccess("Cleaned build artifacts")
	return nil
}

func gitVersion() string {
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty", "--match=v*")
	if err != nil {
		return "dev"
	}
	return strings.TrimSpace(v)
}

func gitCommit() string {
	c, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(c)
}
