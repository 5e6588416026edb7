package magetasks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitialize(t *testing.T) {
	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	defer os.Chdir(originalDir)

	tmpDir := t.TempDir()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}

	if err := Initialize(); err != nil {
		t.Errorf("Initialize() returned error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "bin")); os.IsNotExist(err) {
		t.Errorf("Initialize() should create bin directory, but it doesn't exist")
	}

	expectedRoot, _ := filepath.EvalSymlinks(tmpDir)
	actualRoot, _ := filepath.EvalSymlinks(ProjectRoot)
	if actualRoot != expectedRoot {
		t.Errorf("ProjectRoot = %s, want %s", actualRoot, expectedRoot)
	}
}

func TestPaths(t *testing.T) {
	if ModulePath != "github.com/dkoosis/deflake" {
		t.Errorf("ModulePath = %s, want github.com/dkoosis/deflake", ModulePath)
	}
	if BinPath != "./bin/deflake" {
		t.Errorf("BinPath = %s, want ./bin/deflake", BinPath)
	}
	if MainPackage != "./cmd/deflake" {
		t.Errorf("MainPackage = %s, want ./cmd/deflake", MainPackage)
	}
}

func TestLdflags(t *testing.T) {
	got := ldflags("v1.2.0", "abc123", "2024-05-01T00:00:00Z")
	for _, want := range []string{
		"-X 'github.com/dkoosis/deflake/internal/version.Version=v1.2.0'",
		"-X 'github.com/dkoosis/deflake/internal/version.CommitHash=abc123'",
		"-X 'github.com/dkoosis/deflake/internal/version.BuildDate=2024-05-01T00:00:00Z'",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("ldflags() = %q, missing %q", got, want)
		}
	}
}
