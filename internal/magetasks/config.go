package magetasks

import (
	"os"
	"path/filepath"
)

var (
	// ModulePath is the Go module path.
	ModulePath = "github.com/dkoosis/deflake"

	// MainPackage is the package built into BinPath.
	MainPackage = "./cmd/deflake"

	// BinPath is the output path for the built binary.
	BinPath = "./bin/deflake"

	// ProjectRoot is the root directory of the project.
	ProjectRoot string
)

// Initialize records the project root and creates the bin directory.
// Call this from the Magefile init() function.
func Initialize() error {
	var err error
	ProjectRoot, err = os.Getwd()
	if err != nil {
		return err
	}
	return os.MkdirAll(filepath.Join(ProjectRoot, "bin"), 0o750)
}

// ldflags returns the -X flags stamping build metadata into internal/version.
func ldflags(version, commit, date string) string {
	pkg := ModulePath + "/internal/version"
	return "-s -w" +
		" -X '" + pkg + ".Version=" + version + "'" +
		" -X '" + pkg + ".CommitHash=" + commit + "'" +
		" -X '" + pkg + ".BuildDate=" + date + "'"
}
