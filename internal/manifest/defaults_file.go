package manifest

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultsFileName is the name of the repository-wide declarative defaults
// file. It uses the same section-and-scalar-coercion format as a per-project
// manifest (see declarative.go); a project's own manifest keys override
// whatever this file supplies.
const DefaultsFileName = "ptr.cfg"

// FindDefaultsFile walks up from startDir to the filesystem root looking for
// DefaultsFileName. It returns the first match, or an empty string if none is
// found by the time the walk reaches the root -- that is not an error.
func FindDefaultsFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	for {
		candidate := filepath.Join(dir, DefaultsFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
