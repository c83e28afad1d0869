package main_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// projectRoot returns the absolute path to the project root directory.
// It walks up from the current working directory until it finds go.mod.
func projectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err, "failed to get working directory")

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (no go.mod found in any parent directory)")
		}
		dir = parent
	}
}

func buildBinary(t *testing.T) string {
	t.Helper()
	root := projectRoot(t)
	binPath := filepath.Join(t.TempDir(), "ptr")

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/ptr/")
	cmd.Dir = root
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "go build failed: %s", string(output))
	return binPath
}

func TestBuild_Compiles(t *testing.T) {
	binPath := buildBinary(t)

	info, err := os.Stat(binPath)
	require.NoError(t, err, "binary was not created at %s", binPath)
	assert.Greater(t, info.Size(), int64(0), "binary must not be empty")
}

func TestBuild_HelpRuns(t *testing.T) {
	binPath := buildBinary(t)

	cmd := exec.Command(binPath, "--help")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "binary --help failed: %s", string(output))
	assert.Contains(t, strings.ToLower(string(output)), "discover")
}

func TestBuild_VersionRuns(t *testing.T) {
	binPath := buildBinary(t)

	cmd := exec.Command(binPath, "version")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "binary version failed: %s", string(output))
	assert.Contains(t, string(output), "ptr v")
}

func TestBuild_RunOnEmptyBaseDirExitsDiscoveryEmpty(t *testing.T) {
	binPath := buildBinary(t)
	empty := t.TempDir()

	cmd := exec.Command(binPath, "run", "--base-dir", empty)
	output, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	require.Error(t, err)
	require.ErrorAs(t, err, &exitErr)
	assert.NotEqual(t, 0, exitErr.ExitCode(), "run on an empty tree must exit non-zero")
	assert.Contains(t, strings.ToLower(string(output)), "no project")
}

func TestGoVet_Passes(t *testing.T) {
	root := projectRoot(t)

	cmd := exec.Command("go", "vet", "./...")
	cmd.Dir = root

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "go vet failed with output: %s", string(output))
}
