package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, name, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadDeclarative_SimpleSection(t *testing.T) {
	t.Parallel()
	path := writeTestFile(t, "setup.cfg", `
[metadata]
name = widget

[ptr]
entry_point_module = widget.app
test_suite = widget.tests
run_black = true
`)
	opts, err := LoadDeclarative(path)
	require.NoError(t, err)
	assert.Equal(t, "widget.app", opts["entry_point_module"])
	assert.Equal(t, "widget.tests", opts["test_suite"])
	assert.Equal(t, "true", opts["run_black"])
}

func TestLoadDeclarative_NoToolSection(t *testing.T) {
	t.Parallel()
	path := writeTestFile(t, "setup.cfg", "[metadata]\nname = widget\n")
	opts, err := LoadDeclarative(path)
	require.NoError(t, err)
	assert.Nil(t, opts)
}

func TestLoadDeclarative_MultilineContinuation(t *testing.T) {
	t.Parallel()
	path := writeTestFile(t, "setup.cfg", `[ptr]
required_coverage =
    widget/core.py = 95
    widget/util.py = 80
`)
	opts, err := LoadDeclarative(path)
	require.NoError(t, err)
	cov, err := coerceRequiredCoverage(opts["required_coverage"])
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"widget/core.py": 95, "widget/util.py": 80}, cov)
}

func TestLoadDeclarative_KeyOutsideSection(t *testing.T) {
	t.Parallel()
	path := writeTestFile(t, "tox.ini", "entry_point_module = widget.app\n")
	_, err := LoadDeclarative(path)
	assert.Error(t, err)
}
