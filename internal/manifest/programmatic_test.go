package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProgrammatic_SimpleDict(t *testing.T) {
	t.Parallel()
	path := writeTestFile(t, "ptr_params.py", `
# comment before assignment
ptr = {
    "entry_point_module": "widget.app",
    "test_suite": "widget.tests",
    "run_black": True,
    "run_mypy": False,
    "test_suite_timeout": 120,
    "venv_pkgs": ["requests", "pyyaml"],
    "required_coverage": {
        "widget/core.py": 95,
        "TOTAL": 90.5,
    },
}
`)
	opts, err := LoadProgrammatic(path)
	require.NoError(t, err)
	require.NotNil(t, opts)
	assert.Equal(t, "widget.app", opts["entry_point_module"])
	assert.Equal(t, true, opts["run_black"])
	assert.Equal(t, false, opts["run_mypy"])
	assert.Equal(t, 120, opts["test_suite_timeout"])

	list, err := stringListFromLiteral(opts["venv_pkgs"])
	require.NoError(t, err)
	assert.Equal(t, []string{"requests", "pyyaml"}, list)

	cov, err := coverageFromLiteral(opts["required_coverage"])
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"widget/core.py": 95, "TOTAL": 90.5}, cov)
}

func TestLoadProgrammatic_NoAssignment(t *testing.T) {
	t.Parallel()
	path := writeTestFile(t, "ptr_params.py", "other = {}\n")
	opts, err := LoadProgrammatic(path)
	require.NoError(t, err)
	assert.Nil(t, opts)
}

func TestLoadProgrammatic_IgnoresIndentedAssignment(t *testing.T) {
	t.Parallel()
	path := writeTestFile(t, "ptr_params.py", `
def build():
    ptr = {"entry_point_module": "nope"}
    return ptr
`)
	opts, err := LoadProgrammatic(path)
	require.NoError(t, err)
	assert.Nil(t, opts)
}

func TestLoadProgrammatic_NonLiteralRejected(t *testing.T) {
	t.Parallel()
	path := writeTestFile(t, "ptr_params.py", "ptr = some_function_call()\n")
	_, err := LoadProgrammatic(path)
	assert.Error(t, err)
}

func TestLoadProgrammatic_NonMappingRejected(t *testing.T) {
	t.Parallel()
	path := writeTestFile(t, "ptr_params.py", `ptr = ["not", "a", "dict"]`)
	_, err := LoadProgrammatic(path)
	assert.Error(t, err)
}

func TestStringifyLiteral(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "widget.app", stringifyLiteral("widget.app"))
	assert.Equal(t, "true", stringifyLiteral(true))
	assert.Equal(t, "false", stringifyLiteral(false))
	assert.Equal(t, "120", stringifyLiteral(120))
}

func TestJoinForCoercion(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "requests pyyaml", joinForCoercion([]string{"requests", "pyyaml"}))
}

func TestBaseCommandOverridesFromLiteral(t *testing.T) {
	t.Parallel()
	path := writeTestFile(t, "ptr_params.py", `
ptr = {
    "base_command_overrides": {
        "mypy_run": ["poetry", "run", "mypy", "{workdir}"],
    },
}
`)
	opts, err := LoadProgrammatic(path)
	require.NoError(t, err)
	require.NotNil(t, opts)

	overrides, err := baseCommandOverridesFromLiteral(opts["base_command_overrides"])
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"mypy_run": {"poetry", "run", "mypy", "{workdir}"}}, overrides)
}

func TestBaseCommandOverridesFromLiteral_NonMappingRejected(t *testing.T) {
	t.Parallel()
	_, err := baseCommandOverridesFromLiteral([]any{"not", "a", "dict"})
	assert.Error(t, err)
}

func TestBaseCommandOverridesFromLiteral_EmptyCommandRejected(t *testing.T) {
	t.Parallel()
	_, err := baseCommandOverridesFromLiteral(map[string]any{"mypy_run": []any{}})
	assert.Error(t, err)
}
