package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsZeroValue(t *testing.T) {
	t.Parallel()
	s, warnings, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, &Settings{}, s)
}

func TestLoad_ParsesKnownKeys(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	contents := `
atonce = 8
mirror = "https://pypi.example.internal/simple"
stats_file = "stats.json"
log_format = "json"
progress_interval = 10
venv_timeout_seconds = 300
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(contents), 0o644))

	s, warnings, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 8, s.Atonce)
	assert.Equal(t, "https://pypi.example.internal/simple", s.Mirror)
	assert.Equal(t, "stats.json", s.StatsFile)
	assert.Equal(t, "json", s.LogFormat)
	assert.Equal(t, 10, s.ProgressInterval)
	assert.Equal(t, 300, s.VenvTimeoutSecond)
}

func TestLoad_UnknownKeyWarns(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("atonce = 4\nbogus_key = 1\n"), 0o644))

	s, warnings, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "bogus_key")
	assert.Equal(t, 4, s.Atonce)
}

func TestLoad_MalformedTOMLErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("atonce = [unterminated"), 0o644))

	_, _, err := Load(dir)
	assert.Error(t, err)
}
