// Package settings loads the orchestrator's own optional defaults file,
// distinct from the per-project test manifests the Manifest Loader handles.
// It supplies fallback values for CLI flags (concurrency, mirror URL, stats
// file path, log format); a flag explicitly passed on the command line always
// wins over a value from this file.
package settings

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the orchestrator settings file, searched for in
// the current working directory only (unlike the manifest defaults file,
// this is not walked up the tree -- it is a per-invocation override, not a
// repository-wide QA policy).
const FileName = ".ptr.toml"

// Settings holds CLI-flag defaults read from FileName. Zero values mean
// "unset"; the CLI layer only applies a field when the corresponding flag
// was not explicitly passed.
type Settings struct {
	Atonce            int    `toml:"atonce"`
	Mirror            string `toml:"mirror"`
	StatsFile         string `toml:"stats_file"`
	LogFormat         string `toml:"log_format"`
	ProgressInterval  int    `toml:"progress_interval"`
	VenvTimeoutSecond int    `toml:"venv_timeout_seconds"`
}

// Load reads FileName from dir. A missing file is not an error -- it returns
// a zero-value Settings. Unknown keys are reported via the returned
// warnings slice rather than failing the load, matching the Manifest
// Loader's own tolerant posture toward malformed input.
func Load(dir string) (*Settings, []string, error) {
	path := dir + string(os.PathSeparator) + FileName
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil, nil
		}
		return nil, nil, fmt.Errorf("checking settings file %s: %w", path, err)
	}

	var s Settings
	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing settings file %s: %w", path, err)
	}

	var warnings []string
	for _, key := range md.Undecoded() {
		warnings = append(warnings, fmt.Sprintf("%s: unknown setting %q", path, key.String()))
	}
	return &s, warnings, nil
}
