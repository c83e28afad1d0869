package manifest

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ptrgo/ptr/internal/errs"
)

// Warning is a non-fatal issue encountered while loading one candidate file.
// The Loader never returns an error for a single candidate; callers collect
// Warnings for diagnostics.
type Warning struct {
	Path    string
	Message string
}

// Loader locates and normalizes per-project configuration from the
// declarative and programmatic manifest forms into a single Project record.
type Loader struct {
	logger *log.Logger
}

// NewLoader creates a Loader. logger may be nil, in which case a
// discarding logger is used.
func NewLoader(logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Loader{logger: logger}
}

// Load attempts to build a Project from the candidate file at path. It
// returns (nil, nil, nil) when the candidate carries no tool section or
// variable at all -- per §4.1, that is not a Project and not a warning --
// and likewise for a programmatic manifest whose directory also holds a
// declarative manifest with a tool section. Warnings are returned for malformed-but-recoverable content; an error is
// returned only for conditions that should abort discovery entirely (none
// currently -- reserved for future I/O-level failures other than
// not-found, which the caller is expected to have already filtered).
func (l *Loader) Load(path string) (*Project, []Warning, error) {
	var warnings []Warning

	programmatic := false
	for _, name := range ProgrammaticFilenames {
		if filepath.Base(path) == name {
			programmatic = true
		}
	}

	var declOptions map[string]string
	if programmatic {
		// A declarative manifest with a tool section in the same directory
		// takes precedence over this programmatic one (§4.1).
		for _, name := range DeclarativeFilenames {
			if opts, err := LoadDeclarative(filepath.Join(filepath.Dir(path), name)); err == nil && opts != nil {
				return nil, nil, nil
			}
		}
	} else {
		var declErr error
		declOptions, declErr = LoadDeclarative(path)
		if declErr != nil {
			cfgErr := &errs.ConfigError{Path: path, Err: declErr}
			warnings = append(warnings, Warning{Path: path, Message: cfgErr.Error()})
			declOptions = nil
		}
	}

	var progOptions map[string]any
	if declOptions == nil {
		var progErr error
		progOptions, progErr = LoadProgrammatic(path)
		if progErr != nil {
			cfgErr := &errs.ConfigError{Path: path, Err: progErr}
			warnings = append(warnings, Warning{Path: path, Message: cfgErr.Error()})
			return nil, warnings, nil
		}
	}

	if declOptions == nil && progOptions == nil {
		return nil, warnings, nil
	}

	// Apply repository defaults first, then let the candidate's own
	// options override them (§4.1 partial-config merge).
	merged := make(map[string]string)
	if defaultsPath, err := FindDefaultsFile(filepath.Dir(path)); err == nil && defaultsPath != "" {
		defaultOptions, err := LoadDeclarative(defaultsPath)
		if err != nil {
			warnings = append(warnings, Warning{Path: defaultsPath, Message: fmt.Sprintf("unparseable defaults file: %v", err)})
		}
		for k, v := range defaultOptions {
			merged[k] = v
		}
	}

	var rawCoverage map[string]float64
	var rawCoverageSet bool
	var rawOverrides map[string][]string
	var rawOverridesSet bool

	if declOptions != nil {
		for k, v := range declOptions {
			merged[k] = v
		}
	} else {
		// Programmatic form: values already carry their literal Go types.
		// Normalize to the same raw-string representation the declarative
		// coercers expect, except for required_coverage, base_command_overrides,
		// and lists, which we coerce directly from their native literal shape.
		for k, v := range progOptions {
			switch k {
			case "required_coverage", "required_coverage_pct":
				m, err := coverageFromLiteral(v)
				if err != nil {
					warnings = append(warnings, Warning{Path: path, Message: fmt.Sprintf("%s: %v", k, err)})
					continue
				}
				rawCoverage = m
				rawCoverageSet = true
			case "base_command_overrides":
				m, err := baseCommandOverridesFromLiteral(v)
				if err != nil {
					warnings = append(warnings, Warning{Path: path, Message: fmt.Sprintf("%s: %v", k, err)})
					continue
				}
				rawOverrides = m
				rawOverridesSet = true
			case "venv_pkgs":
				list, err := stringListFromLiteral(v)
				if err != nil {
					warnings = append(warnings, Warning{Path: path, Message: fmt.Sprintf("%s: %v", k, err)})
					continue
				}
				merged[k] = joinForCoercion(list)
			default:
				merged[k] = stringifyLiteral(v)
			}
		}
	}

	for _, issue := range ValidateRawOptions(merged).Warnings() {
		warnings = append(warnings, Warning{Path: path, Message: fmt.Sprintf("%s: %s", issue.Field, issue.Message)})
	}

	proj := &Project{
		ManifestPath: path,
		WorkingDir:   filepath.Dir(path),
	}

	if v, ok := merged["entry_point_module"]; ok {
		proj.EntryPointModule = v
	}
	if v, ok := merged["test_suite"]; ok {
		proj.TestSuiteModule = v
	}
	if v, ok := merged["test_suite_timeout"]; ok {
		secs, err := strconv.Atoi(v)
		if err != nil {
			warnings = append(warnings, Warning{Path: path, Message: fmt.Sprintf("test_suite_timeout: %v", err)})
		} else {
			proj.TestSuiteTimeout = time.Duration(secs) * time.Second
		}
	}

	flagSpecs := []struct {
		key string
		dst *bool
	}{
		{"run_black", &proj.Flags.RunBlack},
		{"run_mypy", &proj.Flags.RunMypy},
		{"run_flake8", &proj.Flags.RunFlake8},
		{"run_pylint", &proj.Flags.RunPylint},
		{"run_pyre", &proj.Flags.RunPyre},
		{"run_usort", &proj.Flags.RunUsort},
		{"run_pip_update", &proj.Flags.RunPipUpdate},
		{"disabled", &proj.Disabled},
	}
	for _, spec := range flagSpecs {
		if v, ok := merged[spec.key]; ok {
			b, err := coerceBool(v)
			if err != nil {
				warnings = append(warnings, Warning{Path: path, Message: fmt.Sprintf("%s: %v", spec.key, err)})
				continue
			}
			*spec.dst = b
		}
	}

	if v, ok := merged["venv_pkgs"]; ok {
		proj.ExtraPackages = coerceList(v)
	}

	if !rawCoverageSet {
		for _, key := range []string{"required_coverage", "required_coverage_pct"} {
			if v, ok := merged[key]; ok {
				cov, err := coerceRequiredCoverage(v)
				if err != nil {
					warnings = append(warnings, Warning{Path: path, Message: fmt.Sprintf("%s: %v", key, err)})
					continue
				}
				rawCoverage = cov
				rawCoverageSet = true
				break
			}
		}
	}
	if rawCoverageSet {
		proj.RequiredCoverage = rawCoverage
	}

	if !rawOverridesSet {
		if v, ok := merged["base_command_overrides"]; ok {
			overrides, err := coerceBaseCommandOverrides(v)
			if err != nil {
				warnings = append(warnings, Warning{Path: path, Message: fmt.Sprintf("base_command_overrides: %v", err)})
			} else {
				rawOverrides = overrides
				rawOverridesSet = true
			}
		}
	}
	if rawOverridesSet {
		proj.BaseCommandOverrides = rawOverrides
	}

	return proj, warnings, nil
}

