// Package manifest locates and normalizes per-project configuration into a
// single in-memory record (a Project), from either of two manifest formats:
// a declarative, INI-like section and a programmatic, script-style literal
// assignment. See declarative.go, programmatic.go, and loader.go.
package manifest

import "time"

// TotalCoverageKey is the special required_coverage key representing the
// aggregate percentage across the whole project, rather than one file.
const TotalCoverageKey = "TOTAL"

// EnableFlags are the project's per-tool opt-in switches. A false value
// means "do not run this step" rather than "run it and expect failure".
type EnableFlags struct {
	RunBlack     bool
	RunMypy      bool
	RunFlake8    bool
	RunPylint    bool
	RunPyre      bool
	RunUsort     bool
	RunPipUpdate bool
}

// Project is one unit of testing, identified by the absolute path to its
// manifest file. See SPEC_FULL.md §3.
type Project struct {
	// ManifestPath is the absolute path to the file that produced this
	// Project (the declarative file if both forms existed and conflicted,
	// per the precedence rule in §4.1).
	ManifestPath string

	// WorkingDir is the manifest's parent directory. Invariant: always
	// equal to filepath.Dir(ManifestPath).
	WorkingDir string

	EntryPointModule string
	TestSuiteModule  string
	TestSuiteTimeout time.Duration

	// RequiredCoverage maps a path relative to WorkingDir (or the literal
	// key TotalCoverageKey) to a minimum required percentage.
	RequiredCoverage map[string]float64

	Flags EnableFlags

	// Disabled projects are skipped unless the run's force-disabled flag
	// is set (§4.5).
	Disabled bool

	// ExtraPackages are additional packages to install into the shared
	// Environment before this project's pip_install step runs.
	ExtraPackages []string

	// BaseCommandOverrides lets a manifest replace the default argv
	// template used to invoke a given step, keyed by step name (e.g.
	// "mypy_run" -> []string{"poetry", "run", "mypy", "{workdir}"}).
	BaseCommandOverrides map[string][]string
}
