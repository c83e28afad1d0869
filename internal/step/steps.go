package step

import "time"

// DefaultTestSuiteTimeout is used for tests_run when a Project does not
// declare test_suite_timeout.
const DefaultTestSuiteTimeout = 120 * time.Second

// defaultToolTimeout bounds every step other than pip_install/tests_run,
// which have no natural analogue to a project-declared timeout.
const defaultToolTimeout = 60 * time.Second

// Specs returns the fixed, ordered step set in pipeline order (§4.4). The
// tests_run entry carries DefaultTestSuiteTimeout; callers running a
// Project with its own test_suite_timeout should copy the Spec and
// override Timeout before invoking Engine.Run.
func Specs() []Spec {
	return []Spec{
		{
			Name:         "pip_install",
			ArgvTemplate: []string{"{installer}", "install", "-e", "{workdir}"},
			Timeout:      120 * time.Second,
			Required:     true,
			RunGuard:     func(v Vars) bool { return true },
		},
		{
			Name:         "tests_run",
			ArgvTemplate: []string{"{interpreter}", "-m", "coverage", "run", "--data-file={coverage_data_file}", "-m", "{test_suite}"},
			Timeout:      DefaultTestSuiteTimeout,
			Required:     true,
			RunGuard:     func(v Vars) bool { return v["test_suite"] != "" },
		},
		{
			Name:         "analyze_coverage",
			ArgvTemplate: []string{"{interpreter}", "-m", "coverage", "json", "--data-file={coverage_data_file}", "-o", "-"},
			Timeout:      defaultToolTimeout,
			Required:     false, // Pipeline Runner promotes this to required when required_coverage is non-empty.
			RunGuard:     func(v Vars) bool { return v["has_required_coverage"] == "true" },
		},
		{
			Name:         "mypy_run",
			ArgvTemplate: []string{"{interpreter}", "-m", "mypy", "{workdir}"},
			Timeout:      defaultToolTimeout,
			RunGuard:     func(v Vars) bool { return v["run_mypy"] == "true" },
		},
		{
			Name:         "black_run",
			ArgvTemplate: []string{"{interpreter}", "-m", "black", "--check", "{workdir}"},
			Timeout:      defaultToolTimeout,
			RunGuard:     func(v Vars) bool { return v["run_black"] == "true" },
		},
		{
			Name:         "flake8_run",
			ArgvTemplate: []string{"{interpreter}", "-m", "flake8", "{workdir}"},
			Timeout:      defaultToolTimeout,
			RunGuard:     func(v Vars) bool { return v["run_flake8"] == "true" },
		},
		{
			Name:         "pylint_run",
			ArgvTemplate: []string{"{interpreter}", "-m", "pylint", "{workdir}"},
			Timeout:      defaultToolTimeout,
			RunGuard:     func(v Vars) bool { return v["run_pylint"] == "true" },
		},
		{
			Name:         "pyre_run",
			ArgvTemplate: []string{"{interpreter}", "-m", "pyre", "check"},
			Timeout:      defaultToolTimeout,
			RunGuard:     func(v Vars) bool { return v["run_pyre"] == "true" },
		},
	}
}
