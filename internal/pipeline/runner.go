// Package pipeline implements the Pipeline Runner (§4.5): for one Project,
// it dispatches the fixed step set to the Step Engine, short-circuiting
// only on a required step's failure, and produces a ProjectOutcome.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/ptrgo/ptr/internal/coverage"
	"github.com/ptrgo/ptr/internal/environment"
	"github.com/ptrgo/ptr/internal/errs"
	"github.com/ptrgo/ptr/internal/manifest"
	"github.com/ptrgo/ptr/internal/step"
)

// ProjectOutcome is the Pipeline Runner's result for one Project (§3).
type ProjectOutcome struct {
	Project        *manifest.Project
	Steps          []step.Outcome
	Classification string
	FailedStep     string
	Duration       time.Duration
	Coverage       map[string]float64

	// Err classifies the failure recorded above, as an *errs.StepFailure or
	// *errs.StepTimeout, so callers can switch on it with errors.As instead
	// of parsing Classification. Nil when Classification is "pass" or
	// "skipped-disabled".
	Err error
}

// Options configures one Run call.
type Options struct {
	RunDisabled     bool
	ErrorOnWarnings bool
}

// Run executes the fixed step set for proj against env.
func Run(ctx context.Context, proj *manifest.Project, env *environment.Environment, opts Options) *ProjectOutcome {
	start := time.Now()

	if proj.Disabled && !opts.RunDisabled {
		return &ProjectOutcome{Project: proj, Classification: "skipped-disabled"}
	}

	vars := buildVars(proj, env)
	baseEnv := buildBaseEnv()

	outcome := &ProjectOutcome{Project: proj}
	var firstFailStep string
	var firstFailClass step.Classification

	for _, spec := range step.Specs() {
		if !spec.RunGuard(vars) {
			continue
		}

		if spec.Name == "tests_run" && proj.TestSuiteTimeout > 0 {
			spec.Timeout = proj.TestSuiteTimeout
		}
		if spec.Name == "analyze_coverage" && len(proj.RequiredCoverage) > 0 {
			spec.Required = true
		}
		if override, ok := proj.BaseCommandOverrides[spec.Name]; ok && len(override) > 0 {
			spec.ArgvTemplate = override
		} else if spec.Name == "pip_install" && proj.Flags.RunPipUpdate {
			spec.ArgvTemplate = []string{"{installer}", "install", "--upgrade", "-e", "{workdir}"}
		}

		stepEnv := baseEnv
		if spec.Name == "tests_run" && opts.ErrorOnWarnings {
			stepEnv = append(append([]string(nil), baseEnv...), "PYTHONWARNINGS=error")
		}

		eng := step.NewEngine(proj.WorkingDir, stepEnv)
		out, err := eng.Run(ctx, spec, vars)
		if err != nil {
			out = step.Outcome{Step: spec.Name, Classification: step.ClassFail, Output: err.Error()}
		}

		if spec.Name == "analyze_coverage" && out.Classification == step.ClassPass {
			covResult, covErr := coverage.Analyze(out.Output, proj.RequiredCoverage, proj.WorkingDir)
			if covErr != nil {
				out.Classification = step.ClassFail
				out.Output += "\n" + covErr.Error()
			} else {
				outcome.Coverage = covResult.PerFile
				if !covResult.Pass {
					out.Classification = step.ClassFail
					for _, sf := range covResult.Shortfalls {
						out.Output += "\n" + sf.String()
					}
				}
			}
		}

		outcome.Steps = append(outcome.Steps, out)

		if out.Classification == step.ClassFail || out.Classification == step.ClassTimeout {
			if firstFailStep == "" {
				firstFailStep = spec.Name
				firstFailClass = out.Classification
				if out.Classification == step.ClassTimeout {
					outcome.Err = &errs.StepTimeout{Project: filepath.Base(proj.WorkingDir), Step: spec.Name}
				} else {
					outcome.Err = &errs.StepFailure{Project: filepath.Base(proj.WorkingDir), Step: spec.Name, ExitCode: out.ExitCode}
				}
			}
			if spec.Required {
				break
			}
		}
	}

	outcome.Duration = time.Since(start)
	if firstFailStep == "" {
		outcome.Classification = "pass"
	} else {
		outcome.FailedStep = firstFailStep
		if firstFailClass == step.ClassTimeout {
			outcome.Classification = fmt.Sprintf("timeout-at-%s", firstFailStep)
		} else {
			outcome.Classification = fmt.Sprintf("fail-at-%s", firstFailStep)
		}
	}
	return outcome
}

// buildVars assembles the argv-template substitution values and run-guard
// flags for proj (§4.4).
func buildVars(proj *manifest.Project, env *environment.Environment) step.Vars {
	v := step.Vars{
		"interpreter":           env.InterpreterPath,
		"installer":             env.InstallerPath,
		"workdir":               proj.WorkingDir,
		"test_suite":            proj.TestSuiteModule,
		"coverage_data_file":    coverageDataFile(proj),
		"run_mypy":              boolString(proj.Flags.RunMypy),
		"run_black":             boolString(proj.Flags.RunBlack),
		"run_flake8":            boolString(proj.Flags.RunFlake8),
		"run_pylint":            boolString(proj.Flags.RunPylint),
		"run_pyre":              boolString(proj.Flags.RunPyre),
		"has_required_coverage": boolString(len(proj.RequiredCoverage) > 0),
	}
	return v
}

// coverageDataFile derives a path-disjoint per-project coverage data file
// name so concurrent workers never collide on disk (§5).
func coverageDataFile(proj *manifest.Project) string {
	digest := xxhash.Sum64String(proj.ManifestPath)
	return filepath.Join(proj.WorkingDir, fmt.Sprintf(".coverage.%016x", digest))
}

func buildBaseEnv() []string {
	return []string{"PYTHONIOENCODING=utf-8", "LC_ALL=C.UTF-8"}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
