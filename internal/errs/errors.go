// Package errs defines the orchestrator's error taxonomy as distinct,
// wrapped Go error types rather than string tags, so CLI-layer exit-code
// selection can switch on errors.As instead of parsing messages.
package errs

import (
	"errors"
	"fmt"
)

// ConfigError reports a per-candidate manifest parse/shape problem. The
// Manifest Loader wraps these as warnings; a ConfigError
// never aborts a run on its own.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ErrDiscoveryEmpty is reported by the CLI when no Projects were found under
// the discovery root. The run exits non-zero with an informational message.
var ErrDiscoveryEmpty = errors.New("no project manifests discovered")

// ProvisionError reports a fatal Environment Provisioner failure: creation,
// install, or provisioning timeout. It always aborts the run before any
// Pipeline Runner starts.
type ProvisionError struct {
	Reason string
	Err    error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provisioning environment: %s: %v", e.Reason, e.Err)
}

func (e *ProvisionError) Unwrap() error { return e.Err }

// StepFailure records a non-zero subprocess exit for one step of one
// Project. It is stored on the pipeline's ProjectOutcome.Err, not propagated
// as a Go error through the Scheduler.
type StepFailure struct {
	Project  string
	Step     string
	ExitCode int
}

func (e *StepFailure) Error() string {
	return fmt.Sprintf("%s: step %q exited %d", e.Project, e.Step, e.ExitCode)
}

// StepTimeout records a step that exceeded its timeout for one Project.
type StepTimeout struct {
	Project string
	Step    string
}

func (e *StepTimeout) Error() string {
	return fmt.Sprintf("%s: step %q timed out", e.Project, e.Step)
}

// ErrCancelled is reported by the CLI when the global cancellation signal
// fired during the run; the summary and stats for the partial run are still
// produced.
var ErrCancelled = errors.New("run cancelled")

// InternalError reports a condition that should never happen given the
// component's own invariants (schema validation failure, an unreachable
// branch). It is logged, surfaced to the user, but never changes a
// Project's recorded outcome.
type InternalError struct {
	Component string
	Err       error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error in %s: %v", e.Component, e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }
