// Package step runs the fixed, ordered set of subprocess actions that make
// up one Project's pipeline: installing it, running its tests under
// coverage, and running whichever static-analysis tools it opted into.
package step

import "time"

// Classification is the terminal outcome of running one step.
type Classification int

const (
	ClassPass Classification = iota
	ClassFail
	ClassTimeout
	ClassSkipped
)

func (c Classification) String() string {
	switch c {
	case ClassPass:
		return "pass"
	case ClassFail:
		return "fail"
	case ClassTimeout:
		return "timeout"
	default:
		return "skipped"
	}
}

// Outcome is the result of running one step against one Project.
type Outcome struct {
	Step           string
	ExitCode       int
	Duration       time.Duration
	Output         string
	Classification Classification
}

// Vars supplies the substitution values an ArgvTemplate draws on. Keys
// referenced by a template token but absent from Vars leave the token
// unresolved; Engine.Run reports that as an error rather than guessing.
type Vars map[string]string

// Spec describes one named step: its command shape, timeout, and whether
// its failure halts the rest of the pipeline. Specs are stateless and
// shared across every Project's pipeline run.
type Spec struct {
	Name         string
	ArgvTemplate []string
	Timeout      time.Duration
	Required     bool

	// RunGuard decides whether this step runs at all for a given set of
	// Vars/flags; the caller (pipeline.Run) evaluates it against the
	// Project before invoking Engine.Run.
	RunGuard func(v Vars) bool
}
