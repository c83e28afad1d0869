// Package report implements the Reporter / Stats Writer (§4.8): a
// human-readable terminal summary and the JSON statistics artifact (§6).
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ptrgo/ptr/internal/errs"
	"github.com/ptrgo/ptr/internal/pipeline"
)

// SuiteEntry is one project's entry in the stats artifact's suites map.
type SuiteEntry struct {
	Runtime    int                `json:"runtime"`
	Result     string             `json:"result"`
	FailedStep *string            `json:"failed_step"`
	Coverage   map[string]float64 `json:"coverage"`
}

// Stats is the statistics artifact (§6): a single fixed-schema JSON object.
type Stats struct {
	TotalSuites             int                   `json:"total_suites"`
	TotalSeconds            int                   `json:"total_seconds"`
	Pass                    int                   `json:"pass"`
	Fail                    int                   `json:"fail"`
	Timeout                 int                   `json:"timeout"`
	PercentSuitesConfigured float64               `json:"percent_suites_configured"`
	Suites                  map[string]SuiteEntry `json:"suites"`
}

// allowedKeys is the closed set §6 defines for the artifact's top-level
// object; any other key after a marshal/unmarshal round-trip indicates the
// builder drifted from the schema.
var allowedKeys = map[string]bool{
	"total_suites": true, "total_seconds": true, "pass": true, "fail": true,
	"timeout": true, "percent_suites_configured": true, "suites": true,
}

// resultOf maps a ProjectOutcome's free-form classification string
// ("pass", "fail-at-X", "timeout-at-X", "skipped-disabled",
// "skipped-cancelled", "setup-failure") to the artifact's closed result
// enum.
func resultOf(classification string) string {
	switch {
	case classification == "pass":
		return "pass"
	case classification == "skipped-disabled", classification == "skipped-cancelled":
		return "skipped"
	case len(classification) >= 8 && classification[:8] == "timeout-":
		return "timeout"
	default:
		return "fail"
	}
}

// Build assembles the Stats artifact from one run's ProjectOutcomes.
// rawCandidateCount is the Discovery Walker's total candidate-file count,
// used as the percent_suites_configured denominator (§8).
func Build(outcomes []*pipeline.ProjectOutcome, rawCandidateCount int, wallClock time.Duration) *Stats {
	s := &Stats{
		TotalSuites: len(outcomes),
		Suites:      make(map[string]SuiteEntry, len(outcomes)),
	}
	s.TotalSeconds = int(wallClock.Seconds())

	for _, o := range outcomes {
		result := resultOf(o.Classification)
		switch result {
		case "pass":
			s.Pass++
		case "fail":
			s.Fail++
		case "timeout":
			s.Timeout++
		}

		var failedStep *string
		if o.FailedStep != "" {
			step := o.FailedStep
			failedStep = &step
		}
		s.Suites[o.Project.ManifestPath] = SuiteEntry{
			Runtime:    int(o.Duration.Seconds()),
			Result:     result,
			FailedStep: failedStep,
			Coverage:   o.Coverage,
		}
	}

	if rawCandidateCount > 0 {
		s.PercentSuitesConfigured = 100 * float64(len(outcomes)) / float64(rawCandidateCount)
	}

	return s
}

// Validate checks the artifact against the schema in §6: a round-trip
// through JSON must produce only the allowed top-level keys, and the
// pass/fail/timeout/skipped accounting must be internally consistent.
func (s *Stats) Validate() error {
	data, err := json.Marshal(s)
	if err != nil {
		return &errs.InternalError{Component: "report", Err: fmt.Errorf("marshaling for validation: %w", err)}
	}
	var generic map[string]json.RawMessage
	if err := json.Unmarshal(data, &generic); err != nil {
		return &errs.InternalError{Component: "report", Err: fmt.Errorf("decoding for validation: %w", err)}
	}
	for key := range generic {
		if !allowedKeys[key] {
			return &errs.InternalError{Component: "report", Err: fmt.Errorf("unexpected key %q in artifact", key)}
		}
	}
	skipped := s.TotalSuites - s.Pass - s.Fail - s.Timeout
	if skipped < 0 {
		return &errs.InternalError{Component: "report", Err: fmt.Errorf("pass+fail+timeout (%d) exceeds total_suites (%d)", s.Pass+s.Fail+s.Timeout, s.TotalSuites)}
	}
	if s.PercentSuitesConfigured < 0 || s.PercentSuitesConfigured > 100 {
		return &errs.InternalError{Component: "report", Err: fmt.Errorf("percent_suites_configured out of range: %v", s.PercentSuitesConfigured)}
	}
	return nil
}

// Write validates and writes the stats artifact to path as indented JSON.
// Per §5, this is called exactly once, at run end.
func Write(path string, s *Stats) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("stats: refusing to write invalid artifact: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("stats: marshaling artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("stats: writing %s: %w", path, err)
	}
	return nil
}
