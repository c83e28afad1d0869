package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/ptrgo/ptr/internal/pipeline"
	"github.com/ptrgo/ptr/internal/statusline"
)

// PrintOptions configures PrintSummary's extra sections (§6).
type PrintOptions struct {
	Color              bool
	PrintCoverage      bool
	PrintNonConfigured bool
}

// PrintSummary writes the human-readable terminal summary to w: the
// PASS/FAIL/TIMEOUT/TOTAL tally and wall-clock seconds, followed by one
// captured-output block per failing project in discovery order, and the
// optional coverage and non-configured sections.
func PrintSummary(w io.Writer, outcomes []*pipeline.ProjectOutcome, wallClock time.Duration, unconfigured []string, opts PrintOptions) {
	theme := statusline.DefaultTheme()

	var pass, fail, timeout, skipped int
	for _, o := range outcomes {
		switch resultOf(o.Classification) {
		case "pass":
			pass++
		case "fail":
			fail++
		case "timeout":
			timeout++
		case "skipped":
			skipped++
		}
	}

	fmt.Fprintf(w, "PASS: %d FAIL: %d TIMEOUT: %d TOTAL: %d (%.1fs)\n",
		pass, fail, timeout, len(outcomes), wallClock.Seconds())
	if skipped > 0 {
		fmt.Fprintf(w, "SKIPPED: %d\n", skipped)
	}

	for _, o := range outcomes {
		result := resultOf(o.Classification)
		if result != "fail" && result != "timeout" {
			continue
		}
		label := result
		if opts.Color {
			label = theme.Failed.Render(label)
		}
		fmt.Fprintf(w, "\n%s (failed '%s' step) [%s]:\n", o.Project.ManifestPath, o.FailedStep, label)
		for _, s := range o.Steps {
			if s.Step == o.FailedStep {
				fmt.Fprint(w, s.Output)
				if len(s.Output) == 0 || s.Output[len(s.Output)-1] != '\n' {
					fmt.Fprintln(w)
				}
			}
		}
	}

	if opts.PrintCoverage {
		printCoverage(w, outcomes)
	}
	if opts.PrintNonConfigured {
		printNonConfigured(w, unconfigured)
	}
}

func printCoverage(w io.Writer, outcomes []*pipeline.ProjectOutcome) {
	fmt.Fprintln(w, "\nCoverage:")
	for _, o := range outcomes {
		if len(o.Coverage) == 0 {
			continue
		}
		keys := make([]string, 0, len(o.Coverage))
		for k := range o.Coverage {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintf(w, "  %s:\n", o.Project.ManifestPath)
		for _, k := range keys {
			fmt.Fprintf(w, "    %s: %.1f%%\n", k, o.Coverage[k])
		}
	}
}

func printNonConfigured(w io.Writer, unconfigured []string) {
	if len(unconfigured) == 0 {
		return
	}
	fmt.Fprintln(w, "\nManifests with no [ptr] section:")
	for _, path := range unconfigured {
		fmt.Fprintf(w, "  %s\n", path)
	}
}
