// Package coverage implements the Coverage Analyzer (§4.6): it parses a
// coverage tool's JSON report, canonicalizes its paths, and compares
// reported percentages against a Project's required_coverage map.
package coverage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/ptrgo/ptr/internal/jsonutil"
	"github.com/ptrgo/ptr/internal/manifest"
)

// fileReport is one file entry in a coverage.py-style JSON report.
type fileReport struct {
	Summary struct {
		PercentCovered float64 `json:"percent_covered"`
	} `json:"summary"`
	MissingLines []int `json:"missing_lines"`
}

// rawReport is the subset of a coverage.py JSON report this analyzer reads.
type rawReport struct {
	Totals struct {
		PercentCovered float64 `json:"percent_covered"`
	} `json:"totals"`
	Files map[string]fileReport `json:"files"`
}

// Shortfall describes one required_coverage entry that was not met.
type Shortfall struct {
	Path         string
	Reported     float64
	Required     float64
	MissingLines []int
	Missing      bool // true when the file had no data in the report at all
}

func (s Shortfall) String() string {
	if s.Missing {
		return fmt.Sprintf("%s: no coverage data reported (required %s)", s.Path, formatPct(s.Required))
	}
	ranges := formatRanges(s.MissingLines)
	if ranges == "" {
		return fmt.Sprintf("%s: %s < %s", s.Path, formatPct(s.Reported), formatPct(s.Required))
	}
	return fmt.Sprintf("%s: %s < %s - Missing: %s", s.Path, formatPct(s.Reported), formatPct(s.Required), ranges)
}

// Result is the Coverage Analyzer's outcome for one Project.
type Result struct {
	Pass       bool
	Shortfalls []Shortfall
	// PerFile mirrors the report's per-file percentages, keyed the same way
	// as the Project's required_coverage, for --print-cov and the stats file.
	PerFile map[string]float64
}

// Analyze parses reportText (the coverage tool's raw, possibly
// fence-wrapped or log-noise-wrapped stdout) and compares it against
// required. workDir is the Project's working directory, used to resolve
// required_coverage's workdir-relative keys against the report's (often
// absolute) file paths.
func Analyze(reportText string, required map[string]float64, workDir string) (Result, error) {
	raw, err := jsonutil.Extract(reportText)
	if err != nil {
		return Result{}, fmt.Errorf("coverage: extracting report JSON: %w", err)
	}
	var report rawReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return Result{}, fmt.Errorf("coverage: decoding report JSON: %w", err)
	}

	canon := make(map[string]fileReport, len(report.Files))
	for path, fr := range report.Files {
		canon[canonicalizePath(path)] = fr
	}

	result := Result{Pass: true, PerFile: make(map[string]float64)}
	for _, key := range manifestSortedKeys(required) {
		requiredPct := required[key]
		if key == manifest.TotalCoverageKey {
			result.PerFile[key] = report.Totals.PercentCovered
			if report.Totals.PercentCovered < requiredPct {
				result.Pass = false
				result.Shortfalls = append(result.Shortfalls, Shortfall{
					Path: key, Reported: report.Totals.PercentCovered, Required: requiredPct,
				})
			}
			continue
		}

		target := canonicalizePath(filepath.Join(workDir, key))
		fr, ok := findBySuffix(canon, target)
		if !ok {
			result.Pass = false
			result.Shortfalls = append(result.Shortfalls, Shortfall{Path: key, Required: requiredPct, Missing: true})
			continue
		}
		result.PerFile[key] = fr.Summary.PercentCovered
		if fr.Summary.PercentCovered < requiredPct {
			result.Pass = false
			result.Shortfalls = append(result.Shortfalls, Shortfall{
				Path: key, Reported: fr.Summary.PercentCovered, Required: requiredPct, MissingLines: fr.MissingLines,
			})
		}
	}
	return result, nil
}

// canonicalizePath resolves path to an absolute, cleaned form and collapses
// the Darwin-specific "/private" prefix so "/private/var/x.py" and
// "/var/x.py" compare equal (§4.6, §8, §9).
func canonicalizePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if runtime.GOOS == "darwin" {
		abs = strings.TrimPrefix(abs, "/private")
	}
	return abs
}

// findBySuffix locates the report entry whose canonicalized path equals
// target or, failing that, the first entry found whose path ends with target
// or is itself a suffix of target, since a project's required_coverage key is workdir-relative while
// the report may use a different absolute prefix (container path, symlinked
// checkout, etc.).
func findBySuffix(canon map[string]fileReport, target string) (fileReport, bool) {
	if fr, ok := canon[target]; ok {
		return fr, true
	}
	for path, fr := range canon {
		if strings.HasSuffix(path, target) || strings.HasSuffix(target, path) {
			return fr, true
		}
	}
	return fileReport{}, false
}

func manifestSortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatRanges collapses a sorted or unsorted list of line numbers into
// comma-separated ranges, e.g. [1,2,3,7] -> "1-3,7".
func formatRanges(lines []int) string {
	if len(lines) == 0 {
		return ""
	}
	sorted := append([]int(nil), lines...)
	sort.Ints(sorted)

	var parts []string
	start := sorted[0]
	prev := sorted[0]
	for _, n := range sorted[1:] {
		if n == prev+1 {
			prev = n
			continue
		}
		parts = append(parts, formatRange(start, prev))
		start, prev = n, n
	}
	parts = append(parts, formatRange(start, prev))
	return strings.Join(parts, ",")
}

func formatRange(start, end int) string {
	if start == end {
		return strconv.Itoa(start)
	}
	return fmt.Sprintf("%d-%d", start, end)
}
