package manifest

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// trueTokens and falseTokens implement the boolean coercion rule in §4.1:
// {true, false, yes, no, 1, 0}, case-insensitively.
var trueTokens = map[string]bool{"true": true, "yes": true, "1": true}
var falseTokens = map[string]bool{"false": true, "no": true, "0": true}

// coerceBool converts a raw string option value to bool per the declarative
// form's coercion rules.
func coerceBool(raw string) (bool, error) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if trueTokens[lower] {
		return true, nil
	}
	if falseTokens[lower] {
		return false, nil
	}
	return false, fmt.Errorf("not a recognized boolean literal: %q", raw)
}

// coerceInt converts a raw string option value to int via decimal parsing.
func coerceInt(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("not a decimal integer: %q", raw)
	}
	return v, nil
}

// coerceList splits a raw string option value into whitespace-separated
// tokens.
func coerceList(raw string) []string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// coerceRequiredCoverage parses the required_coverage key's value: newline-
// separated "path = number" pairs, where number may be integer or
// floating-point. Blank lines are ignored. A malformed line is reported by
// key so the caller can decide warn-and-skip vs. fail.
func coerceRequiredCoverage(raw string) (map[string]float64, error) {
	result := make(map[string]float64)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			return nil, fmt.Errorf("required_coverage line %q: missing '='", line)
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		if key == "" {
			return nil, fmt.Errorf("required_coverage line %q: empty path", line)
		}
		pct, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("required_coverage line %q: %q is not a number", line, val)
		}
		result[key] = pct
	}
	return result, nil
}

// coerceBaseCommandOverrides parses the base_command_overrides key's value:
// newline-separated "step_name = token token token" pairs, mirroring
// required_coverage's line shape. Each value replaces that step's entire
// argv template (e.g. "mypy_run = poetry run mypy {workdir}" runs mypy_run
// via Poetry instead of the shared interpreter).
func coerceBaseCommandOverrides(raw string) (map[string][]string, error) {
	result := make(map[string][]string)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			return nil, fmt.Errorf("base_command_overrides line %q: missing '='", line)
		}
		step := strings.TrimSpace(line[:idx])
		if step == "" {
			return nil, fmt.Errorf("base_command_overrides line %q: empty step name", line)
		}
		tokens := coerceList(line[idx+1:])
		if len(tokens) == 0 {
			return nil, fmt.Errorf("base_command_overrides line %q: empty command", line)
		}
		result[step] = tokens
	}
	return result, nil
}

// sortedCoverageKeys returns required_coverage's keys in deterministic
// order, TOTAL last, used when printing or serializing coverage summaries.
func sortedCoverageKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		if k != TotalCoverageKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := m[TotalCoverageKey]; ok {
		keys = append(keys, TotalCoverageKey)
	}
	return keys
}
