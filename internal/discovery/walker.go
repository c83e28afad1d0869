// Package discovery implements the Discovery Walker (§4.2): a deterministic
// recursive scan for manifest candidates, each handed to a manifest.Loader.
package discovery

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ptrgo/ptr/internal/manifest"
)

// candidatePatterns returns the glob patterns the walker matches candidate
// basenames against. Using glob patterns (rather than an exact-name set)
// means additional manifest filename conventions register here without
// changing the walk itself (§4.2).
func candidatePatterns() []string {
	patterns := make([]string, 0, len(manifest.DeclarativeFilenames)+len(manifest.ProgrammaticFilenames))
	patterns = append(patterns, manifest.DeclarativeFilenames...)
	patterns = append(patterns, manifest.ProgrammaticFilenames...)
	return patterns
}

func isCandidate(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Result is one discovered Project plus the loader warnings it produced.
type Result struct {
	Project  *manifest.Project
	Warnings []manifest.Warning
}

// Walk performs the recursive, sorted, hidden-directory-skipping traversal
// from baseDir and hands every candidate file to loader. It returns every
// successfully-loaded Project (in deterministic discovery order), the total
// number of raw candidate files seen (used for percent_suites_configured),
// and the paths of candidates that did not yield a Project (no tool
// section/variable) for --print-non-configured.
func Walk(baseDir string, loader *manifest.Loader) (results []Result, rawCandidateCount int, unconfigured []string, err error) {
	patterns := candidatePatterns()

	walkErr := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != baseDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isCandidate(d.Name(), patterns) {
			return nil
		}
		rawCandidateCount++

		proj, warnings, loadErr := loader.Load(path)
		if loadErr != nil {
			return loadErr
		}
		if proj == nil {
			unconfigured = append(unconfigured, path)
		} else {
			results = append(results, Result{Project: proj, Warnings: warnings})
		}
		return nil
	})
	if walkErr != nil {
		return nil, 0, nil, walkErr
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Project.ManifestPath < results[j].Project.ManifestPath
	})
	sort.Strings(unconfigured)

	return results, rawCandidateCount, unconfigured, nil
}
